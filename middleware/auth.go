package middleware

import (
	"net/http"
	"shop-cart/models"
	"shop-cart/utils"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	SessionKey = "session"
	UserIDKey  = "user_id"
)

// SessionMiddleware attaches the caller's bearer credential when present.
// Anonymous requests pass through; a malformed header does not.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(SessionKey, models.Session{})
			c.Next()
			return
		}

		token, err := utils.ParseAuthorizationHeader(header)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		setSession(c, utils.NewSession(token))
		c.Next()
	}
}

// AuthMiddleware requires a bearer credential that has not expired. The
// credential is forwarded to the backend, which verifies it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := utils.ParseAuthorizationHeader(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		session := utils.NewSession(token)
		if err := utils.RequireSession(session, time.Now()); err != nil {
			abortUnauthorized(c, err)
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// setSession stores the session and, when the token names one, the user id
// the request logger reports.
func setSession(c *gin.Context, session models.Session) {
	c.Set(SessionKey, session)
	if session.Subject != "" {
		c.Set(UserIDKey, session.Subject)
	}
}

func GetSession(c *gin.Context) models.Session {
	if v, ok := c.Get(SessionKey); ok {
		if session, ok := v.(models.Session); ok {
			return session
		}
	}
	return models.Session{}
}

func abortUnauthorized(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Kind:    models.KindAuthorization,
	})
}
