package utils

import (
	"shop-cart/models"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	MsgMissingToken = "Authorization header required"
	MsgBadHeader    = "Invalid authorization header format"
	MsgExpiredToken = "Session expired. Please log in again."
)

// ParseAuthorizationHeader extracts the bearer credential from an
// Authorization header value.
func ParseAuthorizationHeader(header string) (string, error) {
	if header == "" {
		return "", models.NewAuthorizationError(MsgMissingToken)
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", models.NewAuthorizationError(MsgBadHeader)
	}
	return parts[1], nil
}

// NewSession reads the subject and expiry of a JWT without verifying its
// signature; verification belongs to the backend. Opaque tokens are kept
// as they are.
func NewSession(token string) models.Session {
	session := models.Session{Token: token}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return session
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		session.ExpiresAt = &t
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		session.Subject = sub
	} else if id, ok := claims["userId"].(string); ok {
		session.Subject = id
	}
	return session
}

// RequireSession rejects a missing or expired credential before any request
// leaves the device.
func RequireSession(session models.Session, now time.Time) error {
	if !session.Authenticated() {
		return models.NewAuthorizationError(MsgMissingToken)
	}
	if session.ExpiresAt != nil && !now.Before(*session.ExpiresAt) {
		return models.NewAuthorizationError(MsgExpiredToken)
	}
	return nil
}
