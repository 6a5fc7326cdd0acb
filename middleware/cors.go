package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORSMiddleware lets the storefront call the cart API from the browser.
// Local dev servers are always allowed next to the configured frontends.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := slices.Clone(devOrigins)
	for _, origin := range origins {
		if !slices.Contains(allowed, origin) {
			allowed = append(allowed, origin)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
