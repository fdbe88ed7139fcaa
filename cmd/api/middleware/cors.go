// Package middleware holds the gin middleware chain of the API server.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cors allows browser clients from allowedOrigin and answers preflights.
func Cors(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowedOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Client-ID")
		h.Set("Access-Control-Expose-Headers", "X-Cache, X-Request-ID, Retry-After")
		h.Set("Access-Control-Max-Age", "3600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
