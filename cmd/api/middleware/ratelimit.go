package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/archlint/core/internal/ratelimit"
)

const ClientIDHeader = "X-Client-ID"

// RateLimit refuses requests over the client's budget with 429. Clients are
// keyed by X-Client-ID, else by IP.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ClientIDHeader)
		if key == "" {
			key = c.ClientIP()
		}
		ok, wait := limiter.Allow(key)
		if ok {
			c.Next()
			return
		}

		seconds := ratelimit.RetryAfterSeconds(wait)
		logger.Warn("rate limit exceeded",
			zap.String("request_id", GetRequestID(c)),
			zap.String("client", key),
			zap.Int("retry_after_seconds", seconds))
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"type":                "rate_limit_exceeded",
			"message":             "Too many requests",
			"retry_after_seconds": seconds,
		})
	}
}
