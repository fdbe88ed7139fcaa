package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"X-Api-Key":     true,
	"Cookie":        true,
}

// loggedHeaders are copied into the access log.
var loggedHeaders = []string{"User-Agent", "Content-Type", "X-Client-ID", "Authorization", "X-Api-Key"}

// AccessLog writes one structured line per request.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Any("headers", RedactHeaders(c.Request.Header)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// RedactHeaders returns the logged subset of h with credentials masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(loggedHeaders))
	for _, name := range loggedHeaders {
		v := h.Get(name)
		if v == "" {
			continue
		}
		if sensitiveHeaders[http.CanonicalHeaderKey(name)] {
			v = redacted
		}
		out[strings.ToLower(name)] = v
	}
	return out
}
