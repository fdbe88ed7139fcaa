package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archlint/core/internal/metrics"
)

// Metrics records request counts and latencies by route template, so path
// parameters do not explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
