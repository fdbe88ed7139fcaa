// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "archlint-api"

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// ReadinessChecker reports whether dependencies can serve traffic.
type ReadinessChecker interface {
	Ready() error
}

var startTime = time.Now()

// HealthHandler reports process health with build details.
func HealthHandler(engineVersion string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   serviceName,
			Uptime:    time.Since(startTime).String(),
			Details: map[string]string{
				"go_version":     runtime.Version(),
				"num_cpu":        strconv.Itoa(runtime.NumCPU()),
				"engine_version": engineVersion,
			},
		})
	}
}

// LiveHandler answers as long as the process serves HTTP.
func LiveHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
	})
}

// ReadyHandler returns 503 while checker fails.
func ReadyHandler(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   serviceName,
		}
		if err := checker.Ready(); err != nil {
			resp.Status = "not_ready"
			resp.Details = map[string]string{"store": err.Error()}
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
