// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/archlint/core/internal/models"
	"github.com/archlint/core/internal/service"
)

// CacheHeader tells clients whether the report came from the store.
const CacheHeader = "X-Cache"

type PlanValidator interface {
	Validate(ctx context.Context, plan *models.Plan) (*service.Result, error)
}

type StatsSource interface {
	Stats(ctx context.Context) (*models.ValidationStats, error)
}

// ValidateHandler returns the report for the posted plan.
func ValidateHandler(validator PlanValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, ok := readPlan(c)
		if !ok {
			return
		}
		res, err := validator.Validate(c.Request.Context(), plan)
		if err != nil {
			writeError(c, err)
			return
		}
		if res.Cached {
			c.Header(CacheHeader, "hit")
		} else {
			c.Header(CacheHeader, "miss")
		}
		render(c, http.StatusOK, res.Report)
	}
}

// StatsHandler summarizes stored validations.
func StatsHandler(source StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := source.Stats(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		render(c, http.StatusOK, stats)
	}
}
