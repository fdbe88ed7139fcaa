// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/archlint/core/internal/compiler"
	"github.com/archlint/core/internal/parser"
)

// Error types reported in ErrorResponse.Type.
const (
	TypeCompilationError = "compilation_error"
	TypeInvalidPlan      = "invalid_plan"
	TypeSystemError      = "system_error"
	TypePayloadTooLarge  = "payload_too_large"
	TypeBadRequest       = "bad_request"
)

const (
	compilationHelp = "Ensure no duplicate IDs, circular dependencies, or invalid references."
	systemHelp      = "Contact support if this persists."
)

type ErrorResponse struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Help    string `json:"help,omitempty"`
}

// writeError maps a pipeline error onto its HTTP status and body. The error
// is attached to the gin context so the access log records it.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var cerr *compiler.Error
	switch {
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Type:    TypeCompilationError,
			Code:    string(cerr.Code),
			Message: "Plan Compilation Failed: " + cerr.Msg,
			Help:    compilationHelp,
		})
	case errors.Is(err, parser.ErrSchema), errors.Is(err, parser.ErrDecode):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Type:    TypeInvalidPlan,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Type:    TypeSystemError,
			Message: "Internal Engine Failure: " + err.Error(),
			Help:    systemHelp,
		})
	}
}
