// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/archlint/core/internal/models"
	"github.com/archlint/core/internal/parser"
)

type PlanCompiler interface {
	Compile(plan *models.Plan) (*models.Graph, error)
}

// CompileHandler returns the graph compiled from the posted plan.
// ?pretty=true indents the response.
func CompileHandler(compiler PlanCompiler) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, ok := readPlan(c)
		if !ok {
			return
		}
		graph, err := compiler.Compile(plan)
		if err != nil {
			writeError(c, err)
			return
		}
		render(c, http.StatusOK, graph)
	}
}

// readPlan decodes the request body. It writes the error response itself and
// reports false when the body is unusable.
func readPlan(c *gin.Context) (*models.Plan, bool) {
	body, err := io.ReadAll(c.Request.Body)
	defer c.Request.Body.Close()
	if err != nil {
		_ = c.Error(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Type:    TypePayloadTooLarge,
				Message: "request body exceeds the configured limit",
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Type: TypeBadRequest, Message: "failed to read body"})
		return nil, false
	}

	plan, err := parser.ParsePlan(body, requestFormat(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return plan, true
}

// requestFormat honors ?format= first, then a YAML content type. An
// unsupported format is passed through so decoding rejects it.
func requestFormat(c *gin.Context) parser.Format {
	if q := c.Query("format"); q != "" {
		if f, err := parser.ParseFormat(q); err == nil {
			return f
		}
		return parser.Format(q)
	}
	if strings.Contains(c.ContentType(), "yaml") {
		return parser.FormatYAML
	}
	return parser.FormatJSON
}

func render(c *gin.Context, status int, v any) {
	if c.Query("pretty") == "true" {
		c.IndentedJSON(status, v)
		return
	}
	c.JSON(status, v)
}
