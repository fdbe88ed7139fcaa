package rules

import (
	"fmt"
	"strings"

	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

// MethodMatch flags calls whose HTTP method differs from the method the
// resolved endpoint declares.
type MethodMatch struct{}

func (MethodMatch) RuleID() string { return "API_METHOD_MATCH_001" }

func (r MethodMatch) Evaluate(g *graph.Graph) ([]models.Violation, error) {
	var out []models.Violation
	for _, e := range g.Edges() {
		if e.Kind != graph.EdgeCalls || e.Call == nil || e.Call.Method == "" {
			continue
		}
		resolved, ok := resolveCall(g, e)
		if !ok {
			continue
		}
		ep, ok := resolved.Endpoint()
		if !ok || ep.Method == "" || strings.EqualFold(ep.Method, e.Call.Method) {
			continue
		}
		v, err := NewViolation(r.RuleID(),
			fmt.Sprintf("HTTP Method Mismatch: Call uses %s, Endpoint expects %s.", e.Call.Method, ep.Method),
			e.Source,
			map[string]any{
				"call_method":   e.Call.Method,
				"target_method": ep.Method,
				"path":          optional(e.Call.Path),
			})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
