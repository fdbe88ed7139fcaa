package rules

import (
	"fmt"

	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

// APISchema requires every endpoint to declare a schema, request schema or
// response schema.
type APISchema struct{}

func (APISchema) RuleID() string { return "API_SCHEMA_001" }

func (r APISchema) Evaluate(g *graph.Graph) ([]models.Violation, error) {
	var out []models.Violation
	for _, n := range g.NodesOfKind(graph.NodeAPIEndpoint) {
		p, _ := n.Endpoint()
		if p.DeclaresSchema() {
			continue
		}
		shown := p.Path
		if shown == "" {
			shown = "unknown"
		}
		v, err := NewViolation(r.RuleID(),
			fmt.Sprintf("API Endpoint %s (%s) missing schema declaration.", n.Name, shown),
			n.ID,
			map[string]any{"path": optional(p.Path)})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
