package rules

import (
	"fmt"

	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

// FrontendBackend requires that every routed call from a frontend lands on an
// endpoint owned by a backend component.
type FrontendBackend struct{}

func (FrontendBackend) RuleID() string { return "FE_BE_001" }

func (r FrontendBackend) Evaluate(g *graph.Graph) ([]models.Violation, error) {
	var out []models.Violation
	for _, e := range g.Edges() {
		if e.Kind != graph.EdgeCalls || e.Call == nil || e.Call.Path == "" {
			continue
		}
		src, ok := g.Node(e.Source)
		if !ok || !src.IsComponentOf(graph.ComponentFrontend) {
			continue
		}
		resolved, ok := resolveCall(g, e)
		if !ok {
			continue
		}
		if parent, ok := g.Parent(resolved.ID); ok && parent.IsComponentOf(graph.ComponentBackend) {
			continue
		}
		v, err := NewViolation(r.RuleID(),
			fmt.Sprintf("Frontend calls %s which is not a Backend API.", e.Call.Path),
			e.Source,
			map[string]any{"target": resolved.ID, "path": e.Call.Path})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
