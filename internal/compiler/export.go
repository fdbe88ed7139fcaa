package compiler

import (
	"maps"

	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

// Export renders g as the serializable graph view, with per-kind counts.
func Export(g *graph.Graph) *models.Graph {
	out := &models.Graph{
		Nodes: make([]models.Node, 0, g.NodeCount()),
		Edges: make([]models.Edge, 0, g.EdgeCount()),
		Stats: &models.Stats{
			TotalNodes:  g.NodeCount(),
			TotalEdges:  g.EdgeCount(),
			NodesByKind: make(map[string]int),
			EdgesByKind: make(map[string]int),
		},
	}

	for _, n := range g.Nodes() {
		kind := n.Kind().String()
		out.Nodes = append(out.Nodes, models.Node{
			ID:         n.ID,
			Type:       kind,
			Name:       n.Name,
			Properties: nodeProperties(n.Props),
		})
		out.Stats.NodesByKind[kind]++
	}

	for _, e := range g.Edges() {
		kind := e.Kind.String()
		out.Edges = append(out.Edges, models.Edge{
			Source:   e.Source,
			Target:   e.Target,
			Type:     kind,
			Metadata: maps.Clone(e.Meta),
		})
		out.Stats.EdgesByKind[kind]++
	}

	return out
}

func nodeProperties(p graph.Properties) map[string]any {
	switch p := p.(type) {
	case graph.ComponentProps:
		return map[string]any{"path": p.Path, "comp_type": p.Kind.String()}
	case graph.EndpointProps:
		out := maps.Clone(p.Extra)
		if out == nil {
			out = map[string]any{}
		}
		if p.Method != "" {
			out["method"] = p.Method
		}
		if p.Path != "" {
			out["path"] = p.Path
		}
		putSchema(out, "schema", p.Schema)
		putSchema(out, "request_schema", p.RequestSchema)
		putSchema(out, "response_schema", p.ResponseSchema)
		return out
	case graph.TableProps:
		return maps.Clone(p.Extra)
	case graph.MigrationProps:
		return maps.Clone(p.Extra)
	default:
		return nil
	}
}

func putSchema(m map[string]any, key string, s *graph.Schema) {
	if s != nil {
		m[key] = s.Value
	}
}
