package rules

import (
	"fmt"

	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

// TableMigration requires every table to be created by at least one migration.
type TableMigration struct{}

func (TableMigration) RuleID() string { return "DB_MIG_001" }

func (r TableMigration) Evaluate(g *graph.Graph) ([]models.Violation, error) {
	var out []models.Violation
	for _, table := range g.NodesOfKind(graph.NodeDatabaseTable) {
		if createdByMigration(g, table.ID) {
			continue
		}
		v, err := NewViolation(r.RuleID(),
			fmt.Sprintf("Table %s is not created by any migration.", table.Name),
			table.ID,
			map[string]any{"table_name": table.Name})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func createdByMigration(g *graph.Graph, tableID string) bool {
	for _, e := range g.Incoming(tableID, graph.EdgeCreates) {
		src, ok := g.Node(e.Source)
		if !ok {
			continue
		}
		switch src.Props.(type) {
		case graph.MigrationProps:
			return true
		case graph.ComponentProps, graph.EndpointProps, graph.TableProps:
		}
	}
	return false
}
