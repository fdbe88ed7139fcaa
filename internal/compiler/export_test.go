package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/core/internal/models"
)

func TestExport(t *testing.T) {
	t.Run("counts kinds", func(t *testing.T) {
		g, err := Compile(shopPlan())
		require.NoError(t, err)

		view := Export(g)

		require.NotNil(t, view.Stats)
		assert.Equal(t, 7, view.Stats.TotalNodes)
		assert.Equal(t, 6, view.Stats.TotalEdges)
		assert.Equal(t, 3, view.Stats.NodesByKind["component"])
		assert.Equal(t, 2, view.Stats.NodesByKind["api_endpoint"])
		assert.Equal(t, 4, view.Stats.EdgesByKind["contains"])
		assert.Equal(t, 1, view.Stats.EdgesByKind["calls"])
	})

	t.Run("preserves insertion order and properties", func(t *testing.T) {
		g, err := Compile(shopPlan())
		require.NoError(t, err)

		view := Export(g)

		assert.Equal(t, "web", view.Nodes[0].ID)
		assert.Equal(t, map[string]any{"path": "web/", "comp_type": "frontend"}, view.Nodes[0].Properties)
		assert.Equal(t, "api_endpoint", view.Nodes[2].Type)
		assert.Equal(t, map[string]any{"method": "GET", "path": "/users"}, view.Nodes[2].Properties)
	})

	t.Run("empty graph encodes empty arrays", func(t *testing.T) {
		g, err := Compile(&models.Plan{})
		require.NoError(t, err)

		data, err := json.Marshal(Export(g))
		require.NoError(t, err)

		assert.JSONEq(t, `{"nodes":[],"edges":[],"stats":{"total_nodes":0,"total_edges":0}}`, string(data))
	})
}
