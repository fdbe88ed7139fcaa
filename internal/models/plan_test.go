// Package models defines the plan, report and graph-view types shared across archlint.
// It includes their JSON/YAML encodings and schema validation tags.
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const samplePlanJSON = `{
	"schema_version": "1.0",
	"project_name": "shop",
	"components": [
		{
			"id": "web",
			"name": "Web",
			"type": "frontend",
			"path": "web/",
			"resources": [],
			"dependencies": ["api"]
		},
		{
			"id": "api",
			"name": "API",
			"type": "backend",
			"path": "api/",
			"resources": [
				{"id": "get_users", "type": "api", "name": "List users", "description": "lists", "properties": {"method": "GET", "path": "/users", "schema": {}}}
			]
		}
	],
	"relationships": [
		{"source": "web", "target": "api", "type": "calls", "metadata": {"path": "/users", "method": "GET"}}
	],
	"env_vars": {"DATABASE_URL": "***"}
}`

func TestPlanUnmarshal(t *testing.T) {
	t.Run("full plan", func(t *testing.T) {
		var plan Plan
		err := json.Unmarshal([]byte(samplePlanJSON), &plan)

		require.NoError(t, err)
		assert.Equal(t, "1.0", plan.SchemaVersion)
		assert.Equal(t, "shop", plan.ProjectName)
		require.Len(t, plan.Components, 2)
		assert.Equal(t, []string{"api"}, plan.Components[0].Dependencies)
		require.Len(t, plan.Components[1].Resources, 1)

		res := plan.Components[1].Resources[0]
		require.NotNil(t, res.Description)
		assert.Equal(t, "lists", *res.Description)
		assert.Equal(t, "/users", res.Properties["path"])
		assert.Equal(t, "GET", plan.Relationships[0].Metadata["method"])
		assert.Equal(t, "***", plan.EnvVars["DATABASE_URL"])
	})

	t.Run("yaml uses the same keys", func(t *testing.T) {
		doc := `
schema_version: "1.0"
project_name: shop
components:
  - id: db
    name: Postgres
    type: database
    path: db/
    resources:
      - id: users
        type: table
        name: users
relationships: []
`
		var plan Plan
		err := yaml.Unmarshal([]byte(doc), &plan)

		require.NoError(t, err)
		require.Len(t, plan.Components, 1)
		assert.Equal(t, "table", plan.Components[0].Resources[0].Type)
		assert.NotNil(t, plan.Relationships)
		assert.Empty(t, plan.Relationships)
	})
}

func TestPlanNormalized(t *testing.T) {
	t.Run("fills absent collections", func(t *testing.T) {
		plan := Plan{
			SchemaVersion: "1.0",
			ProjectName:   "p",
			Components: []Component{
				{ID: "c", Resources: []Resource{{ID: "r"}}},
			},
			Relationships: []Relationship{{Source: "c", Target: "r", Type: "reads"}},
		}

		n := plan.Normalized()

		assert.NotNil(t, n.EnvVars)
		assert.NotNil(t, n.Components[0].Dependencies)
		assert.NotNil(t, n.Components[0].Resources[0].Properties)
		assert.NotNil(t, n.Relationships[0].Metadata)
	})

	t.Run("does not modify the receiver", func(t *testing.T) {
		plan := Plan{Components: []Component{{ID: "c", Resources: []Resource{{ID: "r"}}}}}

		_ = plan.Normalized()

		assert.Nil(t, plan.Components[0].Dependencies)
		assert.Nil(t, plan.Components[0].Resources[0].Properties)
		assert.Nil(t, plan.EnvVars)
	})

	t.Run("omitted and empty fields encode alike", func(t *testing.T) {
		omitted := Plan{SchemaVersion: "1.0", ProjectName: "p", Components: []Component{}, Relationships: []Relationship{}}
		explicit := Plan{SchemaVersion: "1.0", ProjectName: "p", Components: []Component{}, Relationships: []Relationship{}, EnvVars: map[string]string{}}

		a, err := json.Marshal(omitted.Normalized())
		require.NoError(t, err)
		b, err := json.Marshal(explicit.Normalized())
		require.NoError(t, err)

		assert.JSONEq(t, string(b), string(a))
	})
}
