package dfr

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/core/internal/models"
)

func plan() *models.Plan {
	return &models.Plan{
		SchemaVersion: "1.0",
		ProjectName:   "shop",
		Components: []models.Component{
			{ID: "web", Name: "Web", Type: "frontend", Path: "web/", Dependencies: []string{"api", "auth"}},
			{ID: "api", Name: "API", Type: "backend", Path: "api/", Resources: []models.Resource{
				{ID: "list", Type: "api", Name: "list", Properties: map[string]any{"method": "GET", "path": "/users"}},
				{ID: "create", Type: "api", Name: "create", Properties: map[string]any{"path": "/users", "method": "POST"}},
			}},
		},
		Relationships: []models.Relationship{
			{Source: "web", Target: "api", Type: "calls", Metadata: map[string]any{"path": "/users"}},
			{Source: "api", Target: "web", Type: "depends_on"},
		},
		EnvVars: map[string]string{"A": "1", "B": "2"},
	}
}

func shuffled() *models.Plan {
	p := plan()
	p.Components[0], p.Components[1] = p.Components[1], p.Components[0]
	res := p.Components[0].Resources
	res[0], res[1] = res[1], res[0]
	p.Components[1].Dependencies = []string{"auth", "api"}
	p.Relationships[0], p.Relationships[1] = p.Relationships[1], p.Relationships[0]
	return p
}

func violation(rule, node, hash string) models.Violation {
	return models.Violation{RuleID: rule, OffendingNode: node, Metadata: map[string]any{models.ViolationHashKey: hash}}
}

func TestPlanHash(t *testing.T) {
	t.Run("ignores declaration order", func(t *testing.T) {
		a, err := PlanHash(plan())
		require.NoError(t, err)
		b, err := PlanHash(shuffled())
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("changes with content", func(t *testing.T) {
		changed := plan()
		changed.Components[1].Resources[0].Properties["path"] = "/people"

		a, err := PlanHash(plan())
		require.NoError(t, err)
		b, err := PlanHash(changed)
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("omitted and empty collections hash alike", func(t *testing.T) {
		a, err := PlanHash(&models.Plan{SchemaVersion: "1.0", ProjectName: "p"})
		require.NoError(t, err)
		b, err := PlanHash(&models.Plan{SchemaVersion: "1.0", ProjectName: "p", Components: []models.Component{}, Relationships: []models.Relationship{}, EnvVars: map[string]string{}})
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("nil plan", func(t *testing.T) {
		_, err := PlanHash(nil)

		assert.Error(t, err)
	})
}

func TestCanonicalPlan(t *testing.T) {
	data, err := CanonicalPlan(&models.Plan{SchemaVersion: "1.0", ProjectName: "p"})

	require.NoError(t, err)
	assert.Equal(t, `{"components":[],"env_vars":{},"project_name":"p","relationships":[],"schema_version":"1.0"}`, string(data))
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	t.Run("passes with no violations", func(t *testing.T) {
		report, err := Generate(plan(), nil, "engine-1", now)

		require.NoError(t, err)
		assert.True(t, report.Passed)
		assert.NotNil(t, report.Violations)
		assert.Empty(t, report.Violations)
		assert.Equal(t, "engine-1", report.EngineVersion)
		assert.Equal(t, now.UTC(), report.Timestamp)
	})

	t.Run("sorts by rule then node", func(t *testing.T) {
		input := []models.Violation{
			violation("FE_BE_001", "web", "3"),
			violation("DB_MIG_001", "users", "2"),
			violation("DB_MIG_001", "orders", "1"),
			violation("API_SCHEMA_001", "list", "4"),
		}

		report, err := Generate(plan(), input, "v", now)

		require.NoError(t, err)
		assert.False(t, report.Passed)
		got := make([]string, len(report.Violations))
		for i, v := range report.Violations {
			got[i] = v.RuleID + "/" + v.OffendingNode
		}
		assert.Equal(t, []string{"API_SCHEMA_001/list", "DB_MIG_001/orders", "DB_MIG_001/users", "FE_BE_001/web"}, got)
		assert.Equal(t, "FE_BE_001", input[0].RuleID, "input must not be reordered")
	})

	t.Run("ties break on fingerprint", func(t *testing.T) {
		a := []models.Violation{violation("R", "n", "b"), violation("R", "n", "a")}
		b := []models.Violation{violation("R", "n", "a"), violation("R", "n", "b")}

		ra, err := Generate(plan(), a, "v", now)
		require.NoError(t, err)
		rb, err := Generate(plan(), b, "v", now)
		require.NoError(t, err)

		if diff := cmp.Diff(ra.Violations, rb.Violations); diff != "" {
			t.Errorf("violation order depends on input order (-a +b):\n%s", diff)
		}
	})

	t.Run("timestamp does not affect the hash", func(t *testing.T) {
		first, err := Generate(plan(), nil, "v", now)
		require.NoError(t, err)
		second, err := Generate(plan(), nil, "v", now.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, first.PlanHash, second.PlanHash)
	})
}
