package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlint/core/internal/canonical"
	"github.com/archlint/core/internal/compiler"
	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

func compile(t *testing.T, plan *models.Plan) *graph.Graph {
	t.Helper()
	g, err := compiler.Compile(plan)
	require.NoError(t, err)
	return g
}

func ruleIDs(vs []models.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.RuleID
	}
	return out
}

func TestNewViolation(t *testing.T) {
	t.Run("fingerprint is stable", func(t *testing.T) {
		a, err := NewViolation("R1", "msg", "node", map[string]any{"path": "/x"})
		require.NoError(t, err)
		b, err := NewViolation("R1", "other message", "node", map[string]any{"path": "/x"})
		require.NoError(t, err)

		assert.Equal(t, a.Fingerprint(), b.Fingerprint())
		assert.Len(t, a.Fingerprint(), 64)
	})

	t.Run("fingerprint changes with each argument", func(t *testing.T) {
		base, err := NewViolation("R1", "msg", "node", map[string]any{"path": "/x"})
		require.NoError(t, err)

		byRule, err := NewViolation("R2", "msg", "node", map[string]any{"path": "/x"})
		require.NoError(t, err)
		byNode, err := NewViolation("R1", "msg", "other", map[string]any{"path": "/x"})
		require.NoError(t, err)
		byData, err := NewViolation("R1", "msg", "node", map[string]any{"path": "/y"})
		require.NoError(t, err)

		assert.NotEqual(t, base.Fingerprint(), byRule.Fingerprint())
		assert.NotEqual(t, base.Fingerprint(), byNode.Fingerprint())
		assert.NotEqual(t, base.Fingerprint(), byData.Fingerprint())
	})

	t.Run("hashes the canonical payload", func(t *testing.T) {
		v, err := NewViolation("R1", "msg", "node", map[string]any{"path": "/x"})
		require.NoError(t, err)

		want, err := canonical.Hash(map[string]any{"rule_id": "R1", "offending_node": "node", "path": "/x"})
		require.NoError(t, err)
		assert.Equal(t, want, v.Fingerprint())
	})

	t.Run("message carries the short id and metadata the dedup data", func(t *testing.T) {
		v, err := NewViolation("R1", "Something broke.", "node", map[string]any{"path": "/x"})
		require.NoError(t, err)

		assert.Equal(t, "Something broke. (ID: "+v.Fingerprint()[:8]+")", v.Message)
		assert.Equal(t, "/x", v.Metadata["path"])
		assert.Equal(t, "node", v.OffendingNode)
		assert.Equal(t, "R1", v.RuleID)
	})

	t.Run("does not mutate dedup data", func(t *testing.T) {
		dedup := map[string]any{"path": "/x"}

		_, err := NewViolation("R1", "msg", "node", dedup)

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"path": "/x"}, dedup)
	})

	t.Run("nil dedup data", func(t *testing.T) {
		v, err := NewViolation("R1", "msg", "node", nil)

		require.NoError(t, err)
		assert.Len(t, v.Metadata, 1)
	})
}

type panicking struct{}

func (panicking) RuleID() string { return "BOOM" }
func (panicking) Evaluate(*graph.Graph) ([]models.Violation, error) {
	panic("index out of range")
}

type failing struct{}

func (failing) RuleID() string { return "FAIL" }
func (failing) Evaluate(*graph.Graph) ([]models.Violation, error) {
	return nil, errors.New("cannot evaluate")
}

func TestRun(t *testing.T) {
	plan := &models.Plan{Components: []models.Component{
		{ID: "db", Type: "database", Resources: []models.Resource{{ID: "users", Type: "table", Name: "users"}}},
	}}

	t.Run("collects violations from every rule", func(t *testing.T) {
		vs, err := Run(compile(t, plan), Default())

		require.NoError(t, err)
		assert.Equal(t, []string{"DB_MIG_001"}, ruleIDs(vs))
	})

	t.Run("recovers panics as evaluation faults", func(t *testing.T) {
		vs, err := Run(compile(t, plan), []Evaluator{TableMigration{}, panicking{}})

		assert.Nil(t, vs)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEvaluationFault))
		assert.False(t, errors.Is(err, compiler.ErrCompilation))
		var fault *EvaluationFault
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, "BOOM", fault.RuleID)
		assert.Contains(t, err.Error(), "index out of range")
	})

	t.Run("wraps evaluator errors", func(t *testing.T) {
		_, err := Run(compile(t, plan), []Evaluator{failing{}})

		assert.ErrorIs(t, err, ErrEvaluationFault)
		assert.True(t, strings.Contains(err.Error(), "cannot evaluate"))
	})

	t.Run("registration order only changes list order", func(t *testing.T) {
		g := compile(t, plan)
		forward, err := Run(g, Default())
		require.NoError(t, err)

		rules := Default()
		for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
			rules[i], rules[j] = rules[j], rules[i]
		}
		backward, err := Run(g, rules)
		require.NoError(t, err)

		assert.ElementsMatch(t, forward, backward)
	})
}

func TestDefault(t *testing.T) {
	assert.Equal(t, []string{"FE_BE_001", "API_SCHEMA_001", "DB_MIG_001", "API_METHOD_MATCH_001"}, IDs(Default()))
}
