// Package engine runs the full validation pipeline: compile, evaluate, report.
//
// An Engine holds only configuration. Every call builds its own graph and
// shares nothing with concurrent calls.
package engine

import (
	"time"

	"github.com/archlint/core/internal/canonical"
	"github.com/archlint/core/internal/compiler"
	"github.com/archlint/core/internal/dfr"
	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
	"github.com/archlint/core/internal/rules"
)

// RulesetRevision is bumped whenever rule semantics change without the rule
// id list changing, so cached reports are invalidated.
const RulesetRevision = "2026.10.1"

type Engine struct {
	evaluators []rules.Evaluator
	version    string
	now        func() time.Time
}

type Option func(*Engine)

// WithEvaluators replaces the default rule set.
func WithEvaluators(evaluators ...rules.Evaluator) Option {
	return func(e *Engine) { e.evaluators = evaluators }
}

// WithVersion pins the engine version instead of deriving it from the rules.
func WithVersion(v string) Option {
	return func(e *Engine) { e.version = v }
}

// WithClock sets the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) *Engine {
	e := &Engine{evaluators: rules.Default(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.version == "" {
		e.version = ComputeVersion(e.evaluators)
	}
	return e
}

// Version returns the engine version stamped on every report.
func (e *Engine) Version() string { return e.version }

// Rules returns the ids of the active rules.
func (e *Engine) Rules() []string { return rules.IDs(e.evaluators) }

// Compile compiles plan without evaluating it.
func (e *Engine) Compile(plan *models.Plan) (*graph.Graph, error) {
	return compiler.Compile(plan)
}

// Validate compiles plan, runs every rule and returns the report. Errors are
// either a *compiler.Error or a *rules.EvaluationFault.
func (e *Engine) Validate(plan *models.Plan) (*models.DFR, error) {
	g, err := compiler.Compile(plan)
	if err != nil {
		return nil, err
	}
	violations, err := rules.Run(g, e.evaluators)
	if err != nil {
		return nil, err
	}
	return dfr.Generate(plan, violations, e.version, e.now())
}

// ComputeVersion derives a 16 hex character version from the ruleset revision
// and the active rule ids.
func ComputeVersion(evaluators []rules.Evaluator) string {
	h, err := canonical.Hash(map[string]any{
		"ruleset_revision": RulesetRevision,
		"rules":            rules.IDs(evaluators),
	})
	if err != nil {
		return "0000000000000000"
	}
	return h[:16]
}

// CacheKey is the idempotency key for a report.
func CacheKey(planHash, engineVersion string) string {
	return planHash + ":" + engineVersion
}
