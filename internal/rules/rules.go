// Package rules holds the semantic checks run against a compiled graph.
//
// Evaluators are pure: the same graph always yields the same violations, and
// every violation carries a fingerprint derived only from its rule, offending
// node and rule-specific dedup data.
package rules

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/archlint/core/internal/canonical"
	"github.com/archlint/core/internal/graph"
	"github.com/archlint/core/internal/models"
)

// Evaluator checks one rule against a graph.
type Evaluator interface {
	RuleID() string
	Evaluate(g *graph.Graph) ([]models.Violation, error)
}

// Default returns the active rule set.
func Default() []Evaluator {
	return []Evaluator{
		FrontendBackend{},
		APISchema{},
		TableMigration{},
		MethodMatch{},
	}
}

// IDs lists the rule ids of evaluators in order.
func IDs(evaluators []Evaluator) []string {
	ids := make([]string, len(evaluators))
	for i, e := range evaluators {
		ids[i] = e.RuleID()
	}
	return ids
}

// NewViolation builds a violation whose fingerprint is the SHA-256 of the
// canonical {rule_id, offending_node, dedup...} document.
func NewViolation(ruleID, message, offendingNode string, dedup map[string]any) (models.Violation, error) {
	payload := maps.Clone(dedup)
	if payload == nil {
		payload = map[string]any{}
	}
	payload["rule_id"] = ruleID
	payload["offending_node"] = offendingNode

	fingerprint, err := canonical.Hash(payload)
	if err != nil {
		return models.Violation{}, fmt.Errorf("fingerprint %s on %s: %w", ruleID, offendingNode, err)
	}

	meta := map[string]any{models.ViolationHashKey: fingerprint}
	maps.Copy(meta, dedup)

	return models.Violation{
		RuleID:        ruleID,
		Message:       fmt.Sprintf("%s (ID: %s)", message, fingerprint[:8]),
		OffendingNode: offendingNode,
		Metadata:      meta,
	}, nil
}

// ErrEvaluationFault marks an evaluator that failed on a valid graph.
var ErrEvaluationFault = errors.New("evaluation fault")

// EvaluationFault reports an engine defect, never a property of the plan.
type EvaluationFault struct {
	RuleID string
	Cause  error
}

func (f *EvaluationFault) Error() string {
	return fmt.Sprintf("%s in rule %s: %v", ErrEvaluationFault, f.RuleID, f.Cause)
}

func (f *EvaluationFault) Unwrap() []error { return []error{ErrEvaluationFault, f.Cause} }

// Run evaluates every rule against g. Any evaluator error or panic aborts the
// run with an *EvaluationFault.
func Run(g *graph.Graph, evaluators []Evaluator) ([]models.Violation, error) {
	var out []models.Violation
	for _, e := range evaluators {
		vs, err := evaluate(g, e)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

func evaluate(g *graph.Graph, e Evaluator) (vs []models.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			vs = nil
			err = &EvaluationFault{RuleID: e.RuleID(), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	vs, err = e.Evaluate(g)
	if err != nil {
		return nil, &EvaluationFault{RuleID: e.RuleID(), Cause: err}
	}
	return vs, nil
}

// resolveCall follows a call edge to the node it reaches. A component target
// resolves to its endpoint matching the call path and method. When the method
// matches nothing at the path, the path match with the lowest id stands in so
// a mismatch can still be reported. With no endpoint at the path the target
// itself is returned.
func resolveCall(g *graph.Graph, e graph.Edge) (graph.Node, bool) {
	target, ok := g.Node(e.Target)
	if !ok {
		return graph.Node{}, false
	}
	if target.Kind() != graph.NodeComponent {
		return target, true
	}
	var call graph.Call
	if e.Call != nil {
		call = *e.Call
	}
	if eps := g.MatchEndpoints(target.ID, call); len(eps) > 0 {
		return lowestID(eps), true
	}
	if eps := g.EndpointsAt(target.ID, call.Path); len(eps) > 0 {
		return lowestID(eps), true
	}
	return target, true
}

func lowestID(nodes []graph.Node) graph.Node {
	return slices.MinFunc(nodes, func(a, b graph.Node) int { return strings.Compare(a.ID, b.ID) })
}

// optional maps "" to nil so absent values encode as JSON null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
