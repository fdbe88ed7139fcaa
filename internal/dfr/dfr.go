// Package dfr assembles Deterministic Failure Reports.
package dfr

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/archlint/core/internal/canonical"
	"github.com/archlint/core/internal/models"
)

// CanonicalPlan returns the canonical JSON text of the full, unredacted plan.
func CanonicalPlan(plan *models.Plan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("canonicalize plan: nil plan")
	}
	data, err := canonical.Marshal(plan.Normalized())
	if err != nil {
		return nil, fmt.Errorf("canonicalize plan: %w", err)
	}
	return data, nil
}

// PlanHash returns the hex SHA-256 of the canonical plan.
func PlanHash(plan *models.Plan) (string, error) {
	data, err := CanonicalPlan(plan)
	if err != nil {
		return "", err
	}
	return canonical.Sum(data), nil
}

// Generate builds the report for plan. The violations slice is not modified;
// the report holds a sorted copy.
func Generate(plan *models.Plan, violations []models.Violation, engineVersion string, now time.Time) (*models.DFR, error) {
	hash, err := PlanHash(plan)
	if err != nil {
		return nil, err
	}
	sorted := make([]models.Violation, len(violations))
	copy(sorted, violations)
	Sort(sorted)

	return &models.DFR{
		PlanHash:      hash,
		EngineVersion: engineVersion,
		Passed:        len(sorted) == 0,
		Violations:    sorted,
		Timestamp:     now.UTC(),
	}, nil
}

// Sort orders violations by rule id, then offending node. Ties fall back to
// the fingerprint so the order never depends on evaluation order.
func Sort(vs []models.Violation) {
	slices.SortStableFunc(vs, func(a, b models.Violation) int {
		return cmp.Or(
			cmp.Compare(a.RuleID, b.RuleID),
			cmp.Compare(a.OffendingNode, b.OffendingNode),
			cmp.Compare(a.Fingerprint(), b.Fingerprint()),
		)
	})
}
