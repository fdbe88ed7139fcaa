// Package models defines the plan, report and graph-view types shared across archlint.
// It includes their JSON/YAML encodings and schema validation tags.
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolationFingerprint(t *testing.T) {
	t.Run("reads the stored hash", func(t *testing.T) {
		v := Violation{Metadata: map[string]any{ViolationHashKey: "abc"}}

		assert.Equal(t, "abc", v.Fingerprint())
	})

	t.Run("empty without metadata", func(t *testing.T) {
		assert.Equal(t, "", Violation{}.Fingerprint())
	})
}

func TestDFRMarshal(t *testing.T) {
	report := DFR{
		PlanHash:      "deadbeef",
		EngineVersion: "v1",
		Passed:        false,
		Violations: []Violation{
			{RuleID: "DB_MIG_001", Message: "m", OffendingNode: "users", Metadata: map[string]any{"table_name": "users"}},
		},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"plan_hash": "deadbeef",
		"engine_version": "v1",
		"passed": false,
		"violations": [
			{"rule_id": "DB_MIG_001", "message": "m", "offending_node": "users", "metadata": {"table_name": "users"}}
		],
		"timestamp": "2026-01-02T03:04:05Z"
	}`, string(data))
}

func TestValidationStatsMarshal(t *testing.T) {
	stats := ValidationStats{
		TotalValidations:  3,
		Passed:            1,
		Failed:            2,
		RecentValidations: []RecentValidation{{ID: "1", PlanHash: "abcd1234", Status: "failed", Time: "2026-01-02T03:04:05Z"}},
		RuleFrequency:     []RuleCount{{Rule: "FE_BE_001", Count: 2}},
	}

	data, err := json.Marshal(stats)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"totalValidations":3`)
	assert.Contains(t, s, `"recentValidations":[{"id":"1"`)
	assert.Contains(t, s, `"ruleFrequency":[{"rule":"FE_BE_001","count":2}]`)
}
