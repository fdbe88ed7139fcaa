// Package models defines the plan, report and graph-view types shared across archlint.
// It includes their JSON/YAML encodings and schema validation tags.
package models

import "time"

// ViolationHashKey is the metadata key holding a violation's fingerprint.
const ViolationHashKey = "violation_hash"

type Violation struct {
	RuleID        string         `json:"rule_id"`
	Message       string         `json:"message"`
	OffendingNode string         `json:"offending_node"`
	Metadata      map[string]any `json:"metadata"`
}

// Fingerprint returns the stored violation hash, or "" when absent.
func (v Violation) Fingerprint() string {
	s, _ := v.Metadata[ViolationHashKey].(string)
	return s
}

// DFR is a Deterministic Failure Report.
type DFR struct {
	PlanHash      string      `json:"plan_hash"`
	EngineVersion string      `json:"engine_version"`
	Passed        bool        `json:"passed"`
	Violations    []Violation `json:"violations"`
	Timestamp     time.Time   `json:"timestamp"`
}

// CompilationFailure is the report emitted when a plan cannot be compiled.
type CompilationFailure struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	Detail        string `json:"detail"`
	EngineVersion string `json:"engine_version"`
}

// ValidationStats summarizes stored validation results.
type ValidationStats struct {
	TotalValidations  int                `json:"totalValidations"`
	Passed            int                `json:"passed"`
	Failed            int                `json:"failed"`
	RecentValidations []RecentValidation `json:"recentValidations"`
	RuleFrequency     []RuleCount        `json:"ruleFrequency"`
}

type RecentValidation struct {
	ID       string `json:"id"`
	PlanHash string `json:"plan_hash"`
	Status   string `json:"status"`
	Time     string `json:"time"`
}

type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}
