// Package parser provides utilities for parsing and transforming input data.
// It decodes plan documents and checks them against the plan schema.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/archlint/core/internal/models"
)

var (
	ErrDecode = errors.New("invalid plan document")
	ErrSchema = errors.New("plan schema violation")
)

// Error describes why a plan document was rejected before compilation.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported plan format %q", s)
	}
}

// ParsePlan decodes a single plan document. Unknown fields are rejected.
// Open property maps decode to the same values from either format.
func ParsePlan(data []byte, format Format) (*models.Plan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &Error{Kind: ErrDecode, Msg: "empty plan data"}
	}

	var plan models.Plan
	switch format {
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(&plan); err != nil {
			return nil, &Error{Kind: ErrDecode, Msg: "failed to unmarshal plan", Err: err}
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, &Error{Kind: ErrDecode, Msg: "unexpected data after plan document"}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&plan); err != nil {
			return nil, &Error{Kind: ErrDecode, Msg: "failed to unmarshal plan", Err: err}
		}
	default:
		return nil, &Error{Kind: ErrDecode, Msg: fmt.Sprintf("unsupported plan format %q", format)}
	}

	return &plan, nil
}

// Load decodes and schema-checks a plan.
func Load(data []byte, format Format) (*models.Plan, error) {
	plan, err := ParsePlan(data, format)
	if err != nil {
		return nil, err
	}
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}
