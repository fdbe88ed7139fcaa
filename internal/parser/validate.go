// Package parser provides utilities for parsing and transforming input data.
// It decodes plan documents and checks them against the plan schema.
package parser

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/archlint/core/internal/models"
)

var planValidate *validator.Validate

func init() {
	planValidate = validator.New(validator.WithRequiredStructEnabled())
	planValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidatePlan checks field presence and enumerations. It does not check
// references or the compiler's narrower type whitelist.
func ValidatePlan(plan *models.Plan) error {
	if plan == nil {
		return &Error{Kind: ErrSchema, Msg: "plan is required"}
	}
	err := planValidate.Struct(plan)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: ErrSchema, Msg: "validation failed", Err: err}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return &Error{Kind: ErrSchema, Msg: strings.Join(problems, "; ")}
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Plan.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
