package compiler

import (
	"errors"
	"fmt"
)

// ErrCompilation is the kind shared by every compilation failure.
var ErrCompilation = errors.New("plan compilation failed")

// Code classifies a compilation failure.
type Code string

const (
	CodeUnknownComponentType    Code = "UNKNOWN_COMPONENT_TYPE"
	CodeUnknownResourceType     Code = "UNKNOWN_RESOURCE_TYPE"
	CodeUnknownRelationshipType Code = "UNKNOWN_RELATIONSHIP_TYPE"
	CodeDependencyExists        Code = "DEPENDENCY_EXISTS"
	CodeDuplicateNodeID         Code = "DUPLICATE_NODE_ID"
	CodeUniqueEndpoint          Code = "UNIQUE_ENDPOINT"
	CodeNoAmbiguousRoute        Code = "NO_AMBIGUOUS_ROUTE"
)

// Error is returned when a plan cannot become a graph. The same plan always
// yields the same Code.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return ErrCompilation }

func failf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
