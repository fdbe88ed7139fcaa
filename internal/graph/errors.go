package graph

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateNode = errors.New("duplicate node")
	ErrMissingNode   = errors.New("node does not exist")
	ErrInvalidNode   = errors.New("invalid node")
)

// Error wraps deterministic graph construction failures.
type Error struct {
	Kind error
	ID   string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %q", e.Kind.Error(), e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }
