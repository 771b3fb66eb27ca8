package replica

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInvalidArgument indicates bad call-time input, such as a nil root.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedType indicates a value that cannot be copied: a field that
	// cannot be written, or a resolved value that does not fit its slot.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrResolve indicates a placeholder could not be resolved.
	ErrResolve = errors.New("resolve failed")

	// ErrInvalidTag indicates a copy tag has an unknown value.
	ErrInvalidTag = errors.New("invalid tag")
)

// CopyError represents a failure at a specific place in the graph.
// It wraps a sentinel error with the path and type being copied.
type CopyError struct {
	Err   error        // Underlying sentinel error (ErrUnsupportedType, ErrResolve, ...)
	Path  string       // Field path from the root, e.g. Order.Lines[2].Product
	Type  reflect.Type // Type at Path, nil when unknown
	Cause error        // Original error, e.g. from the placeholder runtime
}

func (e *CopyError) Error() string {
	msg := e.Err.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Type != nil {
		msg += fmt.Sprintf(" (%s)", e.Type)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// either ErrResolve or the placeholder runtime's own error.
func (e *CopyError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// TagError represents an invalid copy tag found while planning a type.
type TagError struct {
	Type  reflect.Type
	Field string
	Value string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s %q on %s.%s", ErrInvalidTag.Error(), e.Value, e.Type, e.Field)
}

func (e *TagError) Unwrap() error {
	return ErrInvalidTag
}

// newCopyError creates a CopyError at the given step.
func newCopyError(sentinel error, at *step, typ reflect.Type, cause error) error {
	return &CopyError{
		Err:   sentinel,
		Path:  at.String(),
		Type:  typ,
		Cause: cause,
	}
}
