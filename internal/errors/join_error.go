// Package errors provides the typed failures surfaced by the join engine.
// Structural and key-uniqueness failures carry the table side that raised
// them so callers can map them onto result codes.
package errors

import (
	"fmt"
)

// Kind classifies a JoinError.
type Kind int

const (
	// KindInvalidInput is a malformed request (bad key spec, unknown alias).
	KindInvalidInput Kind = iota
	// KindWidthInconsistent means a table's rows do not share one column count.
	KindWidthInconsistent
	// KindNonUniqueKey means a side that forbids repeats holds a duplicate key.
	KindNonUniqueKey
	// KindIO wraps read/write failures on the input or output files.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindWidthInconsistent:
		return "inconsistent width"
	case KindNonUniqueKey:
		return "non-unique key"
	case KindIO:
		return "i/o"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Side identifies which input table an error belongs to.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return ""
	}
}

// JoinError represents every failure produced by the join engine
type JoinError struct {
	Kind    Kind   // Failure class
	Side    Side   // Offending table, SideNone when not table specific
	Op      string // Phase name (e.g., "scan", "index", "write")
	Line    int    // 1-based line number in the input file, 0 if unknown
	Key     string // Rendered key tuple for key-uniqueness failures
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *JoinError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Key)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Side != SideNone {
		return fmt.Sprintf("%s failed on %s table: %s", e.Op, e.Side, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *JoinError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind, and on Side when the target names one. This lets
// callers write errors.Is(err, ErrNonUniqueKey) or compare against a
// side-specific template.
func (e *JoinError) Is(target error) bool {
	t, ok := target.(*JoinError)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Side == SideNone || t.Side == e.Side
}

// NewWidthError creates an error for a row whose column count differs from
// the width measured on the table's first line.
func NewWidthError(op string, side Side, line, want, got int) *JoinError {
	return &JoinError{
		Kind:    KindWidthInconsistent,
		Side:    side,
		Op:      op,
		Line:    line,
		Message: fmt.Sprintf("table does not have a consistent number of columns: expected %d, got %d", want, got),
	}
}

// NewKeyColumnError creates an error for a key column beyond the table width.
func NewKeyColumnError(op string, side Side, column, width int) *JoinError {
	return &JoinError{
		Kind:    KindWidthInconsistent,
		Side:    side,
		Op:      op,
		Message: fmt.Sprintf("key column %d is outside a table of width %d", column+1, width),
	}
}

// NewNonUniqueKeyError creates an error for a repeated key on a side that
// forbids repeats.
func NewNonUniqueKeyError(op string, side Side, line int, key string) *JoinError {
	return &JoinError{
		Kind:    KindNonUniqueKey,
		Side:    side,
		Op:      op,
		Line:    line,
		Key:     key,
		Message: "identified non-unique key",
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *JoinError {
	return &JoinError{
		Kind:    KindInvalidInput,
		Op:      op,
		Message: message,
	}
}

// NewIOError wraps a file system failure.
func NewIOError(op string, side Side, cause error) *JoinError {
	return &JoinError{
		Kind:    KindIO,
		Side:    side,
		Op:      op,
		Message: "i/o error",
		Cause:   cause,
	}
}

// Predefined kind sentinels for errors.Is
var (
	ErrWidthInconsistent = &JoinError{Kind: KindWidthInconsistent}
	ErrNonUniqueKey      = &JoinError{Kind: KindNonUniqueKey}
	ErrInvalidInput      = &JoinError{Kind: KindInvalidInput}
	ErrIO                = &JoinError{Kind: KindIO}
)
