package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by stores when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a bad field value.
type ValidationError struct {
	Entity any
	Field  string
	Value  any
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("%s %v: %s", e.Field, e.Value, e.Msg)
}

// DuplicateError reports a collision. Entities holds every offender
// (*OrderElement, *Label or *LabelType), not just the first.
type DuplicateError struct {
	Field    string
	Value    string
	Entities []any
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists (%d occurrences)", e.Field, e.Value, len(e.Entities))
}

// StructuralError reports an operation that would break the tree shape or was
// applied to the wrong element variant.
type StructuralError struct {
	Op     string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}

// InUseError reports a removal blocked by work-report usage.
type InUseError struct {
	Element *OrderElement
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("cannot remove order element %q: it or one of its children is already in use in some work reports", e.Element.Name)
}

// DuplicateAssignmentError reports a second advance assignment of one type.
type DuplicateAssignmentError struct {
	Element *OrderElement
	Type    *AdvanceType
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("order element %q already has an advance assignment of type %q", e.Element.Name, e.Type.Name)
}

// ConcurrentModificationError reports a save against a stale version. The
// caller must discard its in-memory edits and reload.
type ConcurrentModificationError struct {
	Entity   string
	ID       string
	Expected int64
	Actual   int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified by someone else (have version %d, stored %d); reload before editing",
		e.Entity, e.ID, e.Expected, e.Actual)
}

// ValidationErrors aggregates every save-time problem so they can be shown
// together.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msg := fmt.Sprintf("validation failed (%d errors):", len(v))
	var b strings.Builder
	b.WriteString(msg)
	for _, e := range v {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return b.String()
}

func (v ValidationErrors) Unwrap() []error {
	return v
}

// ErrOrNil returns v as an error, or nil when it holds nothing.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
