// Package advance tracks progress measurements on order elements and derives
// the headline completion percentage.
package advance

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Result is a completion percentage. Tracked is false when the element has no
// global assignment or no measurement yet, which is distinct from 0%.
type Result struct {
	Value   decimal.Decimal
	Tracked bool
}

func (r Result) String() string {
	if !r.Tracked {
		return "n/a"
	}
	return r.Value.StringFixed(2) + "%"
}

// Assign attaches an assignment of type t to e. A zero maxValue falls back to
// the type's default maximum, or 100 for percentage types.
func Assign(e *domain.OrderElement, t *domain.AdvanceType, reportGlobal bool, maxValue decimal.Decimal) (*domain.AdvanceAssignment, error) {
	if t == nil {
		return nil, &domain.ValidationError{Entity: e, Field: "advance_type", Msg: "is required"}
	}
	if e.AssignmentFor(t) != nil {
		return nil, &domain.DuplicateAssignmentError{Element: e, Type: t}
	}
	if maxValue.IsZero() {
		maxValue = t.DefaultMaxValue
		if maxValue.IsZero() && t.Percentage {
			maxValue = hundred
		}
	}
	if !maxValue.IsPositive() {
		return nil, &domain.ValidationError{Entity: e, Field: "max_value", Value: maxValue.String(), Msg: "must be greater than zero"}
	}
	a := &domain.AdvanceAssignment{
		Type:                t,
		ReportGlobalAdvance: reportGlobal,
		MaxValue:            maxValue,
	}
	if reportGlobal {
		clearGlobal(e)
	}
	e.AdvanceAssignments = append(e.AdvanceAssignments, a)
	return a, nil
}

// RecordMeasurement appends a dated cumulative value and keeps the history
// ordered by date. Decreasing values are accepted. Several measurements may
// share a day; they stay in recording order and the last one is the latest.
func RecordMeasurement(a *domain.AdvanceAssignment, date time.Time, value decimal.Decimal) error {
	if value.IsNegative() {
		return &domain.ValidationError{Field: "value", Value: value.String(), Msg: "must not be negative"}
	}
	if value.GreaterThan(a.MaxValue) {
		return &domain.ValidationError{Field: "value", Value: value.String(),
			Msg: fmt.Sprintf("must not exceed the maximum value %s", a.MaxValue.String())}
	}
	day := date.UTC().Truncate(24 * time.Hour)
	a.Measurements = append(a.Measurements, domain.AdvanceMeasurement{Date: day, Value: value})
	sort.SliceStable(a.Measurements, func(i, j int) bool {
		return a.Measurements[i].Date.Before(a.Measurements[j].Date)
	})
	return nil
}

// GlobalAssignment returns the first assignment flagged as reporting the
// element's global advance, or nil.
func GlobalAssignment(e *domain.OrderElement) *domain.AdvanceAssignment {
	for _, a := range e.AdvanceAssignments {
		if a.ReportGlobalAdvance {
			return a
		}
	}
	return nil
}

// SetGlobal makes the assignment of type t the only one reporting global
// advance for e.
func SetGlobal(e *domain.OrderElement, t *domain.AdvanceType) error {
	a := e.AssignmentFor(t)
	if a == nil {
		return fmt.Errorf("advance assignment %q on %q: %w", t.Name, e.Name, domain.ErrNotFound)
	}
	clearGlobal(e)
	a.ReportGlobalAdvance = true
	return nil
}

func clearGlobal(e *domain.OrderElement) {
	for _, a := range e.AdvanceAssignments {
		a.ReportGlobalAdvance = false
	}
}

// Percentage derives e's completion from the latest measurement of its
// global assignment, capped to [0, 100] and rounded to two places.
func Percentage(e *domain.OrderElement) Result {
	a := GlobalAssignment(e)
	if a == nil {
		return Result{}
	}
	return Of(a)
}

// Of computes the completion percentage of a single assignment.
func Of(a *domain.AdvanceAssignment) Result {
	m, ok := a.LatestMeasurement()
	if !ok || !a.MaxValue.IsPositive() {
		return Result{}
	}
	pct := m.Value.Div(a.MaxValue).Mul(hundred)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return Result{Value: pct.Round(2), Tracked: true}
}
