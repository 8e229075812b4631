package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceType is a unit-of-progress definition (percentage, currency, units).
type AdvanceType struct {
	ID              string
	Name            string
	Unit            string
	DefaultMaxValue decimal.Decimal
	Percentage      bool
}

// AdvanceAssignment binds an element to an AdvanceType. Only the assignment
// flagged ReportGlobalAdvance feeds the element's headline percentage.
type AdvanceAssignment struct {
	ID                  string
	Type                *AdvanceType
	ReportGlobalAdvance bool
	MaxValue            decimal.Decimal
	Measurements        []AdvanceMeasurement
}

// AdvanceMeasurement is a dated cumulative progress value.
type AdvanceMeasurement struct {
	Date  time.Time
	Value decimal.Decimal
}

// SameAs compares advance types by identity, falling back to persisted IDs.
func (t *AdvanceType) SameAs(other *AdvanceType) bool {
	if t == nil || other == nil {
		return false
	}
	if t == other {
		return true
	}
	return t.ID != "" && t.ID == other.ID
}

// LatestMeasurement returns the most recent measurement by date.
func (a *AdvanceAssignment) LatestMeasurement() (AdvanceMeasurement, bool) {
	if len(a.Measurements) == 0 {
		return AdvanceMeasurement{}, false
	}
	latest := a.Measurements[0]
	for _, m := range a.Measurements[1:] {
		if !m.Date.Before(latest.Date) {
			latest = m
		}
	}
	return latest, true
}

// AssignmentFor returns e's assignment of type t, or nil.
func (e *OrderElement) AssignmentFor(t *AdvanceType) *AdvanceAssignment {
	for _, a := range e.AdvanceAssignments {
		if a.Type.SameAs(t) {
			return a
		}
	}
	return nil
}
