package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HoursGroup is a named allocation of a line's work hours. Fixed groups take
// Percentage (0..1) of the line total; free groups share what is left.
type HoursGroup struct {
	ID              string
	Code            string
	Name            string
	Hours           int
	FixedPercentage bool
	Percentage      decimal.Decimal
}

// fixedShare is the hours a fixed group receives out of total.
func (g *HoursGroup) fixedShare(total int) int {
	return int(decimal.NewFromInt(int64(total)).Mul(g.Percentage).Floor().IntPart())
}

// IsTotalHoursValid reports whether total can be distributed over the
// line's hours groups.
func (e *OrderElement) IsTotalHoursValid(total int) bool {
	if total < 0 || !e.IsLeaf() {
		return false
	}
	fixed, free := 0, 0
	for _, g := range e.HoursGroups {
		if g.FixedPercentage {
			fixed += g.fixedShare(total)
		} else {
			free++
		}
	}
	if fixed > total {
		return false
	}
	if free == 0 && len(e.HoursGroups) > 0 && fixed != total {
		return false
	}
	return true
}

// SetLineHours distributes total over the line's hours groups and updates
// WorkHours. The element is left untouched when total is infeasible.
func (e *OrderElement) SetLineHours(total int) error {
	if !e.IsLeaf() {
		return &StructuralError{Op: "set work hours", Reason: fmt.Sprintf("%q is a container; its hours are derived", e.Name)}
	}
	if !e.IsTotalHoursValid(total) {
		return &ValidationError{
			Entity: e,
			Field:  "work_hours",
			Value:  total,
			Msg:    "value is not valid, taking into account the current list of hours groups",
		}
	}

	if len(e.HoursGroups) == 0 {
		e.HoursGroups = []*HoursGroup{{Name: e.Name, Hours: total}}
		e.WorkHours = total
		return nil
	}

	var free []*HoursGroup
	fixed := 0
	for _, g := range e.HoursGroups {
		if g.FixedPercentage {
			g.Hours = g.fixedShare(total)
			fixed += g.Hours
		} else {
			free = append(free, g)
		}
	}

	remainder := total - fixed
	prev := 0
	for _, g := range free {
		prev += g.Hours
	}
	assigned := 0
	for i, g := range free {
		if i == len(free)-1 {
			g.Hours = remainder - assigned
			break
		}
		share := remainder / len(free)
		if prev > 0 {
			share = remainder * g.Hours / prev
		}
		g.Hours = share
		assigned += share
	}

	e.WorkHours = total
	return nil
}

// HoursGroupsTotal adds up the hours of the line's groups.
func (e *OrderElement) HoursGroupsTotal() int {
	total := 0
	for _, g := range e.HoursGroups {
		total += g.Hours
	}
	return total
}
