// Package filter evaluates compound predicates over an order tree and builds
// pruned views of it. Views reference the canonical elements, so edits made
// through a view reach the real tree.
package filter

import (
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
)

type SelectorKind string

const (
	SelectorLabel     SelectorKind = "label"
	SelectorCriterion SelectorKind = "criterion"
)

// Selector picks elements tagged with a label or requiring a criterion. ID is
// preferred when set; otherwise Name is compared case-insensitively.
type Selector struct {
	Kind SelectorKind
	ID   string
	Name string
}

// Predicate is a conjunction of optional clauses. An absent clause accepts
// everything.
type Predicate struct {
	Selectors  []Selector
	StartDate  *time.Time
	FinishDate *time.Time
	Name       string
}

// NewPredicate validates the filter inputs. It returns nil (no filter) when
// every clause is empty.
func NewPredicate(selectors []Selector, start, finish *time.Time, name string) (*Predicate, error) {
	if err := ValidateDateRange(start, finish); err != nil {
		return nil, err
	}
	p := &Predicate{
		Selectors:  selectors,
		StartDate:  start,
		FinishDate: finish,
		Name:       strings.TrimSpace(name),
	}
	if p.IsEmpty() {
		return nil, nil
	}
	return p, nil
}

// ValidateDateRange rejects a finish date that precedes the start date.
func ValidateDateRange(start, finish *time.Time) error {
	if start != nil && finish != nil && finish.Before(*start) {
		return &domain.ValidationError{
			Field: "finish_date",
			Value: finish.Format("2006-01-02"),
			Msg:   "must be greater than start date",
		}
	}
	return nil
}

func (p *Predicate) IsEmpty() bool {
	return p == nil || (len(p.Selectors) == 0 && p.StartDate == nil && p.FinishDate == nil && p.Name == "")
}

// Accepts reports whether e matches every present clause directly.
func (p *Predicate) Accepts(e *domain.OrderElement) bool {
	if p.IsEmpty() {
		return true
	}
	return p.acceptsSelectors(e) && p.acceptsDates(e) && p.acceptsName(e)
}

func (p *Predicate) acceptsSelectors(e *domain.OrderElement) bool {
	if len(p.Selectors) == 0 {
		return true
	}
	for _, s := range p.Selectors {
		switch s.Kind {
		case SelectorLabel:
			for _, l := range e.Labels {
				if s.matches(l.ID, l.Name) {
					return true
				}
			}
		case SelectorCriterion:
			for _, c := range e.ValidCriteria() {
				if s.matches(c.ID, c.Name) {
					return true
				}
			}
		}
	}
	return false
}

func (s Selector) matches(id, name string) bool {
	if s.ID != "" {
		return s.ID == id
	}
	return strings.EqualFold(s.Name, name)
}

// acceptsDates checks that e's [InitDate, Deadline] overlaps the filter
// window. Missing ends are unbounded, but an element without any date never
// matches a date clause.
func (p *Predicate) acceptsDates(e *domain.OrderElement) bool {
	if p.StartDate == nil && p.FinishDate == nil {
		return true
	}
	if e.InitDate == nil && e.Deadline == nil {
		return false
	}
	if p.StartDate != nil && e.Deadline != nil && e.Deadline.Before(*p.StartDate) {
		return false
	}
	if p.FinishDate != nil && e.InitDate != nil && e.InitDate.After(*p.FinishDate) {
		return false
	}
	return true
}

func (p *Predicate) acceptsName(e *domain.OrderElement) bool {
	if p.Name == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), strings.ToLower(p.Name))
}
