package testutil

import (
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/shopspring/decimal"
)

// Element options
type ElementOption func(*domain.OrderElement)

func WithCode(code string) ElementOption {
	return func(e *domain.OrderElement) {
		e.Code = code
	}
}

func WithDescription(d string) ElementOption {
	return func(e *domain.OrderElement) {
		e.Description = d
	}
}

func WithDates(init, deadline time.Time) ElementOption {
	return func(e *domain.OrderElement) {
		e.InitDate = &init
		e.Deadline = &deadline
	}
}

func WithChildren(children ...*domain.OrderElement) ElementOption {
	return func(e *domain.OrderElement) {
		e.Children = append(e.Children, children...)
	}
}

func WithLabels(labels ...*domain.Label) ElementOption {
	return func(e *domain.OrderElement) {
		for _, l := range labels {
			e.AddLabel(l)
		}
	}
}

func WithFixedGroup(name string, pct string) ElementOption {
	return func(e *domain.OrderElement) {
		e.HoursGroups = append(e.HoursGroups, &domain.HoursGroup{
			Name:            name,
			FixedPercentage: true,
			Percentage:      decimal.RequireFromString(pct),
		})
	}
}

func apply(e *domain.OrderElement, opts []ElementOption) *domain.OrderElement {
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewTestOrder(name string, opts ...ElementOption) *domain.OrderElement {
	return apply(domain.NewOrder(name), opts)
}

func NewTestGroup(name string, opts ...ElementOption) *domain.OrderElement {
	return apply(domain.NewGroup(name), opts)
}

// NewTestLine creates a line whose hours sit in a single default group.
func NewTestLine(name string, hours int, opts ...ElementOption) *domain.OrderElement {
	e := apply(domain.NewLine(name), opts)
	if err := e.SetLineHours(hours); err != nil {
		panic(err)
	}
	return e
}

// NewShipOrder builds a small coded order:
//
//	Ship (SHIP)
//	├─ Hull (SHIP-H)
//	│  ├─ Plates  (SHIP-H1) 10h
//	│  └─ Welding (SHIP-H2) 20h
//	├─ Engine (SHIP-E) 30h
//	└─ Paint  (SHIP-P)  5h
func NewShipOrder() *domain.OrderElement {
	return NewTestOrder("Ship", WithCode("SHIP"), WithChildren(
		NewTestGroup("Hull", WithCode("SHIP-H"), WithChildren(
			NewTestLine("Plates", 10, WithCode("SHIP-H1")),
			NewTestLine("Welding", 20, WithCode("SHIP-H2")),
		)),
		NewTestLine("Engine", 30, WithCode("SHIP-E")),
		NewTestLine("Paint", 5, WithCode("SHIP-P")),
	))
}

// NewTestLabelType creates a transient label type holding the given labels.
func NewTestLabelType(code, name string, labels ...string) *domain.LabelType {
	lt := domain.NewLabelType(code, name)
	for _, l := range labels {
		lt.AddLabel(l)
	}
	return lt
}

func NewPercentageAdvanceType() *domain.AdvanceType {
	return &domain.AdvanceType{Name: "Percentage", Unit: "%", DefaultMaxValue: decimal.NewFromInt(100), Percentage: true}
}

func NewUnitsAdvanceType(name string, max int64) *domain.AdvanceType {
	return &domain.AdvanceType{Name: name, Unit: "units", DefaultMaxValue: decimal.NewFromInt(max)}
}
