package domain

import "time"

// OrderElement is a node of an order's work-breakdown tree. Kind decides the
// variant: lines are leaves carrying hours groups, groups and orders are
// containers whose WorkHours are always derived from their children.
//
// Elements hold no parent pointer; the tree engine keeps the parent table.
type OrderElement struct {
	ID          string
	OrderID     string
	Kind        ElementKind
	Code        string
	Name        string
	Description string
	InitDate    *time.Time
	Deadline    *time.Time
	WorkHours   int

	Labels                []*Label
	CriterionRequirements []*CriterionRequirement
	AdvanceAssignments    []*AdvanceAssignment
	HoursGroups           []*HoursGroup // lines only
	Children              []*OrderElement

	SchedulingState *SchedulingState

	// CodeAutogenerated is only meaningful on the order root.
	CodeAutogenerated bool

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates a transient order root.
func NewOrder(name string) *OrderElement {
	return &OrderElement{Kind: KindOrder, Name: name}
}

// NewGroup creates a transient container element.
func NewGroup(name string) *OrderElement {
	return &OrderElement{Kind: KindGroup, Name: name}
}

// NewLine creates a transient leaf element.
func NewLine(name string) *OrderElement {
	return &OrderElement{Kind: KindLine, Name: name}
}

// IsNew reports whether the element has never been saved.
func (e *OrderElement) IsNew() bool {
	return e.ID == ""
}

// IsContainer reports whether the element may hold children.
func (e *OrderElement) IsContainer() bool {
	return e.Kind == KindGroup || e.Kind == KindOrder
}

// IsLeaf reports whether the element is an order line.
func (e *OrderElement) IsLeaf() bool {
	return e.Kind == KindLine
}

// ConvertToGroup turns a line into a container. A line that carries work
// hours hands them, with its hours groups, to a new line of the same name
// that becomes the group's first child, so the container total is unchanged.
// The new line is returned; nil when the line had no hours.
func (e *OrderElement) ConvertToGroup() *OrderElement {
	if e.IsContainer() {
		return nil
	}
	e.Kind = KindGroup
	var carrier *OrderElement
	if e.WorkHours > 0 {
		carrier = NewLine(e.Name)
		carrier.WorkHours = e.WorkHours
		carrier.HoursGroups = e.HoursGroups
		for _, g := range carrier.HoursGroups {
			g.ID = ""
		}
		e.Children = []*OrderElement{carrier}
	} else {
		e.WorkHours = 0
	}
	e.HoursGroups = nil
	return carrier
}

// ChildIndex returns the position of child among e's children, or -1.
func (e *OrderElement) ChildIndex(child *OrderElement) int {
	for i, c := range e.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// SumChildrenHours adds up the work hours of the direct children.
func (e *OrderElement) SumChildrenHours() int {
	total := 0
	for _, c := range e.Children {
		total += c.WorkHours
	}
	return total
}

// HasLabel reports whether e carries l, comparing by identity and then by ID.
func (e *OrderElement) HasLabel(l *Label) bool {
	for _, each := range e.Labels {
		if each.SameAs(l) {
			return true
		}
	}
	return false
}

// AddLabel attaches l unless it is already present.
func (e *OrderElement) AddLabel(l *Label) {
	if l == nil || e.HasLabel(l) {
		return
	}
	e.Labels = append(e.Labels, l)
}

// RemoveLabel detaches l if present.
func (e *OrderElement) RemoveLabel(l *Label) {
	for i, each := range e.Labels {
		if each.SameAs(l) {
			e.Labels = append(e.Labels[:i], e.Labels[i+1:]...)
			return
		}
	}
}

// AddCriterionRequirement attaches a requirement on c, marked valid.
func (e *OrderElement) AddCriterionRequirement(c *Criterion) *CriterionRequirement {
	for _, r := range e.CriterionRequirements {
		if r.Criterion.SameAs(c) {
			return r
		}
	}
	r := &CriterionRequirement{Criterion: c, Valid: true}
	e.CriterionRequirements = append(e.CriterionRequirements, r)
	return r
}

// ValidCriteria returns the criteria of the requirements currently marked valid.
func (e *OrderElement) ValidCriteria() []*Criterion {
	var out []*Criterion
	for _, r := range e.CriterionRequirements {
		if r.Valid {
			out = append(out, r.Criterion)
		}
	}
	return out
}

// Touch stamps UpdatedAt after a successful save.
func (e *OrderElement) Touch(now time.Time) {
	e.UpdatedAt = now
}
