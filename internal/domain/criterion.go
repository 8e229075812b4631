package domain

type Criterion struct {
	ID   string
	Name string
	Type CriterionType
}

// CriterionRequirement ties an element to a criterion. Invalid requirements
// stay attached but are ignored by filtering and display.
type CriterionRequirement struct {
	ID        string
	Criterion *Criterion
	Valid     bool
}

// SameAs compares criteria by identity, falling back to persisted IDs.
func (c *Criterion) SameAs(other *Criterion) bool {
	if c == nil || other == nil {
		return false
	}
	if c == other {
		return true
	}
	return c.ID != "" && c.ID == other.ID
}
