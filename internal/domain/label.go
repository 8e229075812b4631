package domain

import "time"

// LabelType owns a set of labels. Label names are unique within a type and
// type names are unique across types; both are checked at save time.
type LabelType struct {
	ID                string
	Code              string
	Name              string
	CodeAutogenerated bool
	Labels            []*Label
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Label struct {
	ID     string
	Code   string
	Name   string
	TypeID string
}

// NewLabelType creates a transient label type.
func NewLabelType(code, name string) *LabelType {
	return &LabelType{Code: code, Name: name}
}

func (lt *LabelType) IsNew() bool {
	return lt.ID == ""
}

// AddLabel creates a label named name and attaches it to lt. Duplicates are
// allowed here and reported by the save-time uniqueness scan.
func (lt *LabelType) AddLabel(name string) *Label {
	l := &Label{Name: name, TypeID: lt.ID}
	lt.Labels = append(lt.Labels, l)
	return l
}

// RemoveLabel detaches l from lt.
func (lt *LabelType) RemoveLabel(l *Label) {
	for i, each := range lt.Labels {
		if each == l {
			lt.Labels = append(lt.Labels[:i], lt.Labels[i+1:]...)
			return
		}
	}
}

// LabelNameIsUnique reports whether exactly one label of lt is named name.
func (lt *LabelType) LabelNameIsUnique(name string) bool {
	count := 0
	for _, l := range lt.Labels {
		if l.Name == name {
			count++
		}
	}
	return count == 1
}

// FindLabel returns the label named name, or nil.
func (lt *LabelType) FindLabel(name string) *Label {
	for _, l := range lt.Labels {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// SameAs compares labels by identity, falling back to persisted IDs.
func (l *Label) SameAs(other *Label) bool {
	if l == nil || other == nil {
		return false
	}
	if l == other {
		return true
	}
	return l.ID != "" && l.ID == other.ID
}

func (l *Label) String() string {
	return l.Name
}
