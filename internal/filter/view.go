package filter

import (
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/tree"
)

// View is a shallow node of a filtered tree. Element is the canonical
// element; Children is the filtered child list in original order.
type View struct {
	Element  *domain.OrderElement
	Children []*View
	// Matched is true when the predicate accepted Element itself rather than
	// only one of its descendants.
	Matched bool
}

// Apply prunes t to the elements accepted by p plus their ancestors. The
// root is always present. A nil or empty predicate yields the full tree.
func Apply(t *tree.Tree, p *Predicate) *View {
	root, _ := build(t.Root(), p)
	root.Matched = p.IsEmpty() || p.Accepts(t.Root())
	return root
}

// build walks bottom-up: children are evaluated first and e is kept when it
// matches directly or any child survived.
func build(e *domain.OrderElement, p *Predicate) (*View, bool) {
	v := &View{Element: e}
	for _, c := range e.Children {
		if cv, keep := build(c, p); keep {
			v.Children = append(v.Children, cv)
		}
	}
	v.Matched = p.Accepts(e)
	return v, v.Matched || len(v.Children) > 0
}

// Elements flattens the view in pre-order, excluding the root.
func (v *View) Elements() []*domain.OrderElement {
	var out []*domain.OrderElement
	var walk func(n *View)
	walk = func(n *View) {
		for _, c := range n.Children {
			out = append(out, c.Element)
			walk(c)
		}
	}
	walk(v)
	return out
}

// Find returns the view node holding e, or nil.
func (v *View) Find(e *domain.OrderElement) *View {
	if v.Element == e {
		return v
	}
	for _, c := range v.Children {
		if found := c.Find(e); found != nil {
			return found
		}
	}
	return nil
}

// Len counts the nodes below the root.
func (v *View) Len() int {
	return len(v.Elements())
}
