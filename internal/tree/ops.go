package tree

import (
	"context"
	"fmt"

	"github.com/alexanderramin/ordertree/internal/domain"
)

// AddChild inserts element under container, at the given index when one is
// passed (clamped to the child list) and at the end otherwise. element must be
// detached; attaching an ancestor of container would create a cycle.
func (t *Tree) AddChild(container, element *domain.OrderElement, at ...int) error {
	const op = "add child"
	if element == nil {
		return &domain.StructuralError{Op: op, Reason: "element is required"}
	}
	if !t.Contains(container) {
		return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("container %q is not part of this order", container.Name)}
	}
	if !container.IsContainer() {
		return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("%q is an order line and cannot hold children", container.Name)}
	}
	if element == container || t.isAncestor(element, container) {
		return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("%q is an ancestor of %q", element.Name, container.Name)}
	}
	if element.Kind == domain.KindOrder {
		return &domain.StructuralError{Op: op, Reason: "an order cannot be nested"}
	}
	for _, d := range Descendants(element) {
		if t.Contains(d) {
			return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("%q already belongs to this order", d.Name)}
		}
	}
	if element.IsLeaf() && len(element.Children) > 0 {
		return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("line %q has children", element.Name)}
	}

	pos := len(container.Children)
	if len(at) > 0 {
		pos = clamp(at[0], 0, len(container.Children))
	}
	container.Children = insertAt(container.Children, pos, element)
	t.parents[element] = container
	if err := t.index(element, map[*domain.OrderElement]bool{}); err != nil {
		// index only fails on malformed subtrees; undo the insertion
		container.Children = removeAt(container.Children, pos)
		t.forget(element)
		return err
	}
	recompute(element)
	t.resumFrom(container)
	return nil
}

// RemoveChild detaches element (and its subtree) from container. Removal is
// refused with InUseError when the element or any descendant is referenced
// by work reports, and the tree is left unchanged.
func (t *Tree) RemoveChild(ctx context.Context, container, element *domain.OrderElement, usage UsageChecker) error {
	const op = "remove child"
	if !container.IsContainer() {
		return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("%q is an order line", container.Name)}
	}
	if t.parents[element] != container {
		return &domain.StructuralError{Op: op, Reason: fmt.Sprintf("%q is not a child of %q", element.Name, container.Name)}
	}
	if usage != nil {
		for _, d := range Descendants(element) {
			inUse, err := usage.IsAlreadyInUse(ctx, d)
			if err != nil {
				return fmt.Errorf("checking usage of %q: %w", d.Name, err)
			}
			if inUse {
				return &domain.InUseError{Element: element}
			}
		}
	}

	container.Children = removeAt(container.Children, container.ChildIndex(element))
	t.forget(element)
	t.resumFrom(container)
	return nil
}

// Remove detaches element from whatever container holds it.
func (t *Tree) Remove(ctx context.Context, element *domain.OrderElement, usage UsageChecker) error {
	p := t.parents[element]
	if p == nil {
		return &domain.StructuralError{Op: "remove", Reason: fmt.Sprintf("%q has no parent in this order", element.Name)}
	}
	return t.RemoveChild(ctx, p, element, usage)
}

// MoveUp swaps e with its previous sibling. It reports false and does
// nothing when e is already first.
func (t *Tree) MoveUp(e *domain.OrderElement) bool {
	p := t.parents[e]
	if p == nil {
		return false
	}
	i := p.ChildIndex(e)
	if i <= 0 {
		return false
	}
	p.Children[i-1], p.Children[i] = p.Children[i], p.Children[i-1]
	return true
}

// MoveDown swaps e with its next sibling. It reports false and does nothing
// when e is already last.
func (t *Tree) MoveDown(e *domain.OrderElement) bool {
	p := t.parents[e]
	if p == nil {
		return false
	}
	i := p.ChildIndex(e)
	if i < 0 || i >= len(p.Children)-1 {
		return false
	}
	p.Children[i+1], p.Children[i] = p.Children[i], p.Children[i+1]
	return true
}

// Indent makes e the last child of its preceding sibling, turning that
// sibling into a group when it is a line. The line's hours stay under the
// group in a same-named first child. No-op when e has no preceding sibling.
func (t *Tree) Indent(e *domain.OrderElement) bool {
	p := t.parents[e]
	if p == nil {
		return false
	}
	i := p.ChildIndex(e)
	if i <= 0 {
		return false
	}
	target := p.Children[i-1]
	if carrier := target.ConvertToGroup(); carrier != nil {
		t.parents[carrier] = target
	}

	p.Children = removeAt(p.Children, i)
	target.Children = append(target.Children, e)
	t.parents[e] = target
	t.resumFrom(target)
	return true
}

// Unindent makes e the next sibling of its current parent. No-op when the
// parent is the root.
func (t *Tree) Unindent(e *domain.OrderElement) bool {
	p := t.parents[e]
	if p == nil {
		return false
	}
	gp := t.parents[p]
	if gp == nil {
		return false
	}
	p.Children = removeAt(p.Children, p.ChildIndex(e))
	gp.Children = insertAt(gp.Children, gp.ChildIndex(p)+1, e)
	t.parents[e] = gp
	t.resumFrom(p)
	return true
}

// SetWorkHours sets a line's hours and resums every ancestor from its direct
// children. Infeasible totals are rejected and nothing changes.
func (t *Tree) SetWorkHours(e *domain.OrderElement, hours int) error {
	if !t.Contains(e) {
		return &domain.StructuralError{Op: "set work hours", Reason: fmt.Sprintf("%q is not part of this order", e.Name)}
	}
	if err := e.SetLineHours(hours); err != nil {
		return err
	}
	t.resumAncestors(e)
	return nil
}

func (t *Tree) isAncestor(candidate, e *domain.OrderElement) bool {
	for p := t.parents[e]; p != nil; p = t.parents[p] {
		if p == candidate {
			return true
		}
	}
	return false
}

func (t *Tree) forget(e *domain.OrderElement) {
	for _, d := range Descendants(e) {
		delete(t.parents, d)
	}
}

func insertAt(s []*domain.OrderElement, i int, e *domain.OrderElement) []*domain.OrderElement {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = e
	return s
}

func removeAt(s []*domain.OrderElement, i int) []*domain.OrderElement {
	if i < 0 || i >= len(s) {
		return s
	}
	return append(s[:i], s[i+1:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
