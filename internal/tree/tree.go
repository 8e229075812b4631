// Package tree implements the order-element hierarchy engine: structural
// edits, work-hours roll-up and path numbering.
//
// Children are owned by their container's Children slice. Parent lookup goes
// through an identity-keyed table kept in the Tree, so elements never point
// back at their parents. A Tree is not safe for concurrent use; one editing
// session mutates it sequentially.
package tree

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/ordertree/internal/domain"
)

// UsageChecker reports whether work-report data references an element.
type UsageChecker interface {
	IsAlreadyInUse(ctx context.Context, e *domain.OrderElement) (bool, error)
}

// UsageCheckerFunc adapts a function to UsageChecker.
type UsageCheckerFunc func(ctx context.Context, e *domain.OrderElement) (bool, error)

func (f UsageCheckerFunc) IsAlreadyInUse(ctx context.Context, e *domain.OrderElement) (bool, error) {
	return f(ctx, e)
}

type Tree struct {
	root    *domain.OrderElement
	parents map[*domain.OrderElement]*domain.OrderElement
}

// New indexes the tree under root and recomputes every container total.
func New(root *domain.OrderElement) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("tree root is required")
	}
	if !root.IsContainer() {
		return nil, &domain.StructuralError{Op: "build tree", Reason: fmt.Sprintf("root %q is not a container", root.Name)}
	}
	t := &Tree{root: root, parents: make(map[*domain.OrderElement]*domain.OrderElement)}
	if err := t.index(root, map[*domain.OrderElement]bool{root: true}); err != nil {
		return nil, err
	}
	t.Recompute()
	return t, nil
}

func (t *Tree) index(parent *domain.OrderElement, seen map[*domain.OrderElement]bool) error {
	if parent.IsLeaf() && len(parent.Children) > 0 {
		return &domain.StructuralError{Op: "build tree", Reason: fmt.Sprintf("line %q has children", parent.Name)}
	}
	for _, c := range parent.Children {
		if seen[c] {
			return &domain.StructuralError{Op: "build tree", Reason: fmt.Sprintf("element %q appears more than once", c.Name)}
		}
		seen[c] = true
		t.parents[c] = parent
		if err := t.index(c, seen); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) Root() *domain.OrderElement {
	return t.root
}

// Contains reports whether e belongs to the tree.
func (t *Tree) Contains(e *domain.OrderElement) bool {
	if e == t.root {
		return true
	}
	_, ok := t.parents[e]
	return ok
}

// Parent returns e's container, or nil for the root and unknown elements.
func (t *Tree) Parent(e *domain.OrderElement) *domain.OrderElement {
	return t.parents[e]
}

// Parents returns the ancestor chain of e from its immediate parent up to the
// root, root last.
func (t *Tree) Parents(e *domain.OrderElement) []*domain.OrderElement {
	var out []*domain.OrderElement
	for p := t.parents[e]; p != nil; p = t.parents[p] {
		out = append(out, p)
	}
	return out
}

// Depth is the number of ancestors of e.
func (t *Tree) Depth(e *domain.OrderElement) int {
	return len(t.Parents(e))
}

// Path returns the 1-based sibling positions leading from the root to e.
// The root's path is empty. It is computed on every call.
func (t *Tree) Path(e *domain.OrderElement) []int {
	var rev []int
	for cur := e; ; {
		p := t.parents[cur]
		if p == nil {
			break
		}
		rev = append(rev, p.ChildIndex(cur)+1)
		cur = p
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// PathString formats Path as "1.3.2".
func (t *Tree) PathString(e *domain.OrderElement) string {
	return FormatPath(t.Path(e))
}

// FormatPath joins path positions with dots.
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

// Walk visits every element in pre-order, root first. Returning false from
// fn skips the element's subtree.
func (t *Tree) Walk(fn func(e *domain.OrderElement) bool) {
	walk(t.root, fn)
}

func walk(e *domain.OrderElement, fn func(e *domain.OrderElement) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		walk(c, fn)
	}
}

// Elements returns every element below the root in pre-order.
func (t *Tree) Elements() []*domain.OrderElement {
	var out []*domain.OrderElement
	t.Walk(func(e *domain.OrderElement) bool {
		if e != t.root {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Descendants returns e and everything below it in pre-order.
func Descendants(e *domain.OrderElement) []*domain.OrderElement {
	var out []*domain.OrderElement
	walk(e, func(each *domain.OrderElement) bool {
		out = append(out, each)
		return true
	})
	return out
}

// Recompute resums every container bottom-up.
func (t *Tree) Recompute() {
	recompute(t.root)
}

func recompute(e *domain.OrderElement) int {
	if e.IsLeaf() {
		return e.WorkHours
	}
	total := 0
	for _, c := range e.Children {
		total += recompute(c)
	}
	e.WorkHours = total
	return total
}

// resumAncestors recomputes each ancestor of e from its direct children,
// nearest first.
func (t *Tree) resumAncestors(e *domain.OrderElement) {
	for p := t.parents[e]; p != nil; p = t.parents[p] {
		p.WorkHours = p.SumChildrenHours()
	}
}

func (t *Tree) resumFrom(container *domain.OrderElement) {
	container.WorkHours = container.SumChildrenHours()
	t.resumAncestors(container)
}
