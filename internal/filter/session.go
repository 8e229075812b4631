package filter

import "github.com/alexanderramin/ordertree/internal/tree"

// Session holds the filter of one editing session. It replaces process-wide
// filter state: each session owns its predicate.
type Session struct {
	predicate *Predicate
}

// Apply activates p. An empty predicate clears the filter.
func (s *Session) Apply(p *Predicate) {
	if p.IsEmpty() {
		s.predicate = nil
		return
	}
	s.predicate = p
}

func (s *Session) Clear() {
	s.predicate = nil
}

// Active reports whether a filter is applied.
func (s *Session) Active() bool {
	return s.predicate != nil
}

func (s *Session) Predicate() *Predicate {
	return s.predicate
}

// View builds the view of t under the session's filter.
func (s *Session) View(t *tree.Tree) *View {
	return Apply(t, s.predicate)
}
