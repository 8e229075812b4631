package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/advance"
	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/filter"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/alexanderramin/ordertree/internal/tree"
	"github.com/alexanderramin/ordertree/internal/validation"
	"github.com/shopspring/decimal"
)

// ErrSessionClosed is returned by a discarded session.
var ErrSessionClosed = errors.New("edit session is closed")

// EditSession holds one user's in-memory edits of one order. Nothing reaches
// the store until Save; a session is used by a single goroutine.
type EditSession struct {
	orders   repository.OrderRepo
	uow      db.UnitOfWork
	codes    CodeSettings
	observer UseCaseObserver

	tree   *tree.Tree
	filter filter.Session
	closed bool
	stale  bool
}

func newEditSession(t *tree.Tree, orders repository.OrderRepo, uow db.UnitOfWork, codes CodeSettings, observer UseCaseObserver) *EditSession {
	return &EditSession{orders: orders, uow: uow, codes: codes, observer: observer, tree: t}
}

func (s *EditSession) Order() *domain.OrderElement {
	return s.tree.Root()
}

func (s *EditSession) Tree() *tree.Tree {
	return s.tree
}

// Stale reports whether the last save hit a concurrent modification. A stale
// session must be reloaded before it can save again.
func (s *EditSession) Stale() bool {
	return s.stale
}

func (s *EditSession) guard() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Resolve finds an element by path ("1.3.2") or by code. An empty ref or
// "0" is the order itself.
func (s *EditSession) Resolve(ref string) (*domain.OrderElement, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "0" {
		return s.tree.Root(), nil
	}
	if path, ok := parsePath(ref); ok {
		if e := s.byPath(path); e != nil {
			return e, nil
		}
		return nil, fmt.Errorf("element at %s: %w", ref, domain.ErrNotFound)
	}
	var found *domain.OrderElement
	s.tree.Walk(func(e *domain.OrderElement) bool {
		if found == nil && e.Code == ref {
			found = e
		}
		return found == nil
	})
	if found == nil {
		return nil, fmt.Errorf("element %q: %w", ref, domain.ErrNotFound)
	}
	return found, nil
}

func parsePath(ref string) ([]int, bool) {
	parts := strings.Split(ref, ".")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, false
		}
		path[i] = n
	}
	return path, true
}

func (s *EditSession) byPath(path []int) *domain.OrderElement {
	cur := s.tree.Root()
	for _, pos := range path {
		if pos > len(cur.Children) {
			return nil
		}
		cur = cur.Children[pos-1]
	}
	return cur
}

// Path returns e's dotted position, recomputed on every call.
func (s *EditSession) Path(e *domain.OrderElement) string {
	return s.tree.PathString(e)
}

func (s *EditSession) refuseWhileFiltered() error {
	if s.filter.Active() {
		return &domain.StructuralError{Op: "add element", Reason: "new elements cannot be added while a filter is applied"}
	}
	return nil
}

// AddLine appends a new line under parent with the given hours.
func (s *EditSession) AddLine(parent *domain.OrderElement, name string, hours int) (*domain.OrderElement, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if err := s.refuseWhileFiltered(); err != nil {
		return nil, err
	}
	line := domain.NewLine(strings.TrimSpace(name))
	if line.Name == "" {
		return nil, &domain.ValidationError{Entity: line, Field: "name", Msg: "cannot be empty"}
	}
	if err := line.SetLineHours(hours); err != nil {
		return nil, err
	}
	if err := s.tree.AddChild(parent, line); err != nil {
		return nil, err
	}
	return line, nil
}

// AddGroup appends a new empty group under parent.
func (s *EditSession) AddGroup(parent *domain.OrderElement, name string) (*domain.OrderElement, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if err := s.refuseWhileFiltered(); err != nil {
		return nil, err
	}
	group := domain.NewGroup(strings.TrimSpace(name))
	if group.Name == "" {
		return nil, &domain.ValidationError{Entity: group, Field: "name", Msg: "cannot be empty"}
	}
	if err := s.tree.AddChild(parent, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Remove detaches e and its subtree unless work reports reference any of them.
func (s *EditSession) Remove(ctx context.Context, e *domain.OrderElement) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.tree.Remove(ctx, e, s.orders)
}

func (s *EditSession) MoveUp(e *domain.OrderElement) bool   { return !s.closed && s.tree.MoveUp(e) }
func (s *EditSession) MoveDown(e *domain.OrderElement) bool { return !s.closed && s.tree.MoveDown(e) }
func (s *EditSession) Indent(e *domain.OrderElement) bool   { return !s.closed && s.tree.Indent(e) }
func (s *EditSession) Unindent(e *domain.OrderElement) bool { return !s.closed && s.tree.Unindent(e) }

func (s *EditSession) SetWorkHours(e *domain.OrderElement, hours int) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.tree.SetWorkHours(e, hours)
}

func (s *EditSession) Rename(e *domain.OrderElement, name string) error {
	if err := s.guard(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &domain.ValidationError{Entity: e, Field: "name", Msg: "cannot be empty"}
	}
	e.Name = name
	return nil
}

func (s *EditSession) SetCode(e *domain.OrderElement, code string) error {
	if err := s.guard(); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if !validation.IsFormatCodeValid(code) {
		return &domain.ValidationError{Entity: e, Field: "code", Value: code,
			Msg: "cannot be empty or contain the character \"" + validation.Separator + "\""}
	}
	e.Code = code
	return nil
}

func (s *EditSession) SetDescription(e *domain.OrderElement, description string) {
	e.Description = description
}

// SetDates replaces e's start date and deadline; either may be nil.
func (s *EditSession) SetDates(e *domain.OrderElement, init, deadline *time.Time) error {
	if err := s.guard(); err != nil {
		return err
	}
	e.InitDate, e.Deadline = init, deadline
	return nil
}

func (s *EditSession) AddLabel(e *domain.OrderElement, l *domain.Label) {
	e.AddLabel(l)
}

func (s *EditSession) RemoveLabel(e *domain.OrderElement, l *domain.Label) {
	e.RemoveLabel(l)
}

func (s *EditSession) AddCriterion(e *domain.OrderElement, c *domain.Criterion) *domain.CriterionRequirement {
	return e.AddCriterionRequirement(c)
}

func (s *EditSession) AssignAdvance(e *domain.OrderElement, t *domain.AdvanceType, global bool, maxValue decimal.Decimal) (*domain.AdvanceAssignment, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return advance.Assign(e, t, global, maxValue)
}

// RecordAdvance adds a measurement to e's assignment of type t.
func (s *EditSession) RecordAdvance(e *domain.OrderElement, t *domain.AdvanceType, date time.Time, value decimal.Decimal) error {
	if err := s.guard(); err != nil {
		return err
	}
	a := e.AssignmentFor(t)
	if a == nil {
		return fmt.Errorf("advance %q on %q: %w", t.Name, e.Name, domain.ErrNotFound)
	}
	return advance.RecordMeasurement(a, date, value)
}

// SetGlobalAdvance makes t the assignment reporting e's headline advance.
func (s *EditSession) SetGlobalAdvance(e *domain.OrderElement, t *domain.AdvanceType) error {
	if err := s.guard(); err != nil {
		return err
	}
	return advance.SetGlobal(e, t)
}

func (s *EditSession) AdvancePercentage(e *domain.OrderElement) advance.Result {
	return advance.Percentage(e)
}

// ApplyFilter replaces the session's filter. A nil predicate clears it.
func (s *EditSession) ApplyFilter(p *filter.Predicate) {
	s.filter.Apply(p)
}

func (s *EditSession) ClearFilter() {
	s.filter.Clear()
}

func (s *EditSession) Filtered() bool {
	return s.filter.Active()
}

func (s *EditSession) Filter() *filter.Predicate {
	return s.filter.Predicate()
}

// View returns the tree as currently filtered.
func (s *EditSession) View() *filter.View {
	return s.filter.View(s.tree)
}

// SchedulingStateOf returns the externally computed scheduling state of e.
func (s *EditSession) SchedulingStateOf(e *domain.OrderElement) domain.SchedulingState {
	return domain.SchedulingStateOrDefault(e.SchedulingState)
}

// Save generates missing codes, validates the whole order and writes it in
// one transaction. It returns the new version. A ConcurrentModificationError
// leaves the store untouched and marks the session stale.
func (s *EditSession) Save(ctx context.Context) (version int64, err error) {
	root := s.tree.Root()
	fields := map[string]any{"order": root.Name, "new": root.IsNew()}
	defer observe(ctx, s.observer, "save-order", time.Now(), fields, &err)

	if err = s.guard(); err != nil {
		return 0, err
	}
	if s.stale {
		return 0, fmt.Errorf("order %q changed in the store; reload before saving", root.Name)
	}

	fresh := repository.AssignIDs(root)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		orders := repository.NewSQLiteOrderRepo(tx)
		if err := s.generateCodes(ctx, orders); err != nil {
			return err
		}
		if err := validation.ValidateOrder(s.tree); err != nil {
			return err
		}
		v, err := orders.Save(ctx, root)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	var conflict *domain.ConcurrentModificationError
	if errors.As(err, &conflict) {
		s.stale = true
	}
	if err != nil {
		repository.ClearIDs(fresh)
		return 0, err
	}
	repository.MarkSaved(root, version, time.Now().UTC())
	fields["version"] = version
	fields["code"] = root.Code
	return version, nil
}

func (s *EditSession) generateCodes(ctx context.Context, orders repository.OrderRepo) error {
	root := s.tree.Root()
	if !root.CodeAutogenerated {
		return nil
	}
	width := s.codes.CodeDigitWidth()
	if strings.TrimSpace(root.Code) == "" {
		existing, err := orders.Codes(ctx)
		if err != nil {
			return err
		}
		prefix := domain.OrderCodePrefix(s.codes.CodePrefix())
		root.Code = validation.NextCode(prefix+validation.ChildSeparator, existing, width)
	}
	validation.GenerateCodes(root.Code+validation.ChildSeparator, s.tree.Elements(), width)
	return nil
}

// Reload discards in-memory edits and reloads the order from the store.
// The filter survives a reload.
func (s *EditSession) Reload(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	root := s.tree.Root()
	if root.IsNew() {
		return fmt.Errorf("order %q has never been saved", root.Name)
	}
	stored, err := s.orders.Load(ctx, root.ID)
	if err != nil {
		return err
	}
	t, err := tree.New(stored)
	if err != nil {
		return err
	}
	s.tree = t
	s.stale = false
	return nil
}

// Discard drops the session's edits. Later calls fail with ErrSessionClosed.
func (s *EditSession) Discard() {
	s.closed = true
	s.filter.Clear()
}
