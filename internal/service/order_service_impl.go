package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/alexanderramin/ordertree/internal/tree"
	"github.com/alexanderramin/ordertree/internal/validation"
)

type orderService struct {
	orders   repository.OrderRepo
	uow      db.UnitOfWork
	codes    CodeSettings
	observer UseCaseObserver
}

func NewOrderService(orders repository.OrderRepo, uow db.UnitOfWork, codes CodeSettings, observers ...UseCaseObserver) OrderService {
	return &orderService{
		orders:   orders,
		uow:      uow,
		codes:    codes,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *orderService) List(ctx context.Context) ([]*domain.OrderElement, error) {
	return s.orders.List(ctx)
}

func (s *orderService) Get(ctx context.Context, ref string) (*domain.OrderElement, error) {
	ref = strings.TrimSpace(ref)
	order, err := s.orders.Load(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return s.orders.FindByCode(ctx, ref)
	}
	return order, err
}

func (s *orderService) New(name string) (*EditSession, error) {
	root := domain.NewOrder(strings.TrimSpace(name))
	root.CodeAutogenerated = s.codes.GenerateCodeForOrder()
	t, err := tree.New(root)
	if err != nil {
		return nil, err
	}
	return newEditSession(t, s.orders, s.uow, s.codes, s.observer), nil
}

func (s *orderService) Open(ctx context.Context, ref string) (*EditSession, error) {
	order, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	t, err := tree.New(order)
	if err != nil {
		return nil, fmt.Errorf("order %q: %w", order.Name, err)
	}
	return newEditSession(t, s.orders, s.uow, s.codes, s.observer), nil
}

// Remove deletes a stored order. Orders with work-report lines are kept.
func (s *orderService) Remove(ctx context.Context, ref string) (err error) {
	fields := map[string]any{"ref": ref}
	defer observe(ctx, s.observer, "remove-order", time.Now(), fields, &err)

	order, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	fields["order"] = order.Name
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteOrderRepo(tx).Remove(ctx, order.ID)
	})
}

func (s *orderService) Validate(ctx context.Context, ref string) error {
	order, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	t, err := tree.New(order)
	if err != nil {
		return err
	}
	return validation.ValidateOrder(t)
}
