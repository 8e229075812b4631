package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
)

// OrderRepo persists whole order trees. Save must run inside a transaction
// (see db.UnitOfWork) so a failed save leaves the store untouched.
type OrderRepo interface {
	// Load returns the order root with its full subtree attached.
	Load(ctx context.Context, id string) (*domain.OrderElement, error)
	// Save writes the tree under root and returns the new version token.
	// A stale root version fails with domain.ConcurrentModificationError.
	Save(ctx context.Context, root *domain.OrderElement) (int64, error)
	Remove(ctx context.Context, id string) error
	// List returns order roots without children.
	List(ctx context.Context) ([]*domain.OrderElement, error)
	FindByCode(ctx context.Context, code string) (*domain.OrderElement, error)
	Codes(ctx context.Context) ([]string, error)
	IsAlreadyInUse(ctx context.Context, e *domain.OrderElement) (bool, error)
}

type LabelTypeRepo interface {
	GetAll(ctx context.Context) ([]*domain.LabelType, error)
	Find(ctx context.Context, id string) (*domain.LabelType, error)
	FindByName(ctx context.Context, name string) (*domain.LabelType, error)
	Save(ctx context.Context, lt *domain.LabelType) error
	Remove(ctx context.Context, id string) error
	// IsUnique reports whether no other label type carries lt's name.
	IsUnique(ctx context.Context, lt *domain.LabelType) (bool, error)
}

type AdvanceTypeRepo interface {
	Create(ctx context.Context, t *domain.AdvanceType) error
	GetByID(ctx context.Context, id string) (*domain.AdvanceType, error)
	GetByName(ctx context.Context, name string) (*domain.AdvanceType, error)
	List(ctx context.Context) ([]*domain.AdvanceType, error)
}

type CriterionRepo interface {
	Create(ctx context.Context, c *domain.Criterion) error
	GetByID(ctx context.Context, id string) (*domain.Criterion, error)
	GetByName(ctx context.Context, name string) (*domain.Criterion, error)
	List(ctx context.Context) ([]*domain.Criterion, error)
}

// WorkReportLine is hours booked against an order element.
type WorkReportLine struct {
	ID        string
	ElementID string
	Date      time.Time
	Hours     int
	CreatedAt time.Time
}

type WorkReportRepo interface {
	AddLine(ctx context.Context, l *WorkReportLine) error
	ListByElement(ctx context.Context, elementID string) ([]*WorkReportLine, error)
}
