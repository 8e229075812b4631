package service

import (
	"context"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/importer"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/shopspring/decimal"
)

// CodeSettings is the configuration consulted when codes are generated.
// *config.Config satisfies it.
type CodeSettings interface {
	GenerateCodeForLabel() bool
	GenerateCodeForOrder() bool
	CodeDigitWidth() int
	CodePrefix() string
}

// OrderService lists stored orders and opens editing sessions on them.
type OrderService interface {
	List(ctx context.Context) ([]*domain.OrderElement, error)
	// Get loads a full order by ID or code.
	Get(ctx context.Context, ref string) (*domain.OrderElement, error)
	New(name string) (*EditSession, error)
	Open(ctx context.Context, ref string) (*EditSession, error)
	Remove(ctx context.Context, ref string) error
	// Validate runs the save-time checks against a stored order.
	Validate(ctx context.Context, ref string) error
}

type LabelTypeService interface {
	List(ctx context.Context) ([]*domain.LabelType, error)
	// Get loads a label type by ID or name.
	Get(ctx context.Context, ref string) (*domain.LabelType, error)
	FindLabel(ctx context.Context, typeName, labelName string) (*domain.Label, error)
	InitCreate(name string) *domain.LabelType
	InitEdit(ctx context.Context, id string) (*domain.LabelType, error)
	AddLabel(lt *domain.LabelType, name string) (*domain.Label, error)
	RemoveLabel(lt *domain.LabelType, l *domain.Label)
	LabelNameIsUnique(lt *domain.LabelType, name string) bool
	ConfirmSave(ctx context.Context, lt *domain.LabelType) error
	ConfirmDelete(ctx context.Context, lt *domain.LabelType) error
}

// CatalogService manages the advance types and criteria elements refer to.
type CatalogService interface {
	CreateAdvanceType(ctx context.Context, name, unit string, maxValue decimal.Decimal, percentage bool) (*domain.AdvanceType, error)
	AdvanceTypes(ctx context.Context) ([]*domain.AdvanceType, error)
	AdvanceType(ctx context.Context, name string) (*domain.AdvanceType, error)
	CreateCriterion(ctx context.Context, name string, kind domain.CriterionType) (*domain.Criterion, error)
	Criteria(ctx context.Context) ([]*domain.Criterion, error)
	Criterion(ctx context.Context, name string) (*domain.Criterion, error)
}

type WorkReportService interface {
	// Report books hours against a saved element. Booked elements can no
	// longer be removed from their order.
	Report(ctx context.Context, e *domain.OrderElement, date time.Time, hours int) (*repository.WorkReportLine, error)
	Lines(ctx context.Context, e *domain.OrderElement) ([]*repository.WorkReportLine, error)
}

// ImportResult holds the outcome of an order import.
type ImportResult struct {
	Order        *domain.OrderElement
	ElementCount int
	LineCount    int
	Version      int64
}

type ImportService interface {
	ImportOrder(ctx context.Context, filePath string) (*ImportResult, error)
	ImportOrderFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
