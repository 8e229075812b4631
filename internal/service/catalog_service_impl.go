package service

import (
	"context"
	"errors"
	"strings"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/shopspring/decimal"
)

type catalogService struct {
	advanceTypes repository.AdvanceTypeRepo
	criteria     repository.CriterionRepo
}

func NewCatalogService(advanceTypes repository.AdvanceTypeRepo, criteria repository.CriterionRepo) CatalogService {
	return &catalogService{advanceTypes: advanceTypes, criteria: criteria}
}

// CreateAdvanceType stores a new advance type. Percentage types default to a
// maximum of 100.
func (s *catalogService) CreateAdvanceType(ctx context.Context, name, unit string, maxValue decimal.Decimal, percentage bool) (*domain.AdvanceType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "advance type name", Msg: "cannot be empty"}
	}
	if maxValue.IsZero() && percentage {
		maxValue = decimal.NewFromInt(100)
	}
	if !maxValue.IsPositive() {
		return nil, &domain.ValidationError{Field: "max_value", Value: maxValue.String(), Msg: "must be greater than zero"}
	}
	if existing, err := s.advanceTypes.GetByName(ctx, name); err == nil {
		return nil, &domain.DuplicateError{Field: "advance type name", Value: name, Entities: []any{existing}}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	t := &domain.AdvanceType{Name: name, Unit: unit, DefaultMaxValue: maxValue, Percentage: percentage}
	if err := s.advanceTypes.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *catalogService) AdvanceTypes(ctx context.Context) ([]*domain.AdvanceType, error) {
	return s.advanceTypes.List(ctx)
}

func (s *catalogService) AdvanceType(ctx context.Context, name string) (*domain.AdvanceType, error) {
	return s.advanceTypes.GetByName(ctx, name)
}

func (s *catalogService) CreateCriterion(ctx context.Context, name string, kind domain.CriterionType) (*domain.Criterion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "criterion name", Msg: "cannot be empty"}
	}
	if kind != "" && !domain.ValidCriterionTypes[string(kind)] {
		return nil, &domain.ValidationError{Field: "criterion type", Value: kind, Msg: "must be worker, machine or generic"}
	}
	if existing, err := s.criteria.GetByName(ctx, name); err == nil {
		return nil, &domain.DuplicateError{Field: "criterion name", Value: name, Entities: []any{existing}}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c := &domain.Criterion{Name: name, Type: kind}
	if err := s.criteria.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *catalogService) Criteria(ctx context.Context) ([]*domain.Criterion, error) {
	return s.criteria.List(ctx)
}

func (s *catalogService) Criterion(ctx context.Context, name string) (*domain.Criterion, error) {
	return s.criteria.GetByName(ctx, name)
}
