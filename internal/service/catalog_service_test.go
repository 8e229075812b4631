package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_AdvanceTypes(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	pct, err := s.Catalog.CreateAdvanceType(ctx, "Completion", "%", decimal.Zero, true)
	require.NoError(t, err)
	assert.Equal(t, "100", pct.DefaultMaxValue.String())

	_, err = s.Catalog.CreateAdvanceType(ctx, "Plates laid", "plates", decimal.NewFromInt(40), false)
	require.NoError(t, err)

	_, err = s.Catalog.CreateAdvanceType(ctx, "plates LAID", "plates", decimal.NewFromInt(10), false)
	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "advance type name", dup.Field)

	_, err = s.Catalog.CreateAdvanceType(ctx, "Money", "EUR", decimal.Zero, false)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "max_value", verr.Field)

	_, err = s.Catalog.CreateAdvanceType(ctx, " ", "", decimal.NewFromInt(1), false)
	assert.Error(t, err)

	all, err := s.Catalog.AdvanceTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := s.Catalog.AdvanceType(ctx, "completion")
	require.NoError(t, err)
	assert.Equal(t, pct.ID, got.ID)
	assert.True(t, got.Percentage)
}

func TestCatalogService_Criteria(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	welder, err := s.Catalog.CreateCriterion(ctx, "Welder", domain.CriterionWorker)
	require.NoError(t, err)
	assert.Equal(t, domain.CriterionWorker, welder.Type)

	crane, err := s.Catalog.CreateCriterion(ctx, "Crane", "")
	require.NoError(t, err)
	assert.Equal(t, domain.CriterionGeneric, crane.Type)

	_, err = s.Catalog.CreateCriterion(ctx, "Robot", domain.CriterionType("android"))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "criterion type", verr.Field)

	_, err = s.Catalog.CreateCriterion(ctx, "welder", domain.CriterionWorker)
	var dup *domain.DuplicateError
	assert.True(t, errors.As(err, &dup))

	list, err := s.Catalog.Criteria(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = s.Catalog.Criterion(ctx, "Forklift")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
