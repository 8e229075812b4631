package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_GetByIDOrCode(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	session := storeShip(t, s)
	id := session.Order().ID

	byCode, err := s.Orders.Get(ctx, "SHIP")
	require.NoError(t, err)
	assert.Equal(t, id, byCode.ID)

	byID, err := s.Orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ship", byID.Name)
	assert.Len(t, byID.Children, 3)

	_, err = s.Orders.Get(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SHIP", list[0].Code)
}

func TestOrderService_Validate(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	storeShip(t, s)

	assert.NoError(t, s.Orders.Validate(ctx, "SHIP"))
	assert.ErrorIs(t, s.Orders.Validate(ctx, "NOPE"), domain.ErrNotFound)
}

func TestOrderService_Remove(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	storeShip(t, s)
	assert.Equal(t, 6, testutil.CountRows(t, s.database, "order_elements"))
	assert.Equal(t, 4, testutil.CountRows(t, s.database, "hours_groups"))

	require.NoError(t, s.Orders.Remove(ctx, "SHIP"))
	assert.Zero(t, testutil.CountRows(t, s.database, "order_elements"))
	assert.Zero(t, testutil.CountRows(t, s.database, "hours_groups"))
	_, err := s.Orders.Get(ctx, "SHIP")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Orders.Remove(ctx, "SHIP"), domain.ErrNotFound)
}

func TestOrderService_RemoveRefusedWithWorkReported(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	session := storeShip(t, s)

	paint, err := session.Resolve("3")
	require.NoError(t, err)
	_, err = s.WorkReports.Report(ctx, paint, time.Now(), 2)
	require.NoError(t, err)

	err = s.Orders.Remove(ctx, "SHIP")
	var inUse *domain.InUseError
	require.True(t, errors.As(err, &inUse))

	_, err = s.Orders.Get(ctx, "SHIP")
	assert.NoError(t, err)
}
