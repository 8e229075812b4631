package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/ordertree/internal/config"
	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/alexanderramin/ordertree/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type services struct {
	database    *sqlx.DB
	uow         db.UnitOfWork
	cfg         *config.Config
	orders      repository.OrderRepo
	labelTypes  repository.LabelTypeRepo
	Orders      OrderService
	LabelTypes  LabelTypeService
	Catalog     CatalogService
	WorkReports WorkReportService
	Import      ImportService
}

func setupServices(t *testing.T) *services {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	cfg := config.Default()

	orders := repository.NewSQLiteOrderRepo(database)
	labelTypes := repository.NewSQLiteLabelTypeRepo(database)
	criteria := repository.NewSQLiteCriterionRepo(database)
	advanceTypes := repository.NewSQLiteAdvanceTypeRepo(database)

	return &services{
		database:    database,
		uow:         uow,
		cfg:         cfg,
		orders:      orders,
		labelTypes:  labelTypes,
		Orders:      NewOrderService(orders, uow, cfg),
		LabelTypes:  NewLabelTypeService(labelTypes, uow, cfg),
		Catalog:     NewCatalogService(advanceTypes, criteria),
		WorkReports: NewWorkReportService(repository.NewSQLiteWorkReportRepo(database)),
		Import:      NewImportService(orders, labelTypes, criteria, advanceTypes, uow, cfg),
	}
}

// storeShip saves the coded ship fixture and opens an edit session on it.
func storeShip(t *testing.T, s *services) *EditSession {
	t.Helper()
	ctx := context.Background()
	ship := testutil.NewShipOrder()
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := repository.NewSQLiteOrderRepo(tx).Save(ctx, ship)
		return err
	})
	require.NoError(t, err)

	session, err := s.Orders.Open(ctx, "SHIP")
	require.NoError(t, err)
	return session
}

func names(elements []*domain.OrderElement) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.Name
	}
	return out
}
