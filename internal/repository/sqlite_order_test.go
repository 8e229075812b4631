package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveOrder saves root inside a transaction, as the services do.
func saveOrder(t *testing.T, database *sqlx.DB, root *domain.OrderElement) (int64, error) {
	t.Helper()
	var version int64
	err := db.NewSQLiteUnitOfWork(database).WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		v, err := NewSQLiteOrderRepo(tx).Save(ctx, root)
		version = v
		return err
	})
	if err == nil {
		MarkSaved(root, version, time.Now().UTC())
	}
	return version, err
}

func names(elements []*domain.OrderElement) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.Name
	}
	return out
}

func TestOrderRepo_SaveAndLoad(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	ship.Description = "Cargo vessel"
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	ship.Children[1].InitDate = &start
	ship.Children[1].SchedulingState = &domain.SchedulingState{Type: domain.SchedulingScheduled}

	version, err := saveOrder(t, database, ship)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.False(t, ship.IsNew())
	assert.False(t, ship.Children[0].Children[0].IsNew())

	loaded, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship", loaded.Name)
	assert.Equal(t, "SHIP", loaded.Code)
	assert.Equal(t, "Cargo vessel", loaded.Description)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Equal(t, []string{"Hull", "Engine", "Paint"}, names(loaded.Children))
	assert.Equal(t, []string{"Plates", "Welding"}, names(loaded.Children[0].Children))
	assert.Equal(t, domain.KindGroup, loaded.Children[0].Kind)

	engine := loaded.Children[1]
	assert.Equal(t, 30, engine.WorkHours)
	require.Len(t, engine.HoursGroups, 1)
	assert.Equal(t, 30, engine.HoursGroups[0].Hours)
	require.NotNil(t, engine.InitDate)
	assert.Equal(t, "2026-01-05", engine.InitDate.Format(dateLayout))
	assert.Equal(t, domain.SchedulingScheduled, engine.SchedulingState.Type)
	assert.Equal(t, ship.ID, engine.OrderID)
}

func TestOrderRepo_Load_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)

	_, err := repo.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepo_SaveRoundTripsLabelsCriteriaAdvance(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	lt := testutil.NewTestLabelType("PRI", "Priority", "High", "Low")
	require.NoError(t, NewSQLiteLabelTypeRepo(database).Save(ctx, lt))
	welder := &domain.Criterion{Name: "Welder", Type: domain.CriterionWorker}
	require.NoError(t, NewSQLiteCriterionRepo(database).Create(ctx, welder))
	pct := testutil.NewPercentageAdvanceType()
	require.NoError(t, NewSQLiteAdvanceTypeRepo(database).Create(ctx, pct))

	ship := testutil.NewShipOrder()
	plates := ship.Children[0].Children[0]
	plates.AddLabel(lt.Labels[0])
	req := plates.AddCriterionRequirement(welder)
	req.Valid = false
	plates.AdvanceAssignments = []*domain.AdvanceAssignment{{
		Type:                pct,
		ReportGlobalAdvance: true,
		MaxValue:            decimal.NewFromInt(100),
		Measurements: []domain.AdvanceMeasurement{
			{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Value: decimal.RequireFromString("12.5")},
			{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Value: decimal.RequireFromString("11")},
		},
	}}
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)

	loaded, err := NewSQLiteOrderRepo(database).Load(ctx, ship.ID)
	require.NoError(t, err)
	lp := loaded.Children[0].Children[0]

	require.Len(t, lp.Labels, 1)
	assert.Equal(t, "High", lp.Labels[0].Name)
	assert.Equal(t, lt.ID, lp.Labels[0].TypeID)

	require.Len(t, lp.CriterionRequirements, 1)
	assert.Equal(t, "Welder", lp.CriterionRequirements[0].Criterion.Name)
	assert.False(t, lp.CriterionRequirements[0].Valid)

	require.Len(t, lp.AdvanceAssignments, 1)
	a := lp.AdvanceAssignments[0]
	assert.True(t, a.ReportGlobalAdvance)
	assert.True(t, a.Type.Percentage)
	require.Len(t, a.Measurements, 2, "same-day measurements are both kept")
	assert.True(t, a.Measurements[0].Value.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, a.Measurements[1].Value.Equal(decimal.RequireFromString("11")))
	latest, ok := a.LatestMeasurement()
	require.True(t, ok)
	assert.True(t, latest.Value.Equal(decimal.RequireFromString("11")))
}

func TestOrderRepo_SaveRoundTripsDatesAndHoursGroups(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	lt := testutil.NewTestLabelType("ZON", "Zone", "Bow")
	require.NoError(t, NewSQLiteLabelTypeRepo(database).Save(ctx, lt))

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	frame := testutil.NewTestLine("Frame", 10, testutil.WithCode("TUG-1"), testutil.WithLabels(lt.Labels[0]))
	testutil.WithFixedGroup("Inspection", "0.25")(frame)
	tug := testutil.NewTestOrder("Tug",
		testutil.WithCode("TUG"),
		testutil.WithDescription("Harbour tug"),
		testutil.WithDates(start, end),
		testutil.WithChildren(frame),
	)
	_, err := saveOrder(t, database, tug)
	require.NoError(t, err)

	loaded, err := NewSQLiteOrderRepo(database).Load(ctx, tug.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbour tug", loaded.Description)
	require.NotNil(t, loaded.InitDate)
	require.NotNil(t, loaded.Deadline)
	assert.Equal(t, "2026-03-01", loaded.InitDate.Format(dateLayout))
	assert.Equal(t, "2026-06-30", loaded.Deadline.Format(dateLayout))

	lf := loaded.Children[0]
	require.Len(t, lf.Labels, 1)
	assert.Equal(t, "Bow", lf.Labels[0].Name)
	require.Len(t, lf.HoursGroups, 2)
	assert.Equal(t, 10, lf.HoursGroups[0].Hours)
	assert.False(t, lf.HoursGroups[0].FixedPercentage)
	assert.Equal(t, "Inspection", lf.HoursGroups[1].Name)
	assert.True(t, lf.HoursGroups[1].FixedPercentage)
	assert.True(t, lf.HoursGroups[1].Percentage.Equal(decimal.RequireFromString("0.25")))
}

func TestOrderRepo_SaveUnsavedLabelFailsAndClearsIDs(t *testing.T) {
	database := testutil.NewTestDB(t)
	ship := testutil.NewShipOrder()
	ship.Children[1].AddLabel(&domain.Label{Name: "transient"})

	_, err := saveOrder(t, database, ship)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, ship.IsNew(), "fresh IDs are cleared on failure")
	assert.True(t, ship.Children[0].IsNew())

	orders, err := NewSQLiteOrderRepo(database).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepo_SaveUpdatesStructure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	hull := loaded.Children[0]
	welding := hull.Children[1]
	// Move Welding to the top level and drop Paint.
	hull.Children = hull.Children[:1]
	loaded.Children = []*domain.OrderElement{hull, welding, loaded.Children[1]}

	version, err := saveOrder(t, database, loaded)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, int64(2), welding.Version)

	again, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hull", "Welding", "Engine"}, names(again.Children))
	assert.Equal(t, []string{"Plates"}, names(again.Children[0].Children))
	assert.Equal(t, welding.ID, again.Children[1].ID)
}

func TestOrderRepo_StaleVersionLeavesStoreUnchanged(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)

	first, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	second, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)

	first.Name = "Ship (first editor)"
	_, err = saveOrder(t, database, first)
	require.NoError(t, err)

	second.Name = "Ship (second editor)"
	second.Children = second.Children[:1]
	_, err = saveOrder(t, database, second)

	var conflict *domain.ConcurrentModificationError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)

	stored, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship (first editor)", stored.Name)
	assert.Len(t, stored.Children, 3)
	assert.Equal(t, int64(2), stored.Version)
}

func TestOrderRepo_SaveRollsBackOnWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	loaded.Name = "Renamed"

	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: boom}
	err = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, err := NewSQLiteOrderRepo(tx).Save(ctx, loaded)
		return err
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.Load(ctx, ship.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship", stored.Name)
	assert.Equal(t, int64(1), stored.Version)
}

func TestOrderRepo_IsAlreadyInUse(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)
	engine := ship.Children[1]

	used, err := repo.IsAlreadyInUse(ctx, engine)
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, NewSQLiteWorkReportRepo(database).AddLine(ctx, &WorkReportLine{
		ElementID: engine.ID, Date: time.Now().UTC(), Hours: 3,
	}))
	used, err = repo.IsAlreadyInUse(ctx, engine)
	require.NoError(t, err)
	assert.True(t, used)

	used, err = repo.IsAlreadyInUse(ctx, domain.NewLine("unsaved"))
	require.NoError(t, err)
	assert.False(t, used)
}

func TestOrderRepo_Remove(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, ship.ID))
	_, err = repo.Load(ctx, ship.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM hours_groups`))
	assert.Zero(t, count, "hours groups cascade with their elements")

	assert.ErrorIs(t, repo.Remove(ctx, ship.ID), domain.ErrNotFound)
}

func TestOrderRepo_RemoveInUse(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)
	plates := ship.Children[0].Children[0]
	require.NoError(t, NewSQLiteWorkReportRepo(database).AddLine(ctx, &WorkReportLine{
		ElementID: plates.ID, Date: time.Now().UTC(), Hours: 2,
	}))

	err = repo.Remove(ctx, ship.ID)
	var inUse *domain.InUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, ship.ID, inUse.Element.ID)

	_, err = repo.Load(ctx, ship.ID)
	require.NoError(t, err)
}

func TestOrderRepo_ListFindByCodeAndCodes(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteOrderRepo(database)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)
	barge := testutil.NewTestOrder("Barge", testutil.WithCode("BARGE"),
		testutil.WithChildren(testutil.NewTestLine("Deck", 4, testutil.WithCode("BARGE-1"))))
	_, err = saveOrder(t, database, barge)
	require.NoError(t, err)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Barge", "Ship"}, names(orders))
	assert.Empty(t, orders[0].Children, "List returns roots only")

	found, err := repo.FindByCode(ctx, "SHIP")
	require.NoError(t, err)
	assert.Equal(t, ship.ID, found.ID)
	assert.Len(t, found.Children, 3)

	_, err = repo.FindByCode(ctx, "SHIP-H")
	assert.ErrorIs(t, err, domain.ErrNotFound, "only order roots are found by code")

	codes, err := repo.Codes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BARGE", "SHIP"}, codes)
}
