package repository

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

func TestLabelTypeRepo_SaveAndFind(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteLabelTypeRepo(database)
	ctx := context.Background()

	lt := testutil.NewTestLabelType("PRI", "Priority", "High", "Low")
	require.NoError(t, repo.Save(ctx, lt))
	assert.False(t, lt.IsNew())
	assert.Equal(t, int64(1), lt.Version)
	assert.Equal(t, lt.ID, lt.Labels[0].TypeID)

	found, err := repo.Find(ctx, lt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priority", found.Name)
	assert.Equal(t, "PRI", found.Code)
	require.Len(t, found.Labels, 2)
	assert.Equal(t, "High", found.Labels[0].Name)
	assert.Equal(t, "Low", found.Labels[1].Name)

	byName, err := repo.FindByName(ctx, "priority")
	require.NoError(t, err)
	assert.Equal(t, lt.ID, byName.ID)
}

func TestLabelTypeRepo_Find_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteLabelTypeRepo(database)

	_, err := repo.Find(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLabelTypeRepo_UpdateReplacesLabels(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteLabelTypeRepo(database)
	ctx := context.Background()

	lt := testutil.NewTestLabelType("PRI", "Priority", "High", "Low")
	require.NoError(t, repo.Save(ctx, lt))

	edit, err := repo.Find(ctx, lt.ID)
	require.NoError(t, err)
	edit.Name = "Urgency"
	edit.RemoveLabel(edit.FindLabel("Low"))
	edit.AddLabel("Medium")
	require.NoError(t, repo.Save(ctx, edit))
	assert.Equal(t, int64(2), edit.Version)

	stored, err := repo.Find(ctx, lt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Urgency", stored.Name)
	require.Len(t, stored.Labels, 2)
	assert.Equal(t, "High", stored.Labels[0].Name)
	assert.Equal(t, "Medium", stored.Labels[1].Name)
	assert.Equal(t, lt.Labels[0].ID, stored.Labels[0].ID, "kept labels keep their IDs")
}

func TestLabelTypeRepo_StaleVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteLabelTypeRepo(database)
	ctx := context.Background()

	lt := testutil.NewTestLabelType("PRI", "Priority", "High")
	require.NoError(t, repo.Save(ctx, lt))

	a, err := repo.Find(ctx, lt.ID)
	require.NoError(t, err)
	b, err := repo.Find(ctx, lt.ID)
	require.NoError(t, err)

	a.AddLabel("Low")
	require.NoError(t, repo.Save(ctx, a))

	b.Name = "Stale"
	err = repo.Save(ctx, b)
	var conflict *domain.ConcurrentModificationError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "label type", conflict.Entity)

	stored, err := repo.Find(ctx, lt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priority", stored.Name)
	assert.Len(t, stored.Labels, 2)
}

func TestLabelTypeRepo_IsUnique(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteLabelTypeRepo(database)
	ctx := context.Background()

	lt := testutil.NewTestLabelType("PRI", "Priority")
	require.NoError(t, repo.Save(ctx, lt))

	unique, err := repo.IsUnique(ctx, lt)
	require.NoError(t, err)
	assert.True(t, unique, "a type does not collide with itself")

	clash := testutil.NewTestLabelType("PRI2", "PRIORITY")
	unique, err = repo.IsUnique(ctx, clash)
	require.NoError(t, err)
	assert.False(t, unique)

	other := testutil.NewTestLabelType("COL", "Colour")
	unique, err = repo.IsUnique(ctx, other)
	require.NoError(t, err)
	assert.True(t, unique)
}

func TestLabelTypeRepo_RemoveCascadesToElements(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteLabelTypeRepo(database)
	ctx := context.Background()

	lt := testutil.NewTestLabelType("PRI", "Priority", "High")
	require.NoError(t, repo.Save(ctx, lt))
	ship := testutil.NewShipOrder()
	ship.Children[1].AddLabel(lt.Labels[0])
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, lt.ID))
	assert.ErrorIs(t, repo.Remove(ctx, lt.ID), domain.ErrNotFound)

	loaded, err := NewSQLiteOrderRepo(database).Load(ctx, ship.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Children[1].Labels)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdvanceTypeAndCriterionRepos(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	advRepo := NewSQLiteAdvanceTypeRepo(database)
	units := testutil.NewUnitsAdvanceType("Plates laid", 40)
	require.NoError(t, advRepo.Create(ctx, units))
	require.NoError(t, advRepo.Create(ctx, testutil.NewPercentageAdvanceType()))

	got, err := advRepo.GetByName(ctx, "plates LAID")
	require.NoError(t, err)
	assert.Equal(t, units.ID, got.ID)
	assert.Equal(t, "40", got.DefaultMaxValue.String())
	assert.False(t, got.Percentage)

	all, err := advRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = advRepo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	critRepo := NewSQLiteCriterionRepo(database)
	c := &domain.Criterion{Name: "Crane"}
	require.NoError(t, critRepo.Create(ctx, c))
	assert.Equal(t, domain.CriterionGeneric, c.Type)

	byID, err := critRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crane", byID.Name)

	list, err := critRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkReportRepo_ListByElement(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	ship := testutil.NewShipOrder()
	_, err := saveOrder(t, database, ship)
	require.NoError(t, err)
	engine := ship.Children[1]

	repo := NewSQLiteWorkReportRepo(database)
	require.NoError(t, repo.AddLine(ctx, &WorkReportLine{ElementID: engine.ID, Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Hours: 5}))
	require.NoError(t, repo.AddLine(ctx, &WorkReportLine{ElementID: engine.ID, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Hours: 2}))

	lines, err := repo.ListByElement(ctx, engine.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Hours)
	assert.Equal(t, 5, lines[1].Hours)

	err = repo.AddLine(ctx, &WorkReportLine{ElementID: "missing", Date: time.Now(), Hours: 1})
	assert.Error(t, err, "foreign key rejects unknown elements")
}
