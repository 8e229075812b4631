package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelTypeService_ConfirmSaveGeneratesCodes(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	lt := s.LabelTypes.InitCreate("Priority")
	assert.True(t, lt.CodeAutogenerated)
	for _, name := range []string{"High", "Low"} {
		_, err := s.LabelTypes.AddLabel(lt, name)
		require.NoError(t, err)
	}
	require.NoError(t, s.LabelTypes.ConfirmSave(ctx, lt))
	assert.Equal(t, "LBL-00001", lt.Code)
	assert.Equal(t, "LBL-00001-00001", lt.Labels[0].Code)
	assert.Equal(t, "LBL-00001-00002", lt.Labels[1].Code)

	edit, err := s.LabelTypes.InitEdit(ctx, lt.ID)
	require.NoError(t, err)
	_, err = s.LabelTypes.AddLabel(edit, "Medium")
	require.NoError(t, err)
	require.NoError(t, s.LabelTypes.ConfirmSave(ctx, edit))
	assert.Equal(t, "LBL-00001-00003", edit.Labels[2].Code, "existing codes are kept")

	colour := s.LabelTypes.InitCreate("Colour")
	require.NoError(t, s.LabelTypes.ConfirmSave(ctx, colour))
	assert.Equal(t, "LBL-00002", colour.Code)
}

func TestLabelTypeService_ConfirmSaveReportsEveryProblem(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	stored := s.LabelTypes.InitCreate("Priority")
	require.NoError(t, s.LabelTypes.ConfirmSave(ctx, stored))

	lt := s.LabelTypes.InitCreate("PRIORITY")
	for _, name := range []string{"red", "blue", "red"} {
		_, err := s.LabelTypes.AddLabel(lt, name)
		require.NoError(t, err)
	}

	err := s.LabelTypes.ConfirmSave(ctx, lt)
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)

	var typeDup, labelDup *domain.DuplicateError
	require.True(t, errors.As(verrs[0], &typeDup))
	assert.Equal(t, "label type name", typeDup.Field)
	require.True(t, errors.As(verrs[1], &labelDup))
	assert.Equal(t, "red", labelDup.Value)
	assert.Equal(t, []any{lt.Labels[0], lt.Labels[2]}, labelDup.Entities)

	assert.True(t, lt.IsNew(), "nothing is stored")
	assert.Empty(t, lt.Code, "codes are only generated for valid label types")
}

func TestLabelTypeService_CodeRequiredWhenNotGenerated(t *testing.T) {
	s := setupServices(t)
	s.cfg.Codes.Label = false
	ctx := context.Background()

	lt := s.LabelTypes.InitCreate("Zone")
	assert.False(t, lt.CodeAutogenerated)
	err := s.LabelTypes.ConfirmSave(ctx, lt)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "code", verr.Field)

	lt.Code = "ZONE"
	require.NoError(t, s.LabelTypes.ConfirmSave(ctx, lt))
}

func TestLabelTypeService_LabelEditing(t *testing.T) {
	s := setupServices(t)
	lt := s.LabelTypes.InitCreate("Priority")

	_, err := s.LabelTypes.AddLabel(lt, "  ")
	assert.Error(t, err)

	high, err := s.LabelTypes.AddLabel(lt, "High")
	require.NoError(t, err)
	assert.True(t, s.LabelTypes.LabelNameIsUnique(lt, "High"))
	_, err = s.LabelTypes.AddLabel(lt, "High")
	require.NoError(t, err)
	assert.False(t, s.LabelTypes.LabelNameIsUnique(lt, "High"))
	assert.False(t, s.LabelTypes.LabelNameIsUnique(lt, "Low"))

	s.LabelTypes.RemoveLabel(lt, high)
	assert.True(t, s.LabelTypes.LabelNameIsUnique(lt, "High"))
}

func TestLabelTypeService_GetFindLabelAndDelete(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	lt := s.LabelTypes.InitCreate("Priority")
	_, err := s.LabelTypes.AddLabel(lt, "High")
	require.NoError(t, err)
	require.NoError(t, s.LabelTypes.ConfirmSave(ctx, lt))

	byName, err := s.LabelTypes.Get(ctx, "priority")
	require.NoError(t, err)
	assert.Equal(t, lt.ID, byName.ID)

	l, err := s.LabelTypes.FindLabel(ctx, "Priority", "High")
	require.NoError(t, err)
	assert.Equal(t, lt.Labels[0].ID, l.ID)
	_, err = s.LabelTypes.FindLabel(ctx, "Priority", "Low")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.LabelTypes.ConfirmDelete(ctx, lt))
	all, err := s.LabelTypes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, s.LabelTypes.ConfirmDelete(ctx, lt), domain.ErrNotFound)
}

func TestLabelTypeService_FailedCommitLeavesLabelTypeNew(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	failing := &testutil.FailCommitUoW{DB: s.database, Err: errors.New("commit failed")}
	svc := NewLabelTypeService(s.labelTypes, failing, s.cfg)
	lt := svc.InitCreate("Priority")
	high, err := svc.AddLabel(lt, "High")
	require.NoError(t, err)

	require.ErrorContains(t, svc.ConfirmSave(ctx, lt), "commit failed")
	assert.True(t, lt.IsNew())
	assert.Equal(t, int64(0), lt.Version)
	assert.Empty(t, high.ID)

	failing.Err = nil
	require.NoError(t, svc.ConfirmSave(ctx, lt))
	assert.Equal(t, int64(1), lt.Version)
	assert.NotEmpty(t, high.ID)
}
