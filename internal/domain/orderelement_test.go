package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants(t *testing.T) {
	cases := []struct {
		el        *OrderElement
		container bool
	}{
		{NewOrder("o"), true},
		{NewGroup("g"), true},
		{NewLine("l"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.container, tc.el.IsContainer(), "kind=%s", tc.el.Kind)
		assert.Equal(t, !tc.container, tc.el.IsLeaf(), "kind=%s", tc.el.Kind)
		assert.True(t, tc.el.IsNew())
	}
}

func TestConvertToGroup_KeepsHoursInFirstChild(t *testing.T) {
	line := NewLine("l")
	require.NoError(t, line.SetLineHours(8))
	line.HoursGroups[0].ID = "hg-1"

	carrier := line.ConvertToGroup()
	require.NotNil(t, carrier)
	assert.True(t, line.IsContainer())
	assert.Empty(t, line.HoursGroups)
	assert.Equal(t, 8, line.WorkHours)
	assert.Equal(t, []*OrderElement{carrier}, line.Children)

	assert.True(t, carrier.IsLeaf())
	assert.True(t, carrier.IsNew())
	assert.Equal(t, "l", carrier.Name)
	assert.Equal(t, 8, carrier.WorkHours)
	require.Len(t, carrier.HoursGroups, 1)
	assert.Empty(t, carrier.HoursGroups[0].ID, "moved hours groups are stored afresh")

	assert.Nil(t, line.ConvertToGroup(), "converting a container is a no-op")
}

func TestConvertToGroup_EmptyLine(t *testing.T) {
	line := NewLine("l")
	assert.Nil(t, line.ConvertToGroup())
	assert.True(t, line.IsContainer())
	assert.Empty(t, line.Children)
	assert.Equal(t, 0, line.WorkHours)
}

func TestLabels_AddIsIdempotentByID(t *testing.T) {
	e := NewLine("l")
	red := &Label{ID: "L1", Name: "red"}
	e.AddLabel(red)
	e.AddLabel(&Label{ID: "L1", Name: "red"})
	assert.Len(t, e.Labels, 1)

	e.RemoveLabel(&Label{ID: "L1"})
	assert.Empty(t, e.Labels)
}

func TestValidCriteria(t *testing.T) {
	e := NewLine("l")
	welder := &Criterion{ID: "c1", Name: "welder"}
	crane := &Criterion{ID: "c2", Name: "crane"}
	e.AddCriterionRequirement(welder)
	e.AddCriterionRequirement(crane).Valid = false

	got := e.ValidCriteria()
	require.Len(t, got, 1)
	assert.Equal(t, "welder", got[0].Name)
}

func TestLabelType_LabelNameIsUnique(t *testing.T) {
	lt := NewLabelType("", "Priority")
	lt.AddLabel("high")
	lt.AddLabel("low")
	low := lt.AddLabel("low")

	assert.True(t, lt.LabelNameIsUnique("high"))
	assert.False(t, lt.LabelNameIsUnique("low"))
	assert.False(t, lt.LabelNameIsUnique("missing"))

	lt.RemoveLabel(low)
	assert.True(t, lt.LabelNameIsUnique("low"))
}

func TestValidationErrors_UnwrapReachesEachError(t *testing.T) {
	dup := &DuplicateError{Field: "code", Value: "A"}
	agg := ValidationErrors{&ValidationError{Field: "name", Msg: "required"}, dup}

	var got *DuplicateError
	require.True(t, errors.As(agg, &got))
	assert.Same(t, dup, got)
	assert.Contains(t, agg.Error(), "2 errors")
	assert.Nil(t, ValidationErrors(nil).ErrOrNil())
}
