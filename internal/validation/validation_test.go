package validation

import (
	"errors"
	"testing"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coded(name, code string) *domain.OrderElement {
	e := domain.NewLine(name)
	e.Code = code
	return e
}

func TestIsFormatCodeValid(t *testing.T) {
	assert.True(t, IsFormatCodeValid("ORD-001"))
	assert.False(t, IsFormatCodeValid(""))
	assert.False(t, IsFormatCodeValid("  "))
	assert.False(t, IsFormatCodeValid("ORD_001"))
}

func TestValidateCode(t *testing.T) {
	var verr *domain.ValidationError
	require.True(t, errors.As(ValidateCode(coded("x", "")), &verr))
	assert.Equal(t, "code", verr.Field)
	require.True(t, errors.As(ValidateCode(coded("x", "A_B")), &verr))
	assert.NoError(t, ValidateCode(coded("x", "AB")))
}

func TestCheckCodesUnique_ReportsAllHolders(t *testing.T) {
	a1, b, a2 := coded("first", "A"), coded("second", "B"), coded("third", "A")

	dups := CheckCodesUnique([]*domain.OrderElement{a1, b, a2})
	require.Len(t, dups, 1)
	assert.Equal(t, "A", dups[0].Value)
	assert.Equal(t, []any{a1, a2}, dups[0].Entities)
}

func TestCheckCodesUnique_ThreeHolders(t *testing.T) {
	x, y, z := coded("x", "A"), coded("y", "A"), coded("z", "A")
	dups := CheckCodesUnique([]*domain.OrderElement{x, y, z, coded("e", "")})
	require.Len(t, dups, 1)
	assert.Len(t, dups[0].Entities, 3)
}

func TestCheckLabelsUnique_ReportsPair(t *testing.T) {
	lt := domain.NewLabelType("COL", "Colour")
	red1 := lt.AddLabel("red")
	lt.AddLabel("blue")
	red2 := lt.AddLabel("red")

	dups := CheckLabelsUnique(lt)
	require.Len(t, dups, 1)
	assert.Equal(t, "red", dups[0].Value)
	assert.Equal(t, []any{red1, red2}, dups[0].Entities)
}

func TestCheckLabelsUnique_EveryPair(t *testing.T) {
	lt := domain.NewLabelType("COL", "Colour")
	lt.AddLabel("red")
	lt.AddLabel("red")
	lt.AddLabel("red")
	assert.Len(t, CheckLabelsUnique(lt), 3)
}

func TestCheckLabelTypeNameUnique(t *testing.T) {
	lt := &domain.LabelType{ID: "1", Name: "Priority"}
	same := &domain.LabelType{ID: "1", Name: "Priority"}
	other := &domain.LabelType{ID: "2", Name: "priority "}

	assert.NoError(t, CheckLabelTypeNameUnique(lt, []*domain.LabelType{same}))

	err := CheckLabelTypeNameUnique(lt, []*domain.LabelType{same, other})
	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []any{lt, other}, dup.Entities)
}

func TestValidateLabelType_Aggregates(t *testing.T) {
	lt := domain.NewLabelType("BAD_CODE", "")
	lt.AddLabel("")
	lt.AddLabel("x")
	lt.AddLabel("x")

	err := ValidateLabelType(lt)
	var all domain.ValidationErrors
	require.True(t, errors.As(err, &all))
	assert.Len(t, all, 4)

	var dup *domain.DuplicateError
	assert.True(t, errors.As(err, &dup))
}

func TestValidateLabelType_AutogeneratedSkipsCode(t *testing.T) {
	lt := domain.NewLabelType("", "Priority")
	lt.CodeAutogenerated = true
	lt.AddLabel("high")
	assert.NoError(t, ValidateLabelType(lt))
}

func TestGenerateCodes_PreservesAndContinues(t *testing.T) {
	keep := coded("kept", "ORD-00007")
	custom := coded("custom", "HAND")
	fresh1 := coded("fresh1", "")
	fresh2 := coded("fresh2", "")

	n := GenerateCodes("ORD-", []*domain.OrderElement{fresh1, keep, custom, fresh2}, 5)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ORD-00008", fresh1.Code)
	assert.Equal(t, "ORD-00009", fresh2.Code)
	assert.Equal(t, "ORD-00007", keep.Code)
	assert.Equal(t, "HAND", custom.Code)
}

func TestGenerateLabelCodes(t *testing.T) {
	lt := domain.NewLabelType("PRI", "Priority")
	lt.AddLabel("low").Code = "PRI-002"
	high := lt.AddLabel("high")

	assert.Equal(t, 1, GenerateLabelCodes(lt, 3))
	assert.Equal(t, "PRI-003", high.Code)
}

func TestNextCode(t *testing.T) {
	assert.Equal(t, "ORD00001", NextCode("ORD", nil, 5))
	assert.Equal(t, "ORD00013", NextCode("ORD", []string{"ORD00012", "ORDX", "OTHER99"}, 5))
}

func newOrder(t *testing.T) (*tree.Tree, *domain.OrderElement, *domain.OrderElement) {
	t.Helper()
	o := domain.NewOrder("Ship")
	o.Code = "ORD-1"
	a := coded("Hull", "A")
	b := coded("Engine", "B")
	o.Children = []*domain.OrderElement{a, b}
	tr, err := tree.New(o)
	require.NoError(t, err)
	return tr, a, b
}

func TestValidateOrder_Valid(t *testing.T) {
	tr, _, _ := newOrder(t)
	assert.NoError(t, ValidateOrder(tr))
}

func TestValidateOrder_AggregatesEveryProblem(t *testing.T) {
	tr, a, b := newOrder(t)
	a.Name = ""
	b.Code = "A"
	c := coded("Paint", "")
	require.NoError(t, tr.AddChild(tr.Root(), c))

	err := ValidateOrder(tr)
	var all domain.ValidationErrors
	require.True(t, errors.As(err, &all))
	assert.Len(t, all, 3, err.Error())

	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []any{a, b}, dup.Entities)
}

func TestValidateOrder_HoursMismatch(t *testing.T) {
	tr, a, _ := newOrder(t)
	require.NoError(t, tr.SetWorkHours(a, 10))
	a.HoursGroups[0].Hours = 4

	err := ValidateOrder(tr)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "work_hours", verr.Field)
}
