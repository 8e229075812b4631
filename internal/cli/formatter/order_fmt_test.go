package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ordertree/internal/advance"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/filter"
	"github.com/alexanderramin/ordertree/internal/testutil"
	"github.com/alexanderramin/ordertree/internal/tree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shipTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := tree.New(testutil.NewShipOrder())
	require.NoError(t, err)
	return tr
}

func TestFormatOrderTree_PathNumbers(t *testing.T) {
	tr := shipTree(t)

	out := FormatOrderTree(filter.Apply(tr, nil), tr.PathString)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Ship")
	assert.Contains(t, lines[0], "65h")
	assert.Contains(t, lines[2], "1.1 Plates")
	assert.Contains(t, lines[3], "└─ 1.2 Welding")
	assert.Contains(t, lines[5], "└─ 3 Paint")
}

func TestFormatOrderTree_FilteredKeepsAncestors(t *testing.T) {
	tr := shipTree(t)
	p, err := filter.NewPredicate(nil, nil, nil, "weld")
	require.NoError(t, err)

	out := FormatOrderTree(filter.Apply(tr, p), tr.PathString)

	assert.Contains(t, out, "1 Hull")
	assert.Contains(t, out, "1.2 Welding")
	assert.NotContains(t, out, "Engine")
	assert.NotContains(t, out, "Plates")
}

func TestFormatElementTable(t *testing.T) {
	tr := shipTree(t)

	out := FormatElementTable(filter.Apply(tr, nil), tr.PathString)

	assert.Contains(t, out, "SHIP-H2")
	assert.Contains(t, out, "1.2")
	assert.Contains(t, out, "30h")
	assert.Contains(t, out, "n/a")
}

func TestTooltip(t *testing.T) {
	e := domain.NewLine("Plates")
	e.Description = "Hull plating"
	high := &domain.Label{Name: "High"}
	e.AddLabel(high)
	e.AddCriterionRequirement(&domain.Criterion{Name: "Welder"})
	units := testutil.NewUnitsAdvanceType("Plates laid", 40)
	_, err := advance.Assign(e, units, true, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, advance.RecordMeasurement(e.AdvanceAssignments[0],
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(10)))

	assert.Equal(t, "Plates. Hull plating. Labels: High. Criteria: Welder. Advance: 25.00%.", Tooltip(e))
	assert.Equal(t, "Paint. Advance: n/a.", Tooltip(domain.NewLine("Paint")))
}

func TestFormatElementDetail(t *testing.T) {
	tr := shipTree(t)
	engine := tr.Root().Children[1]

	out := FormatElementDetail(engine, tr.PathString(engine), domain.SchedulingStateOrDefault(nil))

	assert.Contains(t, out, "SHIP-E")
	assert.Contains(t, out, "30h")
	assert.Contains(t, out, "NOT SCHEDULED")
	assert.Contains(t, out, "GROUP")
}

func TestFormatOrderList(t *testing.T) {
	order := testutil.NewShipOrder()
	order.WorkHours = 65
	order.Version = 3

	out := FormatOrderList([]*domain.OrderElement{order})

	assert.Contains(t, out, "SHIP")
	assert.Contains(t, out, "65h")
	assert.Contains(t, out, "v3")
}

func TestFormatErrors_OneLinePerValidationError(t *testing.T) {
	err := domain.ValidationErrors{errors.New("first"), errors.New("second")}

	out := FormatErrors(err)

	assert.Equal(t, 2, strings.Count(out, "✖"))
	assert.Contains(t, out, "second")
	assert.Empty(t, FormatErrors(nil))
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name string
		pct  string
		want string
	}{
		{"empty", "0", "0.00%"},
		{"quarter", "25", "25.00%"},
		{"over 100 clamps", "140", "100.00%"},
		{"negative clamps", "-3", "0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgress(decimal.RequireFromString(tt.pct), 8)
			assert.Contains(t, got, tt.want)
		})
	}
	assert.Contains(t, RenderProgress(decimal.NewFromInt(50), 4), strings.Repeat(filledBlock, 2)+strings.Repeat(emptyBlock, 2))
}

func TestRenderTableAligned_RightAlignsColumns(t *testing.T) {
	out := RenderTableAligned([]string{"NAME", "HOURS"}, [][]string{{"a", "5h"}, {"b", "120h"}}, map[int]bool{1: true})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[2], "   5h"))
	assert.True(t, strings.HasSuffix(lines[3], " 120h"))
}
