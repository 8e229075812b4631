package formatter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

var hundred = decimal.NewFromInt(100)

// RenderProgress renders an advance percentage (0..100) as a bar like
// [████░░░░] 45.00%. The bar is green above 66%, yellow from 33% and red
// below.
func RenderProgress(pct decimal.Decimal, width int) string {
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	width = max(width, 2)

	filled := int(pct.Mul(decimal.NewFromInt(int64(width))).Div(hundred).IntPart())
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct.LessThan(decimal.NewFromInt(33)):
		style = StyleRed
	case pct.LessThan(decimal.NewFromInt(66)):
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %s%%", style.Render(bar), pct.StringFixed(2))
}
