package formatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatDate renders an optional date as YYYY-MM-DD, or a dim dash.
func FormatDate(t *time.Time) string {
	if t == nil {
		return StyleDim.Render("--")
	}
	return t.Format(dateLayout)
}

// FormatHours renders whole hours as "12h".
func FormatHours(h int) string {
	return fmt.Sprintf("%dh", h)
}

// CodeOrDash renders an element code, or a dim dash while it is unassigned.
func CodeOrDash(code string) string {
	if strings.TrimSpace(code) == "" {
		return StyleDim.Render("--")
	}
	return code
}

// FormatErrors renders err as a bulleted list. Aggregated validation errors
// get one line each.
func FormatErrors(err error) string {
	if err == nil {
		return ""
	}
	list := []error{err}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		list = verrs
	}
	var b strings.Builder
	for _, e := range list {
		b.WriteString(StyleRed.Render("✖ ") + e.Error() + "\n")
	}
	return b.String()
}
