package formatter

import (
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleFocus  = lipgloss.NewStyle().Foreground(ColorFg).Background(ColorHeader)
)

// SchedulingIndicator returns a colored marker such as "● SCHEDULED".
func SchedulingIndicator(state domain.SchedulingStateType) string {
	switch state {
	case domain.SchedulingScheduled:
		return StyleGreen.Render("● SCHEDULED")
	case domain.SchedulingPartial:
		return StyleYellow.Render("◐ PARTIAL")
	case domain.SchedulingPoint:
		return StyleBlue.Render("◆ POINT")
	default:
		return StyleDim.Render("○ NOT SCHEDULED")
	}
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success renders a green check followed by msg.
func Success(msg string) string {
	return StyleGreen.Render("✔") + " " + msg
}
