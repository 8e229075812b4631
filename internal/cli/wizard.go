package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ordertreeHuhTheme returns a custom huh theme using the Gruvbox palette.
func ordertreeHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateRequired rejects blank input.
func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// validateNonNegativeInt accepts empty or a non-negative integer.
func validateNonNegativeInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

// parseHours converts validated form input, treating blank as zero.
func parseHours(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

const (
	kindLine  = "line"
	kindGroup = "group"
)

// addElementFields holds the values bound to the add-element form.
type addElementFields struct {
	Kind  string
	Name  string
	Hours string
}

// wizardAddElement creates the form used to append a line or group.
func wizardAddElement(fields *addElementFields) *huh.Form {
	if fields.Kind == "" {
		fields.Kind = kindLine
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kind").
				Options(
					huh.NewOption("Line", kindLine),
					huh.NewOption("Group", kindGroup),
				).
				Value(&fields.Kind),
			huh.NewInput().
				Title("Name").
				Value(&fields.Name).
				Validate(validateRequired),
			huh.NewInput().
				Title("Hours").
				Description("Ignored for groups").
				Placeholder("0").
				Value(&fields.Hours).
				Validate(validateNonNegativeInt),
		),
	).WithTheme(ordertreeHuhTheme()).WithShowHelp(false)
}

// wizardEditCell creates a single-input form for one grid cell.
func wizardEditCell(col int, value *string) *huh.Form {
	input := huh.NewInput().
		Title(columnTitles[col]).
		Value(value)
	switch col {
	case colName:
		input = input.Validate(validateRequired)
	case colStart, colDeadline:
		input = input.Placeholder(dateLayout).Validate(validateOptionalDate)
	case colHours:
		input = input.Validate(validateNonNegativeInt)
	}
	return huh.NewForm(huh.NewGroup(input)).
		WithTheme(ordertreeHuhTheme()).
		WithShowHelp(false)
}

// wizardFilterName creates the form used for the name filter.
func wizardFilterName(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Filter by name").
				Placeholder("fragment").
				Value(value),
		),
	).WithTheme(ordertreeHuhTheme()).WithShowHelp(false)
}
