package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse ORDER",
		Short: "Edit an order interactively as a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return errors.New("browse needs an interactive terminal")
			}
			ctx := context.Background()
			session, err := app.Orders.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Discard()

			p := tea.NewProgram(newBrowserModel(ctx, session), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
