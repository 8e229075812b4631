package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// newReportCmd records work against saved elements. Reported elements can
// no longer be removed.
func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Record worked hours",
	}

	var date dateFlag
	add := &cobra.Command{
		Use:   "add ORDER ELEMENT HOURS",
		Short: "Report hours worked on an element",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid hours %q", args[2])
			}
			on := date.orToday()

			ctx := context.Background()
			session, err := app.Orders.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Discard()
			e, err := session.Resolve(args[1])
			if err != nil {
				return err
			}
			line, err := app.WorkReports.Report(ctx, e, on, hours)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success(fmt.Sprintf("Reported %s on %s for %s",
				formatter.FormatHours(line.Hours), formatter.Bold(e.Name), line.Date.Format(dateLayout))))
			return nil
		},
	}
	add.Flags().Var(&date, "date", "Work date (YYYY-MM-DD, default today)")

	list := &cobra.Command{
		Use:   "list ORDER ELEMENT",
		Short: "List the hours reported on an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			session, err := app.Orders.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Discard()
			e, err := session.Resolve(args[1])
			if err != nil {
				return err
			}
			lines, err := app.WorkReports.Lines(ctx, e)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Fprintf(out(cmd), "No work reported on %s.\n", e.Name)
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatWorkReport(lines))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
