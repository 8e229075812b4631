package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAdvanceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Track progress of order elements",
	}

	cmd.AddCommand(
		newAdvanceTypeCmd(app),
		newAdvanceAssignCmd(app),
		newAdvanceRecordCmd(app),
		newAdvanceGlobalCmd(app),
		newAdvanceShowCmd(app),
	)

	return cmd
}

func newAdvanceTypeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage advance types",
	}

	var unit, maxValue string
	var percentage bool
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an advance type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxVal := decimal.Zero
			if maxValue != "" {
				var err error
				if maxVal, err = decimal.NewFromString(maxValue); err != nil {
					return fmt.Errorf("invalid max value %q", maxValue)
				}
			}
			t, err := app.Catalog.CreateAdvanceType(context.Background(), args[0], unit, maxVal, percentage)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success(fmt.Sprintf("Created advance type %s (max %s)", formatter.Bold(t.Name), t.DefaultMaxValue)))
			return nil
		},
	}
	create.Flags().StringVar(&unit, "unit", "", "Unit of measure")
	create.Flags().StringVar(&maxValue, "max", "", "Default maximum value")
	create.Flags().BoolVar(&percentage, "percentage", false, "Measure in percent (max defaults to 100)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List advance types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := app.Catalog.AdvanceTypes(context.Background())
			if err != nil {
				return err
			}
			if len(types) == 0 {
				fmt.Fprintln(out(cmd), "No advance types found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatAdvanceTypes(types))
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func newAdvanceAssignCmd(app *App) *cobra.Command {
	var global bool
	var maxValue string

	cmd := &cobra.Command{
		Use:   "assign ORDER ELEMENT TYPE",
		Short: "Track an element's progress with an advance type",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Catalog.AdvanceType(context.Background(), args[2])
			if err != nil {
				return err
			}
			maxVal := decimal.Zero
			if maxValue != "" {
				if maxVal, err = decimal.NewFromString(maxValue); err != nil {
					return fmt.Errorf("invalid max value %q", maxValue)
				}
			}
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				a, err := s.AssignAdvance(e, t, global, maxVal)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Tracking %s on %s (max %s)", t.Name, formatter.Bold(e.Name), a.MaxValue), nil
			})
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Report this advance as the element's headline percentage")
	cmd.Flags().StringVar(&maxValue, "max", "", "Maximum value (default: the type's)")

	return cmd
}

func newAdvanceRecordCmd(app *App) *cobra.Command {
	var date dateFlag

	cmd := &cobra.Command{
		Use:   "record ORDER ELEMENT TYPE VALUE",
		Short: "Record a cumulative measurement",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Catalog.AdvanceType(context.Background(), args[2])
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(args[3])
			if err != nil {
				return fmt.Errorf("invalid value %q", args[3])
			}
			on := date.orToday()
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.RecordAdvance(e, t, on, value); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s: %s %s on %s, advance %s", formatter.Bold(e.Name), value, t.Name,
					on.Format(dateLayout), s.AdvancePercentage(e)), nil
			})
		},
	}

	cmd.Flags().Var(&date, "date", "Measurement date (YYYY-MM-DD, default today)")

	return cmd
}

func newAdvanceGlobalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "global ORDER ELEMENT TYPE",
		Short: "Report an element's headline advance from another assigned type",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Catalog.AdvanceType(context.Background(), args[2])
			if err != nil {
				return err
			}
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.SetGlobalAdvance(e, t); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s now reports %s: %s", formatter.Bold(e.Name), t.Name, s.AdvancePercentage(e)), nil
			})
		},
	}
}

func newAdvanceShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ORDER ELEMENT",
		Short: "Show an element's advance assignments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Orders.Open(context.Background(), args[0])
			if err != nil {
				return err
			}
			defer session.Discard()
			e, err := session.Resolve(args[1])
			if err != nil {
				return err
			}
			if len(e.AdvanceAssignments) == 0 {
				fmt.Fprintf(out(cmd), "%s has no advance assigned.\n", e.Name)
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatAdvance(e))
			if r := session.AdvancePercentage(e); r.Tracked {
				fmt.Fprintln(out(cmd), formatter.RenderProgress(r.Value, 20))
			}
			return nil
		},
	}
}
