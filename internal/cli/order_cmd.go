package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/filter"
	"github.com/spf13/cobra"
)

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Manage orders",
	}

	cmd.AddCommand(
		newOrderListCmd(app),
		newOrderShowCmd(app),
		newOrderNewCmd(app),
		newOrderImportCmd(app),
		newOrderRemoveCmd(app),
		newOrderValidateCmd(app),
		newOrderFilterCmd(app),
	)

	return cmd
}

func newOrderListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.Orders.List(context.Background())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Fprintln(out(cmd), "No orders found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatOrderList(orders))
			return nil
		},
	}
}

func newOrderShowCmd(app *App) *cobra.Command {
	var table bool

	cmd := &cobra.Command{
		Use:   "show ORDER",
		Short: "Show an order's element tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Orders.Open(context.Background(), args[0])
			if err != nil {
				return err
			}
			defer session.Discard()
			printView(cmd, session.View(), session.Path, table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&table, "table", false, "Render the editing grid instead of a tree")

	return cmd
}

func printView(cmd *cobra.Command, view *filter.View, pathOf formatter.PathFunc, table bool) {
	if table {
		fmt.Fprint(out(cmd), formatter.FormatElementTable(view, pathOf))
		return
	}
	fmt.Fprint(out(cmd), formatter.FormatOrderTree(view, pathOf))
}

func newOrderNewCmd(app *App) *cobra.Command {
	var code, description string
	var start, deadline dateFlag

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create an empty order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Orders.New(args[0])
			if err != nil {
				return err
			}
			defer session.Discard()
			root := session.Order()
			if code != "" {
				if err := session.SetCode(root, code); err != nil {
					return err
				}
			}
			session.SetDescription(root, description)
			if err := session.SetDates(root, start.t, deadline.t); err != nil {
				return err
			}
			return saveSession(context.Background(), cmd, session, "Created order "+formatter.Bold(root.Name))
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Order code (generated when omitted and code generation is on)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().Var(&start, "start", "Start date (YYYY-MM-DD)")
	cmd.Flags().Var(&deadline, "deadline", "Deadline (YYYY-MM-DD)")

	return cmd
}

func newOrderImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import an order from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportOrder(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s\n", formatter.Success(fmt.Sprintf("Imported %s [%s]", formatter.Bold(result.Order.Name), result.Order.Code)),
				formatter.Dim(fmt.Sprintf("(%d elements, %d lines, %s)", result.ElementCount, result.LineCount, formatter.FormatHours(result.Order.WorkHours))))
			return nil
		},
	}
}

func newOrderRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ORDER",
		Short: "Delete an order and all its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Orders.Remove(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success("Removed order "+args[0]))
			return nil
		},
	}
}

func newOrderValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate ORDER",
		Short: "Check codes, hours and label uniqueness of a stored order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Orders.Validate(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success(args[0]+" is valid"))
			return nil
		},
	}
}

func newOrderFilterCmd(app *App) *cobra.Command {
	var labels, criteria []string
	var from, to dateFlag
	var name string
	var table bool

	cmd := &cobra.Command{
		Use:   "filter ORDER",
		Short: "Show the elements matching labels, criteria, dates or a name",
		Long: `Show the elements matching every given clause. Ancestors of matching
elements are kept (dimmed) so paths stay readable. Label and criterion
selectors match when any of them applies.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var selectors []filter.Selector
			for _, ref := range labels {
				typeName, labelName, err := splitLabelRef(ref)
				if err != nil {
					return err
				}
				l, err := app.LabelTypes.FindLabel(ctx, typeName, labelName)
				if err != nil {
					return err
				}
				selectors = append(selectors, filter.Selector{Kind: filter.SelectorLabel, ID: l.ID, Name: l.Name})
			}
			for _, n := range criteria {
				c, err := app.Catalog.Criterion(ctx, n)
				if err != nil {
					return err
				}
				selectors = append(selectors, filter.Selector{Kind: filter.SelectorCriterion, ID: c.ID, Name: c.Name})
			}
			predicate, err := filter.NewPredicate(selectors, from.t, to.t, name)
			if err != nil {
				return err
			}

			session, err := app.Orders.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Discard()
			session.ApplyFilter(predicate)

			view := session.View()
			if session.Filtered() && view.Len() == 0 {
				fmt.Fprintln(out(cmd), "No elements match.")
				return nil
			}
			printView(cmd, view, session.Path, table)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&labels, "label", nil, "Label as TYPE/LABEL (repeatable)")
	cmd.Flags().StringArrayVar(&criteria, "criterion", nil, "Required criterion name (repeatable)")
	cmd.Flags().Var(&from, "from", "Window start (YYYY-MM-DD)")
	cmd.Flags().Var(&to, "to", "Window finish (YYYY-MM-DD)")
	cmd.Flags().StringVar(&name, "name", "", "Case-insensitive name fragment")
	cmd.Flags().BoolVar(&table, "table", false, "Render the editing grid instead of a tree")

	return cmd
}
