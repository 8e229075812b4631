package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/spf13/cobra"
)

func newCriterionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criterion",
		Short: "Manage criteria elements can require",
	}

	var kind string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a criterion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Catalog.CreateCriterion(context.Background(), args[0], domain.CriterionType(kind))
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success(fmt.Sprintf("Created %s criterion %s", c.Type, formatter.Bold(c.Name))))
			return nil
		},
	}
	create.Flags().StringVar(&kind, "type", "", "worker, machine or generic (default generic)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := app.Catalog.Criteria(context.Background())
			if err != nil {
				return err
			}
			if len(criteria) == 0 {
				fmt.Fprintln(out(cmd), "No criteria found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatCriteria(criteria))
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}
