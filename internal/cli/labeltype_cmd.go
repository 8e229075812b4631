package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/spf13/cobra"
)

func newLabelTypeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label-type",
		Short: "Manage label types and their labels",
	}

	cmd.AddCommand(
		newLabelTypeListCmd(app),
		newLabelTypeCreateCmd(app),
		newLabelTypeAddCmd(app),
		newLabelTypeRemoveLabelCmd(app),
		newLabelTypeDeleteCmd(app),
	)

	return cmd
}

func newLabelTypeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List label types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := app.LabelTypes.List(context.Background())
			if err != nil {
				return err
			}
			if len(types) == 0 {
				fmt.Fprintln(out(cmd), "No label types found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatLabelTypes(types))
			return nil
		},
	}
}

func newLabelTypeCreateCmd(app *App) *cobra.Command {
	var code string
	var labels []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a label type, optionally with labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lt := app.LabelTypes.InitCreate(args[0])
			if code != "" {
				lt.Code = strings.TrimSpace(code)
				lt.CodeAutogenerated = false
			}
			for _, name := range labels {
				if _, err := app.LabelTypes.AddLabel(lt, name); err != nil {
					return err
				}
			}
			if err := app.LabelTypes.ConfirmSave(context.Background(), lt); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success(fmt.Sprintf("Created label type %s [%s] with %d labels",
				formatter.Bold(lt.Name), lt.Code, len(lt.Labels))))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Code (generated when omitted and label code generation is on)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Label name (repeatable)")

	return cmd
}

// editLabelType loads a label type by name or id, applies fn and saves.
func editLabelType(cmd *cobra.Command, app *App, ref string, fn func(lt *domain.LabelType) (string, error)) error {
	ctx := context.Background()
	found, err := app.LabelTypes.Get(ctx, ref)
	if err != nil {
		return err
	}
	lt, err := app.LabelTypes.InitEdit(ctx, found.ID)
	if err != nil {
		return err
	}
	msg, err := fn(lt)
	if err != nil {
		return err
	}
	if err := app.LabelTypes.ConfirmSave(ctx, lt); err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), formatter.Success(msg))
	return nil
}

func newLabelTypeAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add TYPE LABEL...",
		Short: "Add labels to a label type",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editLabelType(cmd, app, args[0], func(lt *domain.LabelType) (string, error) {
				for _, name := range args[1:] {
					if _, err := app.LabelTypes.AddLabel(lt, name); err != nil {
						return "", err
					}
				}
				return fmt.Sprintf("%s now has %d labels", formatter.Bold(lt.Name), len(lt.Labels)), nil
			})
		},
	}
}

func newLabelTypeRemoveLabelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-label TYPE LABEL",
		Short: "Remove a label; elements carrying it lose it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editLabelType(cmd, app, args[0], func(lt *domain.LabelType) (string, error) {
				l := lt.FindLabel(args[1])
				if l == nil {
					return "", fmt.Errorf("label %q of type %q: %w", args[1], lt.Name, domain.ErrNotFound)
				}
				app.LabelTypes.RemoveLabel(lt, l)
				return fmt.Sprintf("Removed %s from %s", l.Name, formatter.Bold(lt.Name)), nil
			})
		},
	}
}

func newLabelTypeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TYPE",
		Short: "Delete a label type with all its labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			lt, err := app.LabelTypes.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.LabelTypes.ConfirmDelete(ctx, lt); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success("Deleted label type "+formatter.Bold(lt.Name)))
			return nil
		},
	}
}
