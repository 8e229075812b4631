package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/service"
	"github.com/spf13/cobra"
)

// newLineCmd groups the commands that edit the elements of one order.
// Elements are addressed by path ("1.3.2") or code; "0" is the order.
func newLineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "line",
		Aliases: []string{"element"},
		Short:   "Edit order elements",
	}

	cmd.AddCommand(
		newLineAddCmd(app),
		newLineShowCmd(app),
		newLineHoursCmd(app),
		newLineRenameCmd(app),
		newLineCodeCmd(app),
		newLineDatesCmd(app),
		newLineMoveCmd(app),
		newLineIndentCmd(app),
		newLineUnindentCmd(app),
		newLineRemoveCmd(app),
		newLineLabelCmd(app),
		newLineCriterionCmd(app),
	)

	return cmd
}

func newLineAddCmd(app *App) *cobra.Command {
	var parent, description string
	var hours int
	var group bool

	cmd := &cobra.Command{
		Use:   "add ORDER NAME",
		Short: "Add a line (or, with --group, a group) under a parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], parent, func(s *service.EditSession, p *domain.OrderElement) (string, error) {
				var e *domain.OrderElement
				var err error
				if group {
					e, err = s.AddGroup(p, args[1])
				} else {
					e, err = s.AddLine(p, args[1], hours)
				}
				if err != nil {
					return "", err
				}
				s.SetDescription(e, description)
				return fmt.Sprintf("Added %s at %s", formatter.Bold(e.Name), s.Path(e)), nil
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent path or code (default: the order)")
	cmd.Flags().IntVar(&hours, "hours", 0, "Work hours of the new line")
	cmd.Flags().BoolVar(&group, "group", false, "Add a group instead of a line")
	cmd.Flags().StringVar(&description, "description", "", "Description")

	return cmd
}

func newLineShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ORDER ELEMENT",
		Short: "Show one element in detail",
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
			fmt.Fprintln(out(cmd), formatter.FormatElementDetail(e, session.Path(e), session.SchedulingStateOf(e)))
			return nil
		},
	}
}

func newLineHoursCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hours ORDER ELEMENT HOURS",
		Short: "Set a line's work hours",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid hours %q", args[2])
			}
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.SetWorkHours(e, hours); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s now takes %s; order total %s", formatter.Bold(e.Name),
					formatter.FormatHours(e.WorkHours), formatter.FormatHours(s.Order().WorkHours)), nil
			})
		},
	}
}

func newLineRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ORDER ELEMENT NAME",
		Short: "Rename an element",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.Rename(e, args[2]); err != nil {
					return "", err
				}
				return "Renamed to " + formatter.Bold(e.Name), nil
			})
		},
	}
}

func newLineCodeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "code ORDER ELEMENT CODE",
		Short: "Set an element's code",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.SetCode(e, args[2]); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s is now %s", formatter.Bold(e.Name), e.Code), nil
			})
		},
	}
}

func newLineDatesCmd(app *App) *cobra.Command {
	var start, deadline dateFlag

	cmd := &cobra.Command{
		Use:   "dates ORDER ELEMENT",
		Short: "Set an element's start date and deadline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.SetDates(e, start.t, deadline.t); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s runs %s → %s", formatter.Bold(e.Name),
					formatter.FormatDate(e.InitDate), formatter.FormatDate(e.Deadline)), nil
			})
		},
	}

	cmd.Flags().Var(&start, "start", "Start date (YYYY-MM-DD, omitted clears)")
	cmd.Flags().Var(&deadline, "deadline", "Deadline (YYYY-MM-DD, omitted clears)")

	return cmd
}

func newLineMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "move ORDER ELEMENT up|down",
		Short:     "Swap an element with its previous or next sibling",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				var moved bool
				switch args[2] {
				case "up":
					moved = s.MoveUp(e)
				case "down":
					moved = s.MoveDown(e)
				default:
					return "", fmt.Errorf("direction must be up or down, got %q", args[2])
				}
				if !moved {
					return fmt.Sprintf("%s is already at the edge", formatter.Bold(e.Name)), nil
				}
				return fmt.Sprintf("Moved %s to %s", formatter.Bold(e.Name), s.Path(e)), nil
			})
		},
	}
}

func newLineIndentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "indent ORDER ELEMENT",
		Short: "Make an element the last child of its previous sibling",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if !s.Indent(e) {
					return fmt.Sprintf("%s has no previous sibling to move under", formatter.Bold(e.Name)), nil
				}
				return fmt.Sprintf("Indented %s to %s", formatter.Bold(e.Name), s.Path(e)), nil
			})
		},
	}
}

func newLineUnindentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unindent ORDER ELEMENT",
		Short: "Move an element up one level, right after its parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if !s.Unindent(e) {
					return fmt.Sprintf("%s is already at the top level", formatter.Bold(e.Name)), nil
				}
				return fmt.Sprintf("Unindented %s to %s", formatter.Bold(e.Name), s.Path(e)), nil
			})
		},
	}
}

func newLineRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ORDER ELEMENT",
		Short: "Remove an element and its subtree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if err := s.Remove(context.Background(), e); err != nil {
					return "", err
				}
				return "Removed " + formatter.Bold(e.Name), nil
			})
		},
	}
}

func newLineLabelCmd(app *App) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "label ORDER ELEMENT TYPE/LABEL",
		Short: "Attach (or with --remove detach) a label",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeName, labelName, err := splitLabelRef(args[2])
			if err != nil {
				return err
			}
			l, err := app.LabelTypes.FindLabel(context.Background(), typeName, labelName)
			if err != nil {
				return err
			}
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				if remove {
					s.RemoveLabel(e, l)
					return fmt.Sprintf("Removed label %s from %s", l.Name, formatter.Bold(e.Name)), nil
				}
				s.AddLabel(e, l)
				return fmt.Sprintf("Labelled %s %s", formatter.Bold(e.Name), l.Name), nil
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Detach the label instead")

	return cmd
}

func newLineCriterionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "criterion ORDER ELEMENT CRITERION",
		Short: "Require a criterion on an element",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Catalog.Criterion(context.Background(), args[2])
			if err != nil {
				return err
			}
			return editElement(cmd, app, args[0], args[1], func(s *service.EditSession, e *domain.OrderElement) (string, error) {
				s.AddCriterion(e, c)
				return fmt.Sprintf("%s now requires %s", formatter.Bold(e.Name), c.Name), nil
			})
		},
	}
}
