package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

// parseDate parses an optional YYYY-MM-DD flag value. Empty means unset.
func parseDate(flag, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: use YYYY-MM-DD", flag, s)
	}
	return &t, nil
}

// dateFlag is a YYYY-MM-DD flag value. Unset, or set to "", means no date.
type dateFlag struct {
	t *time.Time
}

var _ pflag.Value = (*dateFlag)(nil)

func (d *dateFlag) String() string {
	if d.t == nil {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d *dateFlag) Set(s string) error {
	t, err := parseDate("date", s)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

func (d *dateFlag) Type() string { return "date" }

// orToday returns the flag's date, or today's when unset.
func (d *dateFlag) orToday() time.Time {
	if d.t == nil {
		return time.Now()
	}
	return *d.t
}

// elementEdit mutates one element of an open session and returns the
// confirmation shown once the order is saved.
type elementEdit func(s *service.EditSession, e *domain.OrderElement) (string, error)

// editElement opens orderRef, resolves elementRef ("1.2", a code, or "" for
// the order), applies fn and saves.
func editElement(cmd *cobra.Command, app *App, orderRef, elementRef string, fn elementEdit) error {
	ctx := context.Background()
	session, err := app.Orders.Open(ctx, orderRef)
	if err != nil {
		return err
	}
	defer session.Discard()

	e, err := session.Resolve(elementRef)
	if err != nil {
		return err
	}
	msg, err := fn(session, e)
	if err != nil {
		return err
	}
	return saveSession(ctx, cmd, session, msg)
}

func saveSession(ctx context.Context, cmd *cobra.Command, session *service.EditSession, msg string) error {
	version, err := session.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "%s %s\n", formatter.Success(msg), formatter.Dim(fmt.Sprintf("(%s v%d)", session.Order().Code, version)))
	return nil
}

// splitLabelRef splits "Type/Label" into its parts.
func splitLabelRef(ref string) (typeName, labelName string, err error) {
	typeName, labelName, ok := strings.Cut(ref, "/")
	typeName, labelName = strings.TrimSpace(typeName), strings.TrimSpace(labelName)
	if !ok || typeName == "" || labelName == "" {
		return "", "", fmt.Errorf("label %q must be written as TYPE/LABEL", ref)
	}
	return typeName, labelName, nil
}
