package cli

import (
	"github.com/alexanderramin/ordertree/internal/config"
	"github.com/alexanderramin/ordertree/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all services used by CLI commands.
type App struct {
	Orders      service.OrderService
	LabelTypes  service.LabelTypeService
	Catalog     service.CatalogService
	WorkReports service.WorkReportService
	Import      service.ImportService

	Config     *config.Config
	ConfigPath string

	// IsInteractive reports whether stdin is a terminal. The browser refuses
	// to start when it is false.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "ordertree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "ordertree",
		Short:         "Order element hierarchies: hours, codes, labels and advance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newOrderCmd(app),
		newLineCmd(app),
		newLabelTypeCmd(app),
		newAdvanceCmd(app),
		newCriterionCmd(app),
		newReportCmd(app),
		newConfigCmd(app),
		newBrowseCmd(app),
	)

	return root
}
