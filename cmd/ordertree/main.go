package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/ordertree/internal/cli"
	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/config"
	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/alexanderramin/ordertree/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprint(os.Stderr, formatter.FormatErrors(err))
		os.Exit(1)
	}
}

func run() error {
	// Config path: env var or default ~/.ordertree/config.yaml
	configPath := os.Getenv("ORDERTREE_CONFIG")
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	orderRepo := repository.NewSQLiteOrderRepo(database)
	labelTypeRepo := repository.NewSQLiteLabelTypeRepo(database)
	criterionRepo := repository.NewSQLiteCriterionRepo(database)
	advanceTypeRepo := repository.NewSQLiteAdvanceTypeRepo(database)
	workReportRepo := repository.NewSQLiteWorkReportRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Orders:      service.NewOrderService(orderRepo, uow, cfg, observer),
		LabelTypes:  service.NewLabelTypeService(labelTypeRepo, uow, cfg, observer),
		Catalog:     service.NewCatalogService(advanceTypeRepo, criterionRepo),
		WorkReports: service.NewWorkReportService(workReportRepo),
		Import:      service.NewImportService(orderRepo, labelTypeRepo, criterionRepo, advanceTypeRepo, uow, cfg, observer),
		Config:      cfg,
		ConfigPath:  configPath,
	}

	// The grid browser needs a real terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
