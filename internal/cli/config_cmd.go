package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if cfg == nil {
				cfg = config.Default()
			}
			rows := [][]string{
				{"db_path", cfg.DBPath},
				{"log.level", cfg.Log.Level},
				{"log.format", cfg.Log.Format},
				{"codes.label", strconv.FormatBool(cfg.Codes.Label)},
				{"codes.order", strconv.FormatBool(cfg.Codes.Order)},
				{"codes.digit_width", strconv.Itoa(cfg.Codes.DigitWidth)},
				{"codes.prefix", cfg.Codes.Prefix},
			}
			if app.ConfigPath != "" {
				fmt.Fprintln(out(cmd), formatter.Dim("# "+app.ConfigPath))
			}
			fmt.Fprint(out(cmd), formatter.RenderTable([]string{"KEY", "VALUE"}, rows))
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), formatter.Success("Wrote "+path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
