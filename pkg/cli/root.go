// Package cli implements glecctl, the command line front end to the
// GreenRoute emission engine.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Sahilcoder4/greenroute-repo/pkg/app"
	"github.com/Sahilcoder4/greenroute-repo/pkg/config"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configPath string
	tablePath  string
	noColor    bool
	debug      bool
}

// NewRootCmd creates the glecctl command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "glecctl",
		Short: "Freight emission estimates from GLEC reference tables",
		Long: `glecctl works against the same reference table and routing services as the
GreenRoute MCP server. It converts digitized GLEC tables into the reference
CSV format, resolves factors, estimates single movements and routed trips,
and compares alternative fuels.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				pterm.DisableStyling()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML or JSON config file")
	pf.StringVarP(&opts.tablePath, "table", "t", "", "reference table CSV (overrides table.path)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&opts.debug, "debug", false, "log debug output to stderr")

	cmd.AddCommand(
		newIngestCmd(),
		newClassesCmd(opts),
		newRegionsCmd(opts),
		newFuelsCmd(opts),
		newEstimateCmd(opts),
		newCompareCmd(opts),
		newTripCmd(opts),
	)
	return cmd
}

// services loads configuration and wires the engine for one command run
func (o *options) services(cmd *cobra.Command) (*app.Services, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if o.tablePath != "" {
		cfg.Table.Path = o.tablePath
	}

	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	logger := app.NewLogger(cmd.ErrOrStderr(), level, false)

	svc, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}

func renderTable(w io.Writer, data pterm.TableData) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithWriter(w).
		WithData(data).
		Render()
}

func info(cmd *cobra.Command) *pterm.PrefixPrinter {
	return pterm.Info.WithWriter(cmd.ErrOrStderr())
}

func warning(cmd *cobra.Command) *pterm.PrefixPrinter {
	return pterm.Warning.WithWriter(cmd.ErrOrStderr())
}
