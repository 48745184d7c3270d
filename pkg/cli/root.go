package cli

import (
	"fmt"

	"github.com/cbodonnell/fakegame/pkg/config"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	SettingsDir    string
	SettingsFormat string
	Catalog        string
	LedgerURL      string
	LogLevel       string
	Output         string // "text" | "json"

	// Config is resolved before any subcommand runs.
	Config *config.Config
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"text", "json"}

// NewRootCommand creates the root command for the fakegame CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fakegame",
		Short: "Manage FakeGame in-app purchases and entitlements",
		Long: `Inspect and change the FakeGame entitlement record.

Purchases and restores go through a simulated store described by a
catalog file. The record is kept in the user cache directory.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
			}
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			opts.Config = cfg

			level, err := log.ParseLogLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to parse log level: %w", err)
			}
			log.SetDefaultLogger(log.New(cmd.ErrOrStderr(), "", log.DefaultLoggerFlag, level))
			return nil
		},
	}

	// Global flags override the environment.
	cmd.PersistentFlags().StringVar(&opts.SettingsDir, "settings-dir", "", "settings directory (env FAKEGAME_SETTINGS_DIR)")
	cmd.PersistentFlags().StringVar(&opts.SettingsFormat, "settings-format", "", "settings file format, plist or json (env FAKEGAME_SETTINGS_FORMAT)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "simulated store catalog file (env FAKEGAME_CATALOG)")
	cmd.PersistentFlags().StringVar(&opts.LedgerURL, "ledger", "", "ledger connection string, sqlite:// or postgres:// (env FAKEGAME_LEDGER_URL)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (env FAKEGAME_LOG_LEVEL)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (json|text)")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewBuyCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewConsumeCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTransactionsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func resolveConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("settings-dir") {
		cfg.SettingsDir = opts.SettingsDir
	}
	if flags.Changed("settings-format") {
		cfg.SettingsFormat = opts.SettingsFormat
	}
	if flags.Changed("catalog") {
		cfg.Catalog = opts.Catalog
	}
	if flags.Changed("ledger") {
		cfg.LedgerURL = opts.LedgerURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isValidOutput(output string) bool {
	for _, o := range ValidOutputs {
		if o == output {
			return true
		}
	}
	return false
}
