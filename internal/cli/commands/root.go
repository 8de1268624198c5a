// Package commands implements the wpschema command line.
package commands

import (
	"context"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/cli/config"
	"github.com/wpschema/wpschema/internal/cli/ui"
	"github.com/wpschema/wpschema/internal/observability"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	debug      bool
	noColor    bool
}

// load reads the config and applies the persistent flag overrides
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Site.Debug = true
	}
	return cfg, nil
}

// commandLogger keeps one-shot commands quiet unless debugging
func (o *rootOptions) commandLogger(cfg *config.Config) *zap.Logger {
	if cfg.Site.Debug {
		return observability.NewLogger(true)
	}
	return zap.NewNop()
}

// openApp loads the config and builds the app for a one-shot command
func (o *rootOptions) openApp(ctx context.Context) (*App, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return NewApp(ctx, cfg, o.commandLogger(cfg))
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "wpschema",
		Short: "Schema.org JSON-LD for WordPress sites",
		Long: `wpschema builds the schema.org graph for a WordPress page from providers,
consolidates duplicate entities and renders it as JSON-LD.

It reads content from YAML fixtures or straight from the WordPress
database and serves the wp-schema/v1 REST routes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.FileName+")")
	flags.BoolVar(&opts.debug, "debug", false, "log provider failures, broken references and timings")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewGenerateCommand(opts))
	rootCmd.AddCommand(NewValidateCommand(opts))
	rootCmd.AddCommand(NewHooksCommand(opts))
	rootCmd.AddCommand(NewInitCommand(opts))
	rootCmd.AddCommand(NewTokenCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("wpschema version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", runtime.Version())
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
