// Package cmd implements the mutor CLI commands.
//
// The root command carries the flags shared by every subcommand; subcommands
// register themselves from init.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/mutor/pkg/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// options holds the persistent flags of one command tree.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
}

// commands are the subcommand constructors registered with the CLI.
var commands []func(*options) *cobra.Command

// RegisterCommand adds a subcommand constructor to the CLI.
func RegisterCommand(fn func(*options) *cobra.Command) {
	commands = append(commands, fn)
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "mutor",
		Short: "mutor - a reactive component runtime",
		Long: `mutor observes plain Go state, re-renders the components that read it and
reconciles keyed child lists against a render target.

Use "mutor <command> --help" for more information about a command.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default: ./"+config.FileName+" if present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override logging.format (console or json)")

	for _, fn := range commands {
		root.AddCommand(fn(opts))
	}
	return root
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig resolves the configuration file and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.LoadOptional(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
