// Package cli wires the tokenizer packages into the cliftok command line.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/uyouii/clinical-tokenizer/config"
	"github.com/uyouii/clinical-tokenizer/utils"
)

// Version is overridden at build time with -ldflags.
var Version = "v0.1.0"

type app struct {
	cfgFile     string
	logLevel    string
	generatedAt string
	cfg         *config.Config
}

// NewRootCommand builds the cliftok command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cliftok",
		Short: "cliftok - anchor-first tokenization of clinical variables",
		Long: `cliftok turns continuous clinical measurements into discrete tokens.

Evidence-based clinical thresholds (anchors) are kept as exact bin edges;
the space between them is split by data quantiles. Bins are exported as CSV,
a Python tokenizer, Markdown documentation and a JSON specification.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.generatedAt, "generated-at", "", "RFC3339 timestamp stamped into exports (default: now)")

	root.AddCommand(
		a.binCommand(),
		a.validateCommand(),
		a.checkAnchorsCommand(),
		a.catalogCommand(),
		a.projectCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFile(cmd.Context(), a.cfgFile)
	} else {
		a.cfg, err = config.Load(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	return utils.InitLogger(a.cfg.LogLevel, a.cfg.LogFile)
}

func (a *app) timestamp() (time.Time, error) {
	if a.generatedAt == "" {
		return time.Now().UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, a.generatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --generated-at: %w", err)
	}
	return ts, nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cliftok %s\n", Version)
		},
	}
}
