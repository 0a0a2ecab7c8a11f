// Package cli provides the command-line interface for railvoice.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/raphaelgruber/railvoice/internal/config"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and logger
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error

	// Lazy-initialized pipeline
	voiceAgent *agent.Agent
	closeAgent func() error
	collector  = metrics.NewCollector()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "railvoice",
	Short: "Railway PNR status by voice or text",
	Long: `Railvoice resolves Indian Railways PNR status from a typed number or a
spoken utterance and answers with a short spoken-style summary.

Lookups try the status API first and fall back to driving a headless
browser against a public status website.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLog = config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeAgent != nil {
			if err := closeAgent(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close speech clients: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// getAgent builds the pipeline on first use.
func getAgent(ctx context.Context) (*agent.Agent, error) {
	if voiceAgent != nil {
		return voiceAgent, nil
	}
	a, closer, err := agent.NewFromConfig(ctx, cfg, collector, logger)
	if err != nil {
		return nil, fmt.Errorf("init agent: %w", err)
	}
	voiceAgent, closeAgent = a, closer
	return voiceAgent, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(voiceCmd)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
