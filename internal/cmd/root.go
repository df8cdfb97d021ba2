// Package cmd implements the nexbench command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TuftsBCB/nexbench/internal/config"
	"github.com/TuftsBCB/nexbench/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for nexbench
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nexbench",
		Short: "Read NEXUS files and time NEXUS parsers",
		Long: `nexbench reads NEXUS files (TAXA, CHARACTERS/DATA and TREES blocks)
and measures how long different NEXUS parsers take to load them.

"nexbench run trees.nex" parses the file ten times with each parser and
prints one "Time for <parser>:  <seconds>" line per parser.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
	}

	cmd.PersistentFlags().String("config", config.DefaultPath, "Path to config file")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (default from config)")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewParseCommand())
	cmd.AddCommand(NewConvertCommand())
	cmd.AddCommand(NewHistoryCommand())
	return cmd
}

// loadConfig reads the file named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		cfg.MergeWithFlags(nil, nil, nil, &level)
	}
	return cfg, nil
}

// newLogger logs to the command's error stream so that stdout only carries
// results.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logger.ConsoleLogger {
	return logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
}
