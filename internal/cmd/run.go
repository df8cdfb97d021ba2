package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/nexbench/internal/bench"
	"github.com/TuftsBCB/nexbench/internal/history"
)

// NewRunCommand creates the run subcommand, the benchmark itself.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [nexus-file]",
		Short: "Time how long each parser takes to read a NEXUS file",
		Long: `Parse a NEXUS file --iterations times with every parser in --parsers,
one parser after the other, and print the total time of each:

  Time for nexus:  0.412
  Time for gotree:  0.093

The file defaults to 'file' from the config. If a parser fails, the
run stops before that parser's line is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBenchmark,
	}

	cmd.Flags().IntP("iterations", "i", bench.DefaultIterations, "Number of parses per parser")
	cmd.Flags().StringSlice("parsers", nil, fmt.Sprintf("Parsers to time, in order (known: %v)", bench.Names()))
	cmd.Flags().Bool("record", false, "Store the timings in the history database")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var file *string
	if len(args) == 1 {
		file = &args[0]
	}
	var iterations *int
	if cmd.Flags().Changed("iterations") {
		n, _ := cmd.Flags().GetInt("iterations")
		iterations = &n
	}
	var parserNames []string
	if cmd.Flags().Changed("parsers") {
		parserNames, _ = cmd.Flags().GetStringSlice("parsers")
	}
	cfg.MergeWithFlags(file, iterations, parserNames, nil)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.File == "" {
		return fmt.Errorf("no NEXUS file given: pass one or set 'file' in %s",
			cmd.Flag("config").Value)
	}

	parsers, err := bench.Builtin().LookupAll(cfg.Parsers)
	if err != nil {
		return err
	}

	log := newLogger(cmd, cfg)
	runner := bench.Runner{Log: log}
	started := time.Now()
	results, err := runner.Run(cmd.Context(), cmd.OutOrStdout(), cfg.File, cfg.Iterations, parsers...)
	if err != nil {
		return err
	}

	record, _ := cmd.Flags().GetBool("record")
	if !record && !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.NewRun(cfg.File, cfg.Iterations, started, results)
	if err := store.Record(cmd.Context(), run); err != nil {
		return err
	}
	log.Debugf("Recorded run %s in %s", run.ID, cfg.History.DBPath)
	return nil
}
