package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/nexbench/internal/history"
)

// NewHistoryCommand creates the history subcommand.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded benchmark runs",
		Long: `List the most recent runs stored with "nexbench run --record" (or with
history.enabled in the config), newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("limit")

			store, err := history.Open(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), n)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show (0 = all)")
	return cmd
}

func printRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d iterations\n",
			run.ID.String()[:8], run.StartedAt.UTC().Format(time.RFC3339),
			run.File, run.Iterations)
		for _, res := range run.Results {
			fmt.Fprintf(tw, "\t%s\t%s\t%.6fs\n", res.Parser,
				res.Elapsed.Round(time.Microsecond), res.Seconds())
		}
	}
	return tw.Flush()
}
