package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/nexbench/nexus"
)

// NewParseCommand creates the parse subcommand.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <nexus-file>",
		Short: "Read a NEXUS file and summarize its blocks",
		Long: `Read a NEXUS file with the built-in reader and print one line per
block. With --trees, every tree is also printed in Newick format with its
taxon labels translated.

Exit code: 0 if the file is valid, 1 otherwise`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cmd, cfg)

			log.Debugf("Reading %s", args[0])
			nex, err := nexus.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, b := range nex.Blocks {
				if u, ok := b.(*nexus.Unknown); ok {
					log.Warnf("Skipped unsupported block %s", u.Name)
					continue
				}
				log.Tracef("Read %s block: %s", b.BlockName(), describe(b))
			}

			trees, _ := cmd.Flags().GetBool("trees")
			return summarize(cmd.OutOrStdout(), filepath.Base(args[0]), nex, trees)
		},
	}
	cmd.Flags().Bool("trees", false, "Print every tree in Newick format")
	return cmd
}

func summarize(w io.Writer, name string, nex *nexus.Nexus, trees bool) error {
	var err error
	pf := func(format string, v ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, v...)
	}

	pf("%s: %d blocks\n", name, len(nex.Blocks))
	for _, b := range nex.Blocks {
		pf("  %-12s %s\n", b.BlockName(), describe(b))
	}

	if trees && len(nex.Trees()) > 0 {
		pf("Trees:\n")
		for _, t := range nex.Trees() {
			rooting := "unrooted"
			if t.Rooted {
				rooting = "rooted"
			}
			pf("  %s (%s): %s\n", t.Name, rooting, t.Root.Newick())
		}
	}
	return err
}

func describe(b nexus.Block) string {
	switch b := b.(type) {
	case *nexus.Taxa:
		return plural(len(b.Labels), "taxon", "taxa")
	case *nexus.Characters:
		return fmt.Sprintf("%s, %s, %s",
			plural(b.NTax, "taxon", "taxa"),
			plural(b.NChar, "character", "characters"), b.DataType)
	case *nexus.Trees:
		return fmt.Sprintf("%s, %s",
			plural(len(b.Trees), "tree", "trees"),
			plural(len(b.Translate), "translation", "translations"))
	}
	return "skipped"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
