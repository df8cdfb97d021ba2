package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TuftsBCB/nexbench/fasta"
	"github.com/TuftsBCB/nexbench/internal/filelock"
	"github.com/TuftsBCB/nexbench/msa"
	"github.com/TuftsBCB/nexbench/nexus"
)

// NewConvertCommand creates the convert subcommand.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <nexus-file>",
		Short: "Export the trees and character matrix of a NEXUS file",
		Long: `Write the trees of a NEXUS file as Newick (one tree per line, taxon
labels translated) and its character matrix as FASTA or Stockholm.

Each output is written to a temporary file and renamed into place while
holding the lock <output>.lock, so concurrent conversions never leave a
partial file behind. With --no-wait, an output whose lock is held by another
process is skipped instead of waited for.

Exit code: 0 if every output was written, 1 otherwise`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}
	cmd.Flags().String("trees", "", "Write trees in Newick format to this file")
	cmd.Flags().String("fasta", "", "Write the character matrix in FASTA format to this file")
	cmd.Flags().String("stockholm", "", "Write the character matrix in Stockholm format to this file")
	cmd.Flags().Int("columns", 60, "Wrap FASTA sequences at this many columns (0 = no wrapping)")
	cmd.Flags().Bool("no-wait", false, "Skip outputs that another process is writing")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	treesPath, _ := cmd.Flags().GetString("trees")
	fastaPath, _ := cmd.Flags().GetString("fasta")
	stockholmPath, _ := cmd.Flags().GetString("stockholm")
	columns, _ := cmd.Flags().GetInt("columns")
	noWait, _ := cmd.Flags().GetBool("no-wait")
	if treesPath == "" && fastaPath == "" && stockholmPath == "" {
		return fmt.Errorf("nothing to do: give at least one of --trees, --fasta or --stockholm")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	nex, err := nexus.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	trees := nex.Trees()
	if treesPath != "" && len(trees) == 0 {
		return fmt.Errorf("%s has no trees", args[0])
	}
	chars := nex.Characters()
	if (fastaPath != "" || stockholmPath != "") && chars == nil {
		return fmt.Errorf("%s has no CHARACTERS or DATA block", args[0])
	}

	write := filelock.LockAndWrite
	if noWait {
		write = filelock.TryLockAndWrite
	}
	var failed []error
	export := func(path, what string, contents func(w io.Writer) error) {
		if path == "" {
			return
		}
		if err := write(path, contents); err != nil {
			log.Errorf("Could not write %s: %v", path, err)
			failed = append(failed, err)
			return
		}
		log.Infof("Wrote %s to %s", what, path)
	}

	export(treesPath, plural(len(trees), "tree", "trees"), func(w io.Writer) error {
		for _, t := range trees {
			if _, err := fmt.Fprintln(w, t.Root.Newick()); err != nil {
				return err
			}
		}
		return nil
	})
	if chars != nil {
		export(fastaPath, plural(len(chars.Matrix.Entries), "sequence", "sequences"), func(w io.Writer) error {
			fw := fasta.NewWriter(w)
			fw.Columns = columns
			return fw.WriteAll(chars.Matrix.Entries)
		})
		export(stockholmPath, "alignment", func(w io.Writer) error {
			return msa.WriteStockholm(w, chars.Matrix)
		})
	}

	if len(failed) > 0 {
		return fmt.Errorf("%s not written: %w",
			plural(len(failed), "output", "outputs"), errors.Join(failed...))
	}
	return nil
}
