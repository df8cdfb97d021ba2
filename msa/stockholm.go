// Package msa writes the matrix of a NEXUS CHARACTERS block as a multiple
// sequence alignment in the Stockholm format.
package msa

import (
	"fmt"
	"io"
	"strings"

	"github.com/TuftsBCB/seq"
)

// WriteStockholm writes the given MSA to the writer in the Stockholm format.
// This does not write any features. It only creates a minimal valid Stockholm
// file with the header (and version) along with the sequences (names and
// residues). Names are padded so that the residues line up, and any white
// space inside a name is replaced by '_'.
func WriteStockholm(w io.Writer, msa seq.MSA) error {
	var err error
	pf := func(format string, v ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, v...)
	}

	names := make([]string, len(msa.Entries))
	width := 0
	for i, s := range msa.Entries {
		names[i] = strings.Join(strings.Fields(s.Name), "_")
		if len(names[i]) > width {
			width = len(names[i])
		}
	}

	pf("# STOCKHOLM 1.0\n")
	for row := 0; row < len(msa.Entries) && err == nil; row++ {
		s := msa.GetA2M(row)
		pf("%-*s %s\n", width, names[row], s.Residues)
	}
	pf("//\n")
	return err
}
