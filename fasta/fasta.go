package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/TuftsBCB/seq"
)

// A Writer writes sequences to a FASTA encoded file.
//
// The 'Columns' corresponds to the number of columns at which a sequence is
// wrapped. If it's <= 0, then no wrapping will be used.
//
// The header text is never wrapped.
type Writer struct {
	// The number of columns to wrap a sequence at. By default, this
	// is set to 60. A value <= 0 will result in no wrapping.
	Columns int
	buf     *bufio.Writer
}

// NewWriter creates a new FASTA writer that writes to an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Columns: 60,
		buf:     bufio.NewWriter(w),
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Write writes a single FASTA entry to the underlying io.Writer.
//
// You may need to call Flush in order for the changes to be written.
func (w *Writer) Write(s seq.Sequence) error {
	_, err := w.buf.WriteString(Format(s, w.Columns))
	return err
}

// WriteAll writes a slice of sequences to the underyling io.Writer, and
// calls Flush.
func (w *Writer) WriteAll(seqs []seq.Sequence) error {
	for _, s := range seqs {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Format returns the FASTA entry for s, including the trailing new line,
// with the residues wrapped at the number of columns given.
//
// If cols is <= 0, then no wrapping is done. Newlines in the name are
// replaced with spaces since the header must fit on one line.
func Format(s seq.Sequence, cols int) string {
	var b strings.Builder
	b.WriteByte('>')
	b.WriteString(strings.Replace(s.Name, "\n", " ", -1))
	b.WriteByte('\n')
	for i, r := range s.Residues {
		if cols > 0 && i > 0 && i%cols == 0 {
			b.WriteByte('\n')
		}
		b.WriteByte(byte(r))
	}
	b.WriteByte('\n')
	return b.String()
}
