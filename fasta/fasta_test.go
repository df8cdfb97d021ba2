package fasta

import (
	"bytes"
	"testing"

	"github.com/TuftsBCB/seq"
)

func TestFormat(t *testing.T) {
	s := seq.Sequence{Name: "Gorilla gorilla", Residues: []seq.Residue("ACGT-CGTAC?T")}

	tests := []struct {
		cols int
		want string
	}{
		{0, ">Gorilla gorilla\nACGT-CGTAC?T\n"},
		{60, ">Gorilla gorilla\nACGT-CGTAC?T\n"},
		{5, ">Gorilla gorilla\nACGT-\nCGTAC\n?T\n"},
		{4, ">Gorilla gorilla\nACGT\n-CGT\nAC?T\n"},
	}
	for _, test := range tests {
		if got := Format(s, test.cols); got != test.want {
			t.Fatalf("Format with %d columns:\n%q\n!=\n%q", test.cols, got, test.want)
		}
	}
}

func TestFormatEmpty(t *testing.T) {
	got := Format(seq.Sequence{Name: "a\nb"}, 60)
	if got != ">a b\n\n" {
		t.Fatalf("Unexpected entry %q.", got)
	}
}

func TestWriteAll(t *testing.T) {
	seqs := []seq.Sequence{
		{Name: "Apes", Residues: []seq.Residue("ACGTACGT")},
		{Name: "Humans", Residues: []seq.Residue("ACGTACG?")},
	}

	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	w.Columns = 4
	if err := w.WriteAll(seqs); err != nil {
		t.Fatalf("%s", err)
	}

	want := ">Apes\nACGT\nACGT\n>Humans\nACGT\nACG?\n"
	if buf.String() != want {
		t.Fatalf("Expected\n%s\nbut got\n%s", want, buf.String())
	}
}
