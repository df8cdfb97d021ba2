package msa

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/TuftsBCB/seq"
)

func TestWriteStockholm(t *testing.T) {
	msa := makeMSA([]string{"Apes", "Gorilla gorilla", "X"},
		[]string{"ACGT-CGT", "ACGTACG?", "AC--ACGT"})

	buf := new(bytes.Buffer)
	if err := WriteStockholm(buf, msa); err != nil {
		t.Fatalf("%s", err)
	}

	answer := "# STOCKHOLM 1.0\n" +
		"Apes            ACGT-CGT\n" +
		"Gorilla_gorilla ACGTACG?\n" +
		"X               AC--ACGT\n" +
		"//\n"
	if buf.String() != answer {
		t.Fatalf("\nWritten alignment is\n\n%s\n\nbut answer is\n\n%s",
			buf.String(), answer)
	}
}

func TestWriteStockholmEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteStockholm(buf, seq.NewMSA()); err != nil {
		t.Fatalf("%s", err)
	}
	if buf.String() != "# STOCKHOLM 1.0\n//\n" {
		t.Fatalf("Unexpected output %q.", buf.String())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("disk full")
}

func TestWriteStockholmError(t *testing.T) {
	msa := makeMSA([]string{"a"}, []string{"ACGT"})
	if err := WriteStockholm(failWriter{}, msa); err == nil {
		t.Fatalf("Expected the write error to be returned.")
	}
}

func makeMSA(names, rows []string) seq.MSA {
	msa := seq.NewMSA()
	for i := range names {
		msa.Add(seq.Sequence{
			Name:     names[i],
			Residues: []seq.Residue(rows[i]),
		})
	}
	return msa
}
