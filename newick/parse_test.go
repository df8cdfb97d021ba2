package newick

import (
	"strings"
	"testing"
)

func TestParser(t *testing.T) {
	v := sample("(A,B,(X,Y)C)ROOT;(A,B,C)ROOT;")

	r := NewReader(v)
	trees, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(trees) != 2 {
		t.Fatalf("Expected 2 trees but got %d.", len(trees))
	}

	first := trees[0]
	if first.Label != "ROOT" || len(first.Children) != 3 {
		t.Fatalf("Unexpected first tree:\n%s", first)
	}
	if c := first.Children[2]; c.Label != "C" || len(c.Children) != 2 {
		t.Fatalf("Unexpected subtree:\n%s", &c)
	}
}

func TestParseLengths(t *testing.T) {
	tree, err := Parse("((Apes: 1.0123, Humans:2):0.10, Gorillas: 2.5e-3);")
	if err != nil {
		t.Fatal(err)
	}

	leaves := tree.Leaves()
	labels := make([]string, len(leaves))
	for i, leaf := range leaves {
		labels[i] = leaf.Label
	}
	if got := strings.Join(labels, ","); got != "Apes,Humans,Gorillas" {
		t.Fatalf("Unexpected leaves: %s", got)
	}

	expect := []float64{1.0123, 2, 0.0025}
	for i, leaf := range leaves {
		if leaf.Length == nil || *leaf.Length != expect[i] {
			t.Fatalf("Leaf %s: expected length %f.", leaf.Label, expect[i])
		}
	}
	inner := tree.Children[0]
	if inner.Length == nil || *inner.Length != 0.10 {
		t.Fatalf("Expected internal branch length 0.10.")
	}
	if tree.Length != nil {
		t.Fatalf("Root should not have a length.")
	}
}

func TestParseSingleLeaf(t *testing.T) {
	tree, err := Parse("Apes;")
	if err != nil {
		t.Fatal(err)
	}
	if !tree.IsLeaf() || tree.Label != "Apes" {
		t.Fatalf("Unexpected tree:\n%s", tree)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatal("Expected an error for empty input.")
	}
}

func TestParseLineNumbers(t *testing.T) {
	_, err := Parse("(A,\nB,\n(C:x));")
	if err == nil {
		t.Fatal("Expected an error.")
	}
	if !strings.HasPrefix(err.Error(), "Error on line 3:") {
		t.Fatalf("Unexpected error: %s", err)
	}
}

func TestNewick(t *testing.T) {
	tests := []struct {
		input, output string
	}{
		{"(A,B,(X,Y)C)ROOT;", "(A,B,(X,Y)C)ROOT;"},
		{"((Apes:1.5, Humans:2):0.1, Gorillas:2.5e-3);",
			"((Apes:1.5,Humans:2):0.1,Gorillas:0.0025);"},
		{"('Gorilla 1','Chimpanz''ee');", "('Gorilla 1','Chimpanz''ee');"},
		{"(,,(,));", "(,,(,));"},
	}
	for _, test := range tests {
		tree, err := Parse(test.input)
		if err != nil {
			t.Fatalf("%q: %s", test.input, err)
		}
		if got := tree.Newick(); got != test.output {
			t.Fatalf("%q: expected %q but got %q.", test.input, test.output, got)
		}
	}
}
