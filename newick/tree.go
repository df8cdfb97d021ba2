package newick

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Tree corresponds to any value representable in a Newick format. Each
// tree value corresponds to a single node.
type Tree struct {
	// All children of this node, which may be empty.
	Children []Tree

	// The label of this node. If it's empty, then this node does
	// not have a name.
	Label string

	// The branch length of this node corresponding to the distance between
	// it and its parent node. If it's `nil`, then no distance exists.
	Length *float64
}

// IsLeaf returns true when the node has no children.
func (tree *Tree) IsLeaf() bool {
	return len(tree.Children) == 0
}

// Leaves returns pointers to every leaf under (and including) this node, in
// the order they appear in the input. Modifying a returned node modifies the
// tree.
func (tree *Tree) Leaves() []*Tree {
	var leaves []*Tree
	var walk func(t *Tree)
	walk = func(t *Tree) {
		if t.IsLeaf() {
			leaves = append(leaves, t)
			return
		}
		for i := range t.Children {
			walk(&t.Children[i])
		}
	}
	walk(tree)
	return leaves
}

// String recursively converts a tree to a string, with whitespace indenting
// to indicate depth.
func (tree *Tree) String() string {
	buf := new(bytes.Buffer)
	pf := func(format string, v ...interface{}) {
		fmt.Fprintf(buf, format, v...)
	}

	var out func(t *Tree, depth int)
	out = func(t *Tree, depth int) {
		name, length := t.Label, ""
		if len(name) == 0 {
			name = "N/A"
		}
		if t.Length != nil {
			length = fmt.Sprintf(" (%f)", *t.Length)
		}
		pf("%s%s%s\n", strings.Repeat("  ", depth), name, length)
		for i := range t.Children {
			out(&t.Children[i], depth+1)
		}
	}
	out(tree, 0)
	return buf.String()
}

// Newick returns the tree in Newick format, terminated by a ';'. Labels
// that cannot be written unquoted are quoted.
func (tree *Tree) Newick() string {
	buf := new(bytes.Buffer)
	var out func(t *Tree)
	out = func(t *Tree) {
		if !t.IsLeaf() {
			buf.WriteByte(descStart)
			for i := range t.Children {
				if i > 0 {
					buf.WriteByte(descDelimiter)
				}
				out(&t.Children[i])
			}
			buf.WriteByte(descEnd)
		}
		buf.WriteString(quoteLabel(t.Label))
		if t.Length != nil {
			buf.WriteByte(lengthStart)
			buf.WriteString(strconv.FormatFloat(*t.Length, 'g', -1, 64))
		}
	}
	out(tree)
	buf.WriteByte(terminal)
	return buf.String()
}

func quoteLabel(label string) string {
	if !strings.ContainsAny(label, unquoteBanned+"\t\n\r") {
		return label
	}
	return "'" + strings.Replace(label, "'", "''", -1) + "'"
}
