package nexus

import (
	"github.com/TuftsBCB/seq"

	"github.com/TuftsBCB/nexbench/newick"
)

// Nexus is the contents of a NEXUS file: its blocks, in the order in which
// they were read.
type Nexus struct {
	Blocks []Block
}

// Block is implemented by every block type in this package.
type Block interface {
	BlockName() string
}

// Taxa corresponds to a TAXA block. NTAX always equals len(Labels).
type Taxa struct {
	Labels []string
}

// Trees corresponds to a TREES block.
type Trees struct {
	// Translate maps the tokens used in tree descriptions to taxon labels.
	// It is empty (not nil) when the block has no TRANSLATE command.
	Translate map[string]string

	Trees []*Tree
}

// Tree is a single named tree from a TREES block. The labels of its leaves
// have already been translated to taxon labels.
type Tree struct {
	Name   string
	Rooted bool
	Root   *newick.Tree
}

// Characters corresponds to a CHARACTERS or DATA block. Every row of the
// matrix is exactly NChar residues long.
type Characters struct {
	Name     string
	NTax     int
	NChar    int
	DataType string
	Gap      byte
	Missing  byte
	Matrix   seq.MSA
}

// Unknown records a block that was skipped.
type Unknown struct {
	Name string
}

func (b *Taxa) BlockName() string       { return "TAXA" }
func (b *Trees) BlockName() string      { return "TREES" }
func (b *Characters) BlockName() string { return b.Name }
func (b *Unknown) BlockName() string    { return b.Name }

// Taxa returns the taxon labels of every TAXA block, in order. If there are
// no TAXA blocks, the row names of the first CHARACTERS/DATA block are used.
func (nex *Nexus) Taxa() []string {
	var labels []string
	for _, b := range nex.Blocks {
		if taxa, ok := b.(*Taxa); ok {
			labels = append(labels, taxa.Labels...)
		}
	}
	if labels == nil {
		if chars := nex.Characters(); chars != nil {
			for _, s := range chars.Matrix.Entries {
				labels = append(labels, s.Name)
			}
		}
	}
	return labels
}

// Trees returns the trees of every TREES block, in order.
func (nex *Nexus) Trees() []*Tree {
	var trees []*Tree
	for _, b := range nex.Blocks {
		if block, ok := b.(*Trees); ok {
			trees = append(trees, block.Trees...)
		}
	}
	return trees
}

// Characters returns the first CHARACTERS or DATA block, or nil.
func (nex *Nexus) Characters() *Characters {
	for _, b := range nex.Blocks {
		if chars, ok := b.(*Characters); ok {
			return chars
		}
	}
	return nil
}
