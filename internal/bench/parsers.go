package bench

import (
	"fmt"
	"os"

	gotree "github.com/evolbioinfo/gotree/io/nexus"

	"github.com/TuftsBCB/nexbench/nexus"
)

// NexusParser reads files with package nexus.
type NexusParser struct{}

func (NexusParser) Name() string { return "nexus" }

func (NexusParser) ParseFile(path string) error {
	_, err := nexus.ReadFile(path)
	return err
}

// GotreeParser reads files with the NEXUS parser of gotree. It is stricter
// than package nexus about TRANSLATE commands and rejects, for instance, the
// one in nexus/testdata/primates.nex.
type GotreeParser struct{}

func (GotreeParser) Name() string { return "gotree" }

func (GotreeParser) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := gotree.NewParser(f).Parse(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
