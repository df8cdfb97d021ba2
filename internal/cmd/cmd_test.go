package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/nexbench/internal/filelock"
)

const primates = "../../nexus/testdata/primates.nex"

// execute runs the root command with args. A config path inside a fresh
// temporary directory is added unless args already name one, so that a
// nexbench.yaml in the working directory never leaks into tests.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	}

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const smallTrees = `#NEXUS
BEGIN TREES;
    TREE t1 = ((a:1,b:2):0.5,c:3);
    TREE t2 = (a,(b,c));
END;
`

var timingLine = regexp.MustCompile(`^Time for nexus:  [0-9]+(\.[0-9]+)?\n$`)

func TestParseSummaryGolden(t *testing.T) {
	stdout, _, err := execute(t, "parse", primates, "--trees")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "parse_primates", []byte(stdout))
}

func TestParseWarnsAboutSkippedBlocks(t *testing.T) {
	_, stderr, err := execute(t, "parse", primates)
	require.NoError(t, err)
	assert.Contains(t, stderr, "[WARN] Skipped unsupported block ASSUMPTIONS")
	assert.NotContains(t, stderr, "[TRACE]")
}

func TestParseTracesBlocks(t *testing.T) {
	_, stderr, err := execute(t, "parse", primates, "--log-level", "trace")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[TRACE] Read TAXA block: 4 taxa")
	assert.Contains(t, stderr, "[TRACE] Read TREES block: 2 trees, 4 translations")
	assert.NotContains(t, stderr, "Read ASSUMPTIONS")
}

func TestParseInvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.nex", "#NEXUS\nBEGIN TAXA;\nDIMENSIONS NTAX=2;\nTAXLABELS a;\nEND;\n")
	stdout, _, err := execute(t, "parse", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error on line 5")
	assert.Empty(t, stdout)
}

func TestRunPrintsTimingLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trees.nex", smallTrees)
	stdout, _, err := execute(t, "run", path, "--parsers", "nexus", "--iterations", "2")
	require.NoError(t, err)
	assert.Regexp(t, timingLine, stdout)
}

func TestRunMissingFile(t *testing.T) {
	stdout, _, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.nex"), "--parsers", "nexus")
	require.Error(t, err)
	assert.Empty(t, stdout)
}

func TestRunNeedsAFile(t *testing.T) {
	_, _, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no NEXUS file given")
}

func TestRunUnknownParser(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trees.nex", smallTrees)
	_, _, err := execute(t, "run", path, "--parsers", "nexus,dendropy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parser")
}

func TestRunInvalidIterations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trees.nex", smallTrees)
	_, _, err := execute(t, "run", path, "--iterations", "0")
	require.Error(t, err)
}

func TestRunFromConfigAndHistory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trees.nex", smallTrees)
	cfg := writeFile(t, dir, "nexbench.yaml", `
file: `+path+`
iterations: 3
parsers: [nexus]
log_level: debug
history:
  db_path: `+filepath.Join(dir, "history.db")+`
`)

	stdout, stderr, err := execute(t, "run", "--record", "--config", cfg)
	require.NoError(t, err)
	assert.Regexp(t, timingLine, stdout)
	assert.Contains(t, stderr, "Timing nexus: 3 parses of "+path)
	assert.Contains(t, stderr, "Recorded run")

	stdout, _, err = execute(t, "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	assert.Contains(t, stdout, "3 iterations")
	assert.Contains(t, stdout, "nexus")
}

func TestHistoryEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "nexbench.yaml", "history:\n  db_path: "+filepath.Join(dir, "h.db")+"\n")
	stdout, _, err := execute(t, "history", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", stdout)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	treesPath := filepath.Join(dir, "out", "primates.nwk")
	fastaPath := filepath.Join(dir, "out", "primates.fa")
	stoPath := filepath.Join(dir, "out", "primates.sto")

	_, _, err := execute(t, "convert", primates,
		"--trees", treesPath, "--fasta", fastaPath, "--stockholm", stoPath,
		"--columns", "8")
	require.NoError(t, err)

	g := goldie.New(t)
	for name, path := range map[string]string{
		"convert_trees":     treesPath,
		"convert_fasta":     fastaPath,
		"convert_stockholm": stoPath,
	} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		g.Assert(t, name, data)
	}
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "convert", primates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to do")

	path := writeFile(t, dir, "trees.nex", smallTrees)
	out := filepath.Join(dir, "matrix.fa")
	_, _, err = execute(t, "convert", path, "--fasta", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CHARACTERS or DATA block")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))

	taxaOnly := writeFile(t, dir, "taxa.nex", "#NEXUS\nBEGIN TAXA;\nDIMENSIONS NTAX=1;\nTAXLABELS a;\nEND;\n")
	_, _, err = execute(t, "convert", taxaOnly, "--trees", filepath.Join(dir, "t.nwk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no trees")
}

func TestConvertNoWait(t *testing.T) {
	dir := t.TempDir()
	treesPath := filepath.Join(dir, "primates.nwk")
	fastaPath := filepath.Join(dir, "primates.fa")

	held := filelock.NewFileLock(treesPath + ".lock")
	require.NoError(t, held.Lock())
	defer held.Unlock()

	_, stderr, err := execute(t, "convert", primates,
		"--trees", treesPath, "--fasta", fastaPath, "--no-wait")
	require.Error(t, err)
	assert.True(t, errors.Is(err, filelock.ErrLocked))
	assert.Contains(t, err.Error(), "1 output not written")
	assert.Contains(t, stderr, "[ERROR] Could not write "+treesPath)
	assert.Contains(t, stderr, "[INFO] Wrote 4 sequences to "+fastaPath)

	_, statErr := os.Stat(treesPath)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(fastaPath)
	assert.NoError(t, statErr)
}
