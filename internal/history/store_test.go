package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/nexbench/internal/bench"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(file string, started time.Time) Run {
	return NewRun(file, 10, started, []bench.Result{
		{Parser: "nexus", Iterations: 10, Elapsed: 1500 * time.Millisecond},
		{Parser: "gotree", Iterations: 10, Elapsed: 300 * time.Millisecond},
	})
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	run := sampleRun("yule-50_98.trees", started)
	require.NoError(t, s.Record(ctx, run))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "yule-50_98.trees", got.File)
	assert.Equal(t, 10, got.Iterations)
	assert.True(t, started.Equal(got.StartedAt), "%s != %s", started, got.StartedAt)
	assert.Equal(t, run.Results, got.Results)
}

func TestRecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, file := range []string{"a.nex", "b.nex", "c.nex"} {
		require.NoError(t, s.Record(ctx, sampleRun(file, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c.nex", runs[0].File)
	assert.Equal(t, "b.nex", runs[1].File)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordRejectsMissingID(t *testing.T) {
	s := openMemory(t)
	run := sampleRun("a.nex", time.Now())
	run.ID = uuid.Nil
	assert.Error(t, s.Record(context.Background(), run))
}

func TestRecordDuplicateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	run := sampleRun("a.nex", time.Now())
	require.NoError(t, s.Record(ctx, run))
	require.Error(t, s.Record(ctx, run))

	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Results, 2)
}

func TestRunWithoutResults(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	require.NoError(t, s.Record(ctx, NewRun("empty.nex", 10, time.Now(), nil)))
	runs, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Results)
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	run := sampleRun("a.nex", time.Now())
	require.NoError(t, s.Record(ctx, run))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}
