package filelock

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "trees.nwk.lock")
	lock := NewFileLock(lockPath)
	assert.Equal(t, lockPath, lock.Path())

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
}

func TestTryLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "trees.nwk.lock")

	first := NewFileLock(lockPath)
	require.NoError(t, first.Lock())

	second := NewFileLock(lockPath)
	acquired, err := second.TryLock()
	require.NoError(t, err)
	assert.False(t, acquired, "lock should be held by the first locker")

	require.NoError(t, first.Unlock())

	acquired, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.Unlock())
}

func TestAtomicWriteFunc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trees.nwk")

	require.NoError(t, AtomicWriteFunc(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "(a,b);\n")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(a,b);\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestAtomicWriteFuncFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.fa")
	require.NoError(t, os.WriteFile(path, []byte(">old\nACGT\n"), 0644))

	boom := errors.New("boom")
	err := AtomicWriteFunc(path, func(w io.Writer) error {
		io.WriteString(w, ">new\n")
		return boom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ">old\nACGT\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file %s left behind", e.Name())
	}
}

func TestConcurrentLockAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees.nwk")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := LockAndWrite(path, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "(t%d,u%d);\n", i, i)
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var i int
	_, err = fmt.Sscanf(string(data), "(t%d,", &i)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("(t%d,u%d);\n", i, i), string(data))
}

func TestTryLockAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees.nwk")
	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "(a,b);\n")
		return err
	}

	held := NewFileLock(path + ".lock")
	require.NoError(t, held.Lock())

	err := TryLockAndWrite(path, write)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
	assert.Contains(t, err.Error(), "trees.nwk.lock")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing should be written while locked")

	require.NoError(t, held.Unlock())
	require.NoError(t, TryLockAndWrite(path, write))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(a,b);\n", string(data))
}
