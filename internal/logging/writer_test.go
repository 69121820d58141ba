package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSmallWriter(t *testing.T, path string, maxFiles int) *RotatingWriter {
	t.Helper()
	w, err := NewRotatingWriter(path, 1, maxFiles)
	require.NoError(t, err)
	w.maxSize = 16
	w.syncOnWrite = false
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestRotatingWriter_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "diag.log")

	w, err := NewRotatingWriter(path, 0, 0)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Equal(t, int64(10*1024*1024), w.maxSize)
	assert.Equal(t, 5, w.maxFiles)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRotatingWriter_RotatesOnceFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	w := newSmallWriter(t, path, 5)
	w.now = func() time.Time { return fixedTime }

	_, err := w.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	_, err = w.Write([]byte("next\n"))
	require.NoError(t, err)

	archived, err := os.ReadFile(filepath.Join(filepath.Dir(path), "diag-2026-10-19T08-30-15-250Z.log"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", string(archived))

	active, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "next\n", string(active))
}

func TestRotatingWriter_PrunesOldArchives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diag.log")
	w := newSmallWriter(t, path, 2)

	tick := fixedTime
	w.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	for i := 0; i < 5; i++ {
		_, err := w.Write([]byte(strings.Repeat("x", 16)))
		require.NoError(t, err)
	}

	archives, err := filepath.Glob(filepath.Join(dir, "diag-*.log"))
	require.NoError(t, err)
	assert.Len(t, archives, 2)
	for _, a := range archives {
		assert.True(t, strings.Contains(a, "08-30-19") || strings.Contains(a, "08-30-18"), a)
	}
}

func TestRotatingWriter_ReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	w := newSmallWriter(t, path, 5)

	require.NoError(t, w.Close())
	_, err := w.Write([]byte("late\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "late\n", string(data))
}
