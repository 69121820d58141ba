package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// stalePID is above the default pid_max on Linux and macOS.
const stalePID = 4194304

func writePID(t *testing.T, path string, pid int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644))
}

func TestForRoot(t *testing.T) {
	assert.Equal(t, filepath.Join("logs", PIDFileName), ForRoot("logs").Path())
}

func TestAcquire_WritesCurrentPID(t *testing.T) {
	pf := ForRoot(filepath.Join(t.TempDir(), "nested", "logs"))

	require.NoError(t, pf.Acquire())

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_ReplacesStaleFile(t *testing.T) {
	pf := ForRoot(t.TempDir())
	writePID(t, pf.Path(), stalePID)

	require.NoError(t, pf.Acquire())

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_RefusesLiveProcess(t *testing.T) {
	pf := ForRoot(t.TempDir())
	// The parent of the test binary is alive for the whole run.
	writePID(t, pf.Path(), os.Getppid())

	err := pf.Acquire()

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyRunning, apperrors.GetCode(err))
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	_, err := NewPIDFile(filepath.Join(dir, "missing.pid")).Read()
	assert.True(t, errors.Is(err, ErrPIDFileNotFound))

	path := filepath.Join(dir, "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))
	_, err = NewPIDFile(path).Read()
	assert.Error(t, err)

	path = filepath.Join(dir, "spaced.pid")
	require.NoError(t, os.WriteFile(path, []byte("12345\n"), 0o644))
	pid, err := NewPIDFile(path).Read()
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestRelease(t *testing.T) {
	pf := ForRoot(t.TempDir())
	require.NoError(t, pf.Release(), "missing file is fine")

	require.NoError(t, pf.Acquire())
	require.NoError(t, pf.Release())
	assert.NoFileExists(t, pf.Path())

	// Another process's file is left alone.
	writePID(t, pf.Path(), stalePID)
	require.NoError(t, pf.Release())
	assert.FileExists(t, pf.Path())
}

func TestRunning(t *testing.T) {
	pf := ForRoot(t.TempDir())

	_, ok := pf.Running()
	assert.False(t, ok)

	writePID(t, pf.Path(), stalePID)
	_, ok = pf.Running()
	assert.False(t, ok)

	require.NoError(t, pf.Acquire())
	pid, ok := pf.Running()
	assert.True(t, ok)
	assert.Equal(t, os.Getpid(), pid)
}

func TestStop_NotRunning(t *testing.T) {
	pf := ForRoot(t.TempDir())

	_, err := pf.Stop(time.Second)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotRunning, apperrors.GetCode(err))
}

func TestSignal(t *testing.T) {
	pf := ForRoot(t.TempDir())
	require.NoError(t, pf.Acquire())
	require.NoError(t, pf.Signal(syscall.Signal(0)))

	writePID(t, pf.Path(), stalePID)
	require.Error(t, pf.Signal(syscall.Signal(0)))
}
