package cmd

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

// setupWorkspace runs the test from an empty directory with the log root
// under it and diagnostics kept off stderr. It returns the log root.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	root := filepath.Join(dir, "logs")
	t.Setenv("APPLOGS_LOGS_ROOT", root)
	t.Setenv("APPLOGS_DIAGNOSTICS_STDERR", "false")
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), &bytes.Buffer{}, args...)
}

func executeContext(t *testing.T, ctx context.Context, out interface {
	Write([]byte) (int, error)
	String() string
}, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// writeLog creates a log file for origin with the given content and mtime.
func writeLog(t *testing.T, root string, o logstore.Origin, name, content string, mtime time.Time) string {
	t.Helper()
	dir := filepath.Join(root, string(o))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes made by serve.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func listenLocal(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}
