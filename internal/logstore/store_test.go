package logstore

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// neverSweep keeps the probabilistic sweep out of tests that do not want it.
func neverSweep() float64 { return 1 }

func newTestStore(t *testing.T, mutate func(*Config), opts ...Option) *Store {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	if mutate != nil {
		mutate(&cfg)
	}
	opts = append([]Option{WithRand(neverSweep)}, opts...)
	s, err := Open(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_CreatesOriginDirectories(t *testing.T) {
	s := newTestStore(t, nil)

	for _, o := range Origins {
		info, err := os.Stat(s.Dir(o))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestOpen_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Root = "" }},
		{"zero size", func(c *Config) { c.MaxFileSize = 0 }},
		{"zero files", func(c *Config) { c.MaxFiles = 0 }},
		{"zero age", func(c *Config) { c.MaxAge = 0 }},
		{"probability above one", func(c *Config) { c.SweepProbability = 1.5 }},
		{"latin1", func(c *Config) { c.Encoding = "latin1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			tt.mutate(&cfg)
			_, err := Open(cfg)
			assert.Error(t, err)
		})
	}
}

func TestOpen_AcceptsEncodingSpellings(t *testing.T) {
	for _, enc := range []string{"utf-8", "UTF-8", "utf8", ""} {
		cfg := DefaultConfig(t.TempDir())
		cfg.Encoding = enc
		assert.NoError(t, cfg.Validate(), enc)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("logs")

	assert.Equal(t, int64(100*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 10, cfg.MaxFiles)
	assert.Equal(t, 30*24*time.Hour, cfg.MaxAge)
	assert.Equal(t, 0.01, cfg.SweepProbability)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.False(t, cfg.CrossProcessLock)
}

func TestAppend_RoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, nil, WithClock(func() time.Time { return now }))

	lines := []string{
		"✅ [2026-10-19T12:00:00.000Z] [SUCCESS] [Auth] login - User: alice - SUCCESS",
		"{\n  \"id\": 1\n}",
		"plain line with ünïcode",
	}
	for _, l := range lines {
		s.Append(OriginServer, l)
	}

	path := filepath.Join(s.Dir(OriginServer), ActiveName(OriginServer, now))
	assert.Equal(t, strings.Join(lines, "\n")+"\n", readFile(t, path))
}

func TestAppend_ActiveFileNamedByUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	day := time.Date(2026, 10, 20, 5, 0, 0, 0, loc) // 2026-10-19 in UTC
	s := newTestStore(t, nil, WithClock(func() time.Time { return day }))

	s.Append(OriginClient, "hello")

	_, err := os.Stat(filepath.Join(s.Dir(OriginClient), "client-2026-10-19.log"))
	assert.NoError(t, err)
}

func TestAppend_OriginsAreSeparated(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, nil, WithClock(func() time.Time { return now }))

	s.Append(OriginServer, "from server")
	s.Append(OriginClient, "from client")

	assert.Equal(t, "from server\n", readFile(t, filepath.Join(s.Dir(OriginServer), ActiveName(OriginServer, now))))
	assert.Equal(t, "from client\n", readFile(t, filepath.Join(s.Dir(OriginClient), ActiveName(OriginClient, now))))
}

func TestAppend_RotatesWhenSizeReached(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, func(c *Config) { c.MaxFileSize = 10 }, WithClock(func() time.Time { return now }))

	s.Append(OriginServer, "0123456789") // 11 bytes with newline
	s.Append(OriginServer, "next")

	files, err := s.ListOrigin(OriginServer)
	require.NoError(t, err)
	require.Len(t, files, 2)

	active := ActiveName(OriginServer, now)
	archived := ArchiveName(active, now)
	assert.Equal(t, "0123456789\n", readFile(t, filepath.Join(s.Dir(OriginServer), archived)))
	assert.Equal(t, "next\n", readFile(t, filepath.Join(s.Dir(OriginServer), active)))
}

func TestAppend_DoesNotRotateBelowLimit(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, func(c *Config) { c.MaxFileSize = 12 }, WithClock(func() time.Time { return now }))

	s.Append(OriginServer, "0123456789") // 11 bytes, below 12
	s.Append(OriginServer, "overshoot")  // pre-write check only, so this lands in the same file

	files, err := s.ListOrigin(OriginServer)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "0123456789\novershoot\n", readFile(t, filepath.Join(s.Dir(OriginServer), files[0].Name)))
}

func TestAppend_RotationDoesNotClobberSameMillisecondArchive(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, func(c *Config) { c.MaxFileSize = 1 }, WithClock(func() time.Time { return now }))

	s.Append(OriginServer, "a")
	s.Append(OriginServer, "b")
	s.Append(OriginServer, "c")

	files, err := s.ListOrigin(OriginServer)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	var contents []string
	for _, f := range files {
		contents = append(contents, readFile(t, filepath.Join(s.Dir(OriginServer), f.Name)))
	}
	assert.ElementsMatch(t, []string{"a\n", "b\n", "c\n"}, contents)
}

func TestAppend_FailureIsReportedNotPropagated(t *testing.T) {
	root := t.TempDir()
	// A regular file where the origin directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(root, "server"), []byte("x"), 0o644))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	s, err := Open(DefaultConfig(root), WithLogger(logger), WithRand(neverSweep))
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.Append(OriginServer, "lost") })
	assert.Contains(t, buf.String(), "logstore: append failed")
	assert.Contains(t, buf.String(), "ERR_206_DIR_FAILED")

	// The other origin is unaffected.
	s.Append(OriginClient, "kept")
	files, err := s.ListOrigin(OriginClient)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestAppend_UnknownOriginIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	s := newTestStore(t, nil, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	assert.NotPanics(t, func() { s.Append(Origin("browser"), "nope") })
	assert.Contains(t, buf.String(), "ERR_402_INVALID_ORIGIN")
}

func TestAppend_RecreatesDeletedDirectory(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, nil, WithClock(func() time.Time { return now }))
	require.NoError(t, os.RemoveAll(s.Dir(OriginClient)))

	s.Append(OriginClient, "back again")

	assert.Equal(t, "back again\n", readFile(t, filepath.Join(s.Dir(OriginClient), ActiveName(OriginClient, now))))
}

func TestAppend_ReplacesInvalidUTF8(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, nil, WithClock(func() time.Time { return now }))

	s.Append(OriginServer, "bad \xff byte")

	assert.Equal(t, "bad � byte\n", readFile(t, filepath.Join(s.Dir(OriginServer), ActiveName(OriginServer, now))))
}

func TestAppend_CrossProcessLock(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, func(c *Config) { c.CrossProcessLock = true }, WithClock(func() time.Time { return now }))

	s.Append(OriginServer, "one")
	s.Append(OriginServer, "two")

	assert.Equal(t, "one\ntwo\n", readFile(t, filepath.Join(s.Dir(OriginServer), ActiveName(OriginServer, now))))
	_, err := os.Stat(filepath.Join(s.Dir(OriginServer), lockFileName))
	assert.NoError(t, err)

	files, err := s.ListOrigin(OriginServer)
	require.NoError(t, err)
	assert.Len(t, files, 1, "lock file must not be listed")
}

func TestAppendEntry_WritesMessageAndPayload(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 30, 15, 250e6, time.UTC)
	s := newTestStore(t, nil, WithClock(func() time.Time { return now }))

	s.AppendEntry(OriginServer, Entry{
		Icon:    "❌",
		Time:    now,
		Level:   "error",
		Source:  "API",
		Message: "/api/increment - increment",
		Payload: "{\n  \"number\": 2\n}",
	})

	want := "❌ [2026-10-19T08:30:15.250Z] [ERROR] [API] /api/increment - increment\n{\n  \"number\": 2\n}\n"
	assert.Equal(t, want, readFile(t, filepath.Join(s.Dir(OriginServer), "server-2026-10-19.log")))
}

func TestArchiveName(t *testing.T) {
	ts := time.Date(2026, 10, 19, 12, 30, 0, 5e6, time.UTC)

	assert.Equal(t, "2026-10-19T12-30-00-005Z", ArchiveTimestamp(ts))
	assert.Equal(t, "server-2026-10-19-2026-10-19T12-30-00-005Z.log", ArchiveName("server-2026-10-19.log", ts))
}

func TestParseOrigin(t *testing.T) {
	o, err := ParseOrigin("server")
	require.NoError(t, err)
	assert.Equal(t, OriginServer, o)

	o, err = ParseOrigin(" Client ")
	require.NoError(t, err)
	assert.Equal(t, OriginClient, o)

	_, err = ParseOrigin("kernel")
	assert.Error(t, err)
}

func TestAppendLine_DiskFullIsFatal(t *testing.T) {
	f, err := os.OpenFile("/dev/full", os.O_WRONLY, 0)
	if err != nil {
		t.Skip("/dev/full not writable")
	}
	require.NoError(t, f.Close())

	err = appendLine("/dev/full", "no room")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDiskFull, apperrors.GetCode(err))
	assert.True(t, apperrors.IsFatal(err))
	assert.False(t, apperrors.IsRetryable(err))
}

func TestWriteFailure_OtherErrorsAreRetryable(t *testing.T) {
	err := writeFailure("write log line", "x.log", errors.New("EIO"))

	assert.Equal(t, apperrors.ErrCodeWriteFailed, err.Code)
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, "x.log", err.Details["path"])
}

func TestReport_LevelFollowsRetryability(t *testing.T) {
	var buf bytes.Buffer
	s := newTestStore(t, nil, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	s.report("logstore: append failed", writeFailure("write log line", "x.log", errors.New("EIO")))
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	s.report("logstore: append rejected", apperrors.New(apperrors.ErrCodeInvalidOrigin, "unknown origin", nil))
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestUniqueArchivePath_ReturnsLstatErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), strings.Repeat("a", 300)+".log")

	done := make(chan error, 1)
	go func() {
		_, err := uniqueArchivePath(path, time.Now())
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("uniqueArchivePath did not return")
	}
}

func TestUniqueArchivePath_SkipsTakenNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-2026-10-19.log")
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	first := filepath.Join(dir, ArchiveName("server-2026-10-19.log", now))
	require.NoError(t, os.WriteFile(first, nil, 0o644))

	got, err := uniqueArchivePath(path, now)

	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(first, ".log")+"-1.log", got)
}
