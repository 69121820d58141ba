package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `🐛 [2026-10-19T08:00:00.000Z] [DEBUG] [Cache] warming
ℹ️ [2026-10-19T08:00:01.000Z] [INFO] [HTTP] GET    /health 200 (1ms)
❌ [2026-10-19T08:00:02.000Z] [ERROR] [CLIENT:LoginForm] submit failed
{
  "status": 500
}
  URL: http://localhost:5173/login
  User-Agent: Mozilla/5.0
✅ [2026-10-19T08:00:03.000Z] [SUCCESS] [Auth] login - User: bob - SUCCESS
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client-2026-10-19.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func rawLines(lines []ParsedLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Raw
	}
	return out
}

func TestParseLine_Record(t *testing.T) {
	p := ParseLine("⚠️ [2026-10-19T08:00:00.500Z] [WARN] [DB] slow query")

	require.True(t, p.IsValid)
	assert.Equal(t, "warn", p.Level)
	assert.Equal(t, "DB", p.Source)
	assert.Equal(t, "slow query", p.Message)
	assert.Equal(t, "⚠️", p.Icon)
	assert.Equal(t, 500*time.Millisecond, time.Duration(p.Time.Nanosecond()))
}

func TestParseLine_Continuation(t *testing.T) {
	p := ParseLine("  URL: http://x")

	assert.False(t, p.IsValid)
	assert.Equal(t, "  URL: http://x", p.Raw)
}

func TestViewer_TailAll(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	lines, err := v.Tail(writeSample(t), 100)
	require.NoError(t, err)
	assert.Len(t, lines, 9)
}

func TestViewer_TailLastN(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	lines, err := v.Tail(writeSample(t), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"  User-Agent: Mozilla/5.0",
		"✅ [2026-10-19T08:00:03.000Z] [SUCCESS] [Auth] login - User: bob - SUCCESS",
	}, rawLines(lines))
}

func TestViewer_TailNonPositiveUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-2026-10-19.log")
	var b strings.Builder
	for i := 0; i < DefaultViewerLines+10; i++ {
		fmt.Fprintf(&b, "ℹ️ [2026-10-19T08:00:00.000Z] [INFO] [Job] step %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	for _, n := range []int{0, -2} {
		lines, err := v.Tail(path, n)
		require.NoError(t, err, "n=%d", n)
		require.Len(t, lines, DefaultViewerLines, "n=%d", n)
		assert.Equal(t, "step 10", lines[0].Message)
	}
}

func TestViewer_TailNegativeOnShortFile(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	lines, err := v.Tail(writeSample(t), -5)
	require.NoError(t, err)
	assert.Len(t, lines, 9)
}

func TestViewer_LevelFilterCarriesContinuations(t *testing.T) {
	v := NewViewer(ViewerConfig{Level: "error", NoColor: true}, &bytes.Buffer{})

	lines, err := v.Tail(writeSample(t), 100)
	require.NoError(t, err)

	raw := rawLines(lines)
	require.Len(t, raw, 6)
	assert.Contains(t, raw[0], "[ERROR]")
	assert.Equal(t, "  User-Agent: Mozilla/5.0", raw[5])
}

func TestViewer_SuccessSitsBetweenInfoAndWarn(t *testing.T) {
	v := NewViewer(ViewerConfig{Level: "success", NoColor: true}, &bytes.Buffer{})

	lines, err := v.Tail(writeSample(t), 100)
	require.NoError(t, err)

	var levels []string
	for _, l := range lines {
		if l.IsValid {
			levels = append(levels, l.Level)
		}
	}
	assert.Equal(t, []string{"error", "success"}, levels)
}

func TestViewer_PatternFilter(t *testing.T) {
	v := NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`Auth`), NoColor: true}, &bytes.Buffer{})

	lines, err := v.Tail(writeSample(t), 100)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Auth", lines[0].Source)
}

func TestViewer_LeadingContinuationWithLevelFilter(t *testing.T) {
	v := NewViewer(ViewerConfig{Level: "info", NoColor: true}, &bytes.Buffer{})

	// The window starts inside the error record's payload.
	lines, err := v.Tail(writeSample(t), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"✅ [2026-10-19T08:00:03.000Z] [SUCCESS] [Auth] login - User: bob - SUCCESS",
	}, rawLines(lines))
}

func TestViewer_TailMissingFile(t *testing.T) {
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})

	_, err := v.Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	assert.Error(t, err)
}

func TestViewer_FormatAndPrint(t *testing.T) {
	var out bytes.Buffer
	v := NewViewer(ViewerConfig{NoColor: true}, &out)

	lines, err := v.Tail(writeSample(t), 100)
	require.NoError(t, err)
	v.Print(lines)

	printed := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, printed, 9)
	assert.True(t, strings.HasSuffix(printed[2], "❌ ERROR   [CLIENT:LoginForm] submit failed"), printed[2])
	assert.Equal(t, "  URL: http://localhost:5173/login", printed[6])
}

func TestViewer_Follow(t *testing.T) {
	path := writeSample(t)
	v := NewViewer(ViewerConfig{Level: "warn", NoColor: true}, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lines := make(chan ParsedLine, 16)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, lines) }()

	// Give the follower time to seek to the end.
	time.Sleep(100 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("ℹ️ [2026-10-19T09:00:00.000Z] [INFO] [S] skipped\n" +
		"⚠️ [2026-10-19T09:00:01.000Z] [WARN] [S] kept\n" +
		"  URL: /x\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var got []string
	for len(got) < 2 {
		select {
		case p := <-lines:
			got = append(got, p.Raw)
		case <-ctx.Done():
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []string{"⚠️ [2026-10-19T09:00:01.000Z] [WARN] [S] kept", "  URL: /x"}, got)

	cancel()
	assert.NoError(t, <-done)
}
