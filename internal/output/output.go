// Package output renders the human-readable side of the applogs commands.
// Write errors are dropped: there is nowhere better to report them.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

const (
	iconSuccess = "✅"
	iconWarning = "⚠️ "
	iconError   = "❌"
	iconOrigin  = "📂"

	// indent lines up icon-less text with the message column.
	indent = "   "
)

// Writer prints icon-prefixed status lines and listings.
type Writer struct {
	out io.Writer
}

func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

// Status prints msg after icon, or indented when icon is empty.
func (w *Writer) Status(icon, msg string) {
	if icon == "" {
		w.printf("%s%s\n", indent, msg)
		return
	}
	w.printf("%s %s\n", icon, msg)
}

func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

func (w *Writer) Success(msg string)                  { w.Status(iconSuccess, msg) }
func (w *Writer) Successf(format string, args ...any) { w.Statusf(iconSuccess, format, args...) }
func (w *Writer) Warning(msg string)                  { w.Status(iconWarning, msg) }
func (w *Writer) Warningf(format string, args ...any) { w.Statusf(iconWarning, format, args...) }
func (w *Writer) Error(msg string)                    { w.Status(iconError, msg) }
func (w *Writer) Errorf(format string, args ...any)   { w.Statusf(iconError, format, args...) }

// Code prints content indented by two spaces between blank lines.
func (w *Writer) Code(content string) {
	var b strings.Builder
	b.WriteByte('\n')
	for _, line := range strings.Split(content, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	w.printf("%s", b.String())
}

func (w *Writer) Newline() { w.printf("\n") }

// Files prints one origin's files, newest first, as an aligned table.
func (w *Writer) Files(origin logstore.Origin, files []logstore.FileInfo) {
	sorted := append([]logstore.FileInfo(nil), files...)
	logstore.SortByModTime(sorted)

	w.Statusf(iconOrigin, "%s (%d)", origin, len(sorted))
	if len(sorted) == 0 {
		w.Status("", "no log files")
		return
	}

	width := 0
	for _, f := range sorted {
		width = max(width, len(f.Name))
	}
	for _, f := range sorted {
		w.printf("%s%-*s  %9s  %s\n", indent,
			width, f.Name, HumanSize(f.Size), f.ModTime.Local().Format(time.DateTime))
	}
}

// Sweep prints the outcome of a retention sweep. Failed deletions turn the
// line into a warning.
func (w *Writer) Sweep(r logstore.SweepResult) {
	summary := fmt.Sprintf("%s: scanned %d, deleted %d (%d expired, %d over limit)",
		r.Origin, r.Scanned, r.Deleted(), r.Expired, r.Excess)
	if r.Failed == 0 {
		w.Success(summary)
		return
	}
	w.Warningf("%s, %d failed", summary, r.Failed)
}

// HumanSize renders a byte count with a binary unit.
func HumanSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	size := float64(n)
	for _, unit := range []string{"KiB", "MiB", "GiB", "TiB", "PiB"} {
		size /= 1024
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
	}
	return fmt.Sprintf("%.1f EiB", size/1024)
}
