package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

// followPollInterval is the fallback poll used alongside fsnotify, and the
// only trigger when a watcher cannot be created.
const followPollInterval = 250 * time.Millisecond

// DefaultViewerLines is how many trailing lines Tail shows when asked for
// none or a negative count.
const DefaultViewerLines = 50

// ParsedLine is one line of a store file. Record lines parse into their
// parts; payload and metadata lines keep only Raw.
type ParsedLine struct {
	Time    time.Time
	Icon    string
	Level   string
	Source  string
	Message string
	Raw     string
	IsValid bool
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // Minimum level (debug, info, success, warn, error, fatal)
	Pattern *regexp.Regexp // Keep only records whose line matches
	NoColor bool
}

// Viewer reads, filters and prints store files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	styles consoleStyles
}

// NewViewer creates a new log viewer.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{
		config: cfg,
		out:    out,
		styles: newConsoleStyles(!cfg.NoColor),
	}
}

// ParseLine splits a store line into its parts.
func ParseLine(line string) ParsedLine {
	p := ParsedLine{Raw: line}
	e, ok := logstore.ParseLine(line)
	if !ok {
		return p
	}
	p.Time = e.Time
	p.Icon = e.Icon
	p.Level = e.Level
	p.Source = e.Source
	p.Message = e.Message
	p.IsValid = true
	return p
}

// Tail reads the last n lines of path and returns those that pass the
// filters. A payload or metadata line follows the decision made for the
// record above it.
func (v *Viewer) Tail(path string, n int) ([]ParsedLine, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	if n <= 0 {
		n = DefaultViewerLines
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	f := v.newFilter()
	var out []ParsedLine
	for _, line := range lines {
		p := ParseLine(line)
		if f.keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Follow sends lines appended to path until ctx is cancelled. Write events
// come from fsnotify; a ticker covers filesystems without notifications.
// When the file is rotated away and recreated, Follow reopens it.
func (v *Viewer) Follow(ctx context.Context, path string, lines chan<- ParsedLine) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer func() { _ = watcher.Close() }()
		if err := watcher.Add(filepath.Dir(path)); err == nil {
			events, errs = watcher.Events, watcher.Errors
		}
	}

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	reader := bufio.NewReader(file)
	f := v.newFilter()
	var partial string

	drain := func() bool {
		for {
			chunk, err := reader.ReadString('\n')
			if err != nil {
				// Keep an unterminated tail until the rest is written.
				partial += chunk
				return true
			}
			line := strings.TrimSuffix(partial+chunk, "\n")
			partial = ""
			if line == "" {
				continue
			}
			p := ParseLine(line)
			if !f.keep(p) {
				continue
			}
			select {
			case lines <- p:
			case <-ctx.Done():
				return false
			}
		}
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if !drain() {
					return nil
				}
				reopened, err := os.Open(path)
				if err != nil {
					continue
				}
				_ = file.Close()
				file = reopened
				reader.Reset(file)
				partial = ""
			}
			if !drain() {
				return nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-ticker.C:
			if !drain() {
				return nil
			}
		}
	}
}

// FormatEntry formats a line for display.
func (v *Viewer) FormatEntry(p ParsedLine) string {
	if !p.IsValid {
		return v.styles.payload.Render(p.Raw)
	}
	level := ParseLevel(p.Level)
	label := p.Icon + " " + padRight(strings.ToUpper(p.Level), 7)
	return strings.Join([]string{
		v.styles.timestamp.Render(p.Time.Local().Format("15:04:05.000")),
		v.styles.level(level).Render(label),
		v.styles.source.Render("[" + p.Source + "]"),
		p.Message,
	}, " ")
}

// Print prints lines to the output.
func (v *Viewer) Print(lines []ParsedLine) {
	for _, p := range lines {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(p))
	}
}

// lineFilter applies the viewer filters across a stream of lines.
type lineFilter struct {
	min      Level
	hasLevel bool
	pattern  *regexp.Regexp

	seenRecord bool
	lastKept   bool
}

func (v *Viewer) newFilter() *lineFilter {
	return &lineFilter{
		min:      ParseLevel(v.config.Level),
		hasLevel: v.config.Level != "",
		pattern:  v.config.Pattern,
	}
}

func (f *lineFilter) keep(p ParsedLine) bool {
	if p.IsValid {
		f.seenRecord = true
		f.lastKept = f.matches(p)
		return f.lastKept
	}
	if f.seenRecord {
		return f.lastKept
	}
	// Continuation lines of a record cut off by the tail window.
	return !f.hasLevel && (f.pattern == nil || f.pattern.MatchString(p.Raw))
}

func (f *lineFilter) matches(p ParsedLine) bool {
	if f.hasLevel {
		l, ok := lookupLevel(p.Level)
		if ok && l < f.min {
			return false
		}
	}
	if f.pattern != nil && !f.pattern.MatchString(p.Raw) {
		return false
	}
	return true
}
