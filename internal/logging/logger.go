package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

// Sink receives formatted records. *logstore.Store satisfies it.
type Sink interface {
	AppendEntry(o logstore.Origin, e logstore.Entry)
}

// Logger writes leveled records to the console and to a Sink under the
// server origin. It is safe for concurrent use.
type Logger struct {
	min            Level
	requestLogging bool
	sink           Sink
	now            func() time.Time

	mu      sync.Mutex
	console io.Writer
	styles  consoleStyles
}

// LoggerOption customises a Logger.
type LoggerOption func(*Logger)

// WithMinLevel drops records below l.
func WithMinLevel(l Level) LoggerOption {
	return func(lg *Logger) { lg.min = l }
}

// WithSink sets where records are persisted.
func WithSink(s Sink) LoggerOption {
	return func(lg *Logger) { lg.sink = s }
}

// WithConsole sets the console writer. A nil writer disables console output.
func WithConsole(w io.Writer, color bool) LoggerOption {
	return func(lg *Logger) {
		lg.console = w
		lg.styles = newConsoleStyles(color)
	}
}

// WithRequestLogging enables the HTTP helper.
func WithRequestLogging(enabled bool) LoggerOption {
	return func(lg *Logger) { lg.requestLogging = enabled }
}

// WithLoggerClock replaces time.Now.
func WithLoggerClock(now func() time.Time) LoggerOption {
	return func(lg *Logger) {
		if now != nil {
			lg.now = now
		}
	}
}

// NewLogger returns a Logger at info level writing to stdout.
func NewLogger(opts ...LoggerOption) *Logger {
	lg := &Logger{
		min:     LevelInfo,
		now:     time.Now,
		console: os.Stdout,
		styles:  newConsoleStyles(ColorEnabled(os.Stdout)),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Enabled reports whether records at l are written.
func (lg *Logger) Enabled(l Level) bool {
	return lg.min != LevelNone && l >= lg.min
}

// Log writes one record. data, when non-nil, is rendered as indented JSON
// below the message line.
func (lg *Logger) Log(l Level, source, message string, data any) {
	if !lg.Enabled(l) {
		return
	}

	entry := logstore.Entry{
		Icon:    l.Icon(),
		Time:    lg.now(),
		Level:   l.String(),
		Source:  source,
		Message: message,
		Payload: renderPayload(data),
	}

	if lg.console != nil {
		lg.mu.Lock()
		_, _ = fmt.Fprintln(lg.console, lg.styles.renderConsole(logstore.FormatTimestamp(entry.Time), l, source, message))
		if entry.Payload != "" {
			_, _ = fmt.Fprintln(lg.console, lg.styles.payload.Render(entry.Payload))
		}
		lg.mu.Unlock()
	}

	if lg.sink != nil {
		lg.sink.AppendEntry(logstore.OriginServer, entry)
	}
}

func (lg *Logger) Debug(source, message string, data any) {
	lg.Log(LevelDebug, source, message, data)
}

func (lg *Logger) Info(source, message string, data any) {
	lg.Log(LevelInfo, source, message, data)
}

func (lg *Logger) Success(source, message string, data any) {
	lg.Log(LevelSuccess, source, message, data)
}

func (lg *Logger) Warn(source, message string, data any) {
	lg.Log(LevelWarn, source, message, data)
}

func (lg *Logger) Error(source, message string, data any) {
	lg.Log(LevelError, source, message, data)
}

func (lg *Logger) Fatal(source, message string, data any) {
	lg.Log(LevelFatal, source, message, data)
}

// HTTP records one served request at info level. It is a no-op unless
// request logging is enabled.
func (lg *Logger) HTTP(method, path string, status int, d time.Duration) {
	if !lg.requestLogging {
		return
	}
	lg.Log(LevelInfo, "HTTP", fmt.Sprintf("%s %s %d (%dms)", padRight(method, 6), path, status, d.Milliseconds()), nil)
}

// API records the outcome of an endpoint operation. A zero duration is
// omitted from the message.
func (lg *Logger) API(endpoint, operation string, ok bool, d time.Duration) {
	level := LevelError
	if ok {
		level = LevelSuccess
	}
	msg := endpoint + " - " + operation
	if d > 0 {
		msg += fmt.Sprintf(" (%dms)", d.Milliseconds())
	}
	lg.Log(level, "API", msg, nil)
}

// Auth records an authentication event. Failures are warnings.
func (lg *Logger) Auth(event, user string, ok bool, details any) {
	level, outcome := LevelWarn, "FAILED"
	if ok {
		level, outcome = LevelSuccess, "SUCCESS"
	}
	lg.Log(level, "Auth", fmt.Sprintf("%s - User: %s - %s", event, user, outcome), details)
}

// renderPayload pretty-prints data with a two-space indent. Values that are
// not JSON-encodable fall back to fmt's %+v.
func renderPayload(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case json.RawMessage:
		if len(v) == 0 || string(v) == "null" {
			return ""
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, v, "", "  "); err != nil {
			return string(v)
		}
		return buf.String()
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", data)
	}
	return string(b)
}
