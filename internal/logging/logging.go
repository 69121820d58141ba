package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config describes the store's own JSON diagnostic log, kept apart from the
// server and client logs it manages.
type Config struct {
	Level string
	// FilePath empty means records only go to stderr.
	FilePath      string
	MaxSizeMB     int
	MaxFiles      int
	WriteToStderr bool
}

// Setup returns the diagnostic logger. cleanup flushes and closes the file
// and is safe to call when no file was opened.
func Setup(cfg Config) (logger *slog.Logger, cleanup func(), err error) {
	cleanup = func() {}
	var out io.Writer = os.Stderr

	if cfg.FilePath != "" {
		rw, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			_ = rw.Sync()
			_ = rw.Close()
		}
		out = rw
		if cfg.WriteToStderr {
			out = io.MultiWriter(rw, os.Stderr)
		}
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: LevelFromString(cfg.Level)})
	return slog.New(h), cleanup, nil
}

// slogSilent sits above every level slog emits.
const slogSilent = slog.LevelError + 4

// LevelFromString maps a store level name onto slog. success folds into
// info, fatal into error, and none silences the logger.
func LevelFromString(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError, LevelFatal:
		return slog.LevelError
	case LevelNone:
		return slogSilent
	default:
		return slog.LevelInfo
	}
}
