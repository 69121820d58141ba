package logstore

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// Defaults for a new store.
const (
	DefaultMaxFileSize      int64   = 100 * 1024 * 1024
	DefaultMaxFiles                 = 10
	DefaultMaxAge                   = 30 * 24 * time.Hour
	DefaultSweepProbability float64 = 0.01
	DefaultEncoding                 = "utf-8"
	DefaultTailLines                = 100
)

// Config controls where log files live and how they are bounded.
type Config struct {
	// Root holds one subdirectory per origin.
	Root string
	// MaxFileSize is the size at which the active file is rotated before the next append.
	MaxFileSize int64
	// MaxFiles is the number of most recently modified files kept per origin.
	MaxFiles int
	// MaxAge is the age past which a file is deleted by a sweep.
	MaxAge time.Duration
	// SweepProbability is the chance that an append triggers a retention sweep.
	SweepProbability float64
	// Encoding of written text. Only utf-8 is supported.
	Encoding string
	// CrossProcessLock guards rotate-then-append with an advisory file lock.
	CrossProcessLock bool
}

// DefaultConfig returns the defaults rooted at root.
func DefaultConfig(root string) Config {
	return Config{
		Root:             root,
		MaxFileSize:      DefaultMaxFileSize,
		MaxFiles:         DefaultMaxFiles,
		MaxAge:           DefaultMaxAge,
		SweepProbability: DefaultSweepProbability,
		Encoding:         DefaultEncoding,
	}
}

// Validate checks the config and returns a config error if invalid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return apperrors.ConfigError("logs root is empty", nil)
	}
	if c.MaxFileSize <= 0 {
		return apperrors.ConfigError(fmt.Sprintf("max file size must be positive, got %d", c.MaxFileSize), nil)
	}
	if c.MaxFiles < 1 {
		return apperrors.ConfigError(fmt.Sprintf("max files must be at least 1, got %d", c.MaxFiles), nil)
	}
	if c.MaxAge <= 0 {
		return apperrors.ConfigError(fmt.Sprintf("max age must be positive, got %s", c.MaxAge), nil)
	}
	if c.SweepProbability < 0 || c.SweepProbability > 1 {
		return apperrors.ConfigError(fmt.Sprintf("sweep probability must be between 0 and 1, got %f", c.SweepProbability), nil)
	}
	switch strings.ToLower(strings.ReplaceAll(c.Encoding, "-", "")) {
	case "", "utf8":
	default:
		return apperrors.ConfigError("unsupported encoding: "+c.Encoding, nil).
			WithSuggestion("log files are always written as utf-8")
	}
	return nil
}

// Dir returns the directory holding files for origin o.
func (c Config) Dir(o Origin) string {
	return filepath.Join(c.Root, string(o))
}
