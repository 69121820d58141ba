package logstore

import (
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

const (
	defaultDirMode  = 0o755
	defaultFileMode = 0o644

	// The tail cache holds at most tailCacheSize files of up to
	// tailCacheFileLimit bytes each.
	tailCacheSize      = 32
	tailCacheFileLimit = 1 << 20

	lockFileName = ".append.lock"
)

// Store owns the log directories for every origin.
// Writes for one origin are serialised; reads take no locks.
type Store struct {
	cfg Config
	log *slog.Logger

	now  func() time.Time
	rand func() float64

	startupSweep bool

	writers map[Origin]*originWriter

	tailCache *lru.Cache[string, splitFile]
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger that receives write-path warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand replaces the source used to decide whether an append sweeps.
func WithRand(r func() float64) Option {
	return func(s *Store) {
		if r != nil {
			s.rand = r
		}
	}
}

// WithStartupSweep controls whether Open sweeps every origin. It is on by
// default; read-only callers turn it off.
func WithStartupSweep(enabled bool) Option {
	return func(s *Store) { s.startupSweep = enabled }
}

// Open validates cfg, prepares the origin directories and, unless disabled
// with WithStartupSweep, sweeps every origin. Only config errors are returned.
func Open(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, apperrors.ConfigError("cannot resolve logs root "+cfg.Root, err)
	}
	cfg.Root = root

	cache, err := lru.New[string, splitFile](tailCacheSize)
	if err != nil {
		return nil, apperrors.InternalError("create tail cache", err)
	}

	s := &Store{
		cfg:          cfg,
		log:          slog.Default(),
		now:          time.Now,
		rand:         rand.Float64,
		startupSweep: true,
		writers:      make(map[Origin]*originWriter, len(Origins)),
		tailCache:    cache,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, o := range Origins {
		s.writers[o] = newOriginWriter(cfg, o)
		if err := s.ensureDir(o); err != nil {
			s.report("logstore: prepare directory failed", err)
			continue
		}
		if s.startupSweep {
			s.SweepRetention(o)
		}
	}

	return s, nil
}

// Config returns the effective configuration, with Root made absolute.
func (s *Store) Config() Config {
	return s.cfg
}

// Dir returns the directory for origin o.
func (s *Store) Dir(o Origin) string {
	return s.cfg.Dir(o)
}

// Close releases any cross-process locks. The store holds no open files
// between appends, so Close is only needed with CrossProcessLock.
func (s *Store) Close() error {
	for _, w := range s.writers {
		w.close()
	}
	return nil
}

// ActiveName returns the active file name for origin o at time t.
func ActiveName(o Origin, t time.Time) string {
	return string(o) + "-" + t.UTC().Format("2006-01-02") + ".log"
}

// activePath resolves the current day's active file for origin o.
func (s *Store) activePath(o Origin) string {
	return filepath.Join(s.cfg.Dir(o), ActiveName(o, s.now()))
}

func (s *Store) ensureDir(o Origin) error {
	dir := s.cfg.Dir(o)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return apperrors.New(apperrors.ErrCodeDirFailed, "create log directory", err).
			WithDetail("dir", dir)
	}
	return nil
}

// report sends a suppressed write-path failure to the diagnostic logger.
// Failures the next append may get past are warnings; the rest are errors.
func (s *Store) report(msg string, err error) {
	fields := apperrors.FormatForLog(err)
	attrs := make([]any, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	if apperrors.IsRetryable(err) {
		s.log.Warn(msg, attrs...)
		return
	}
	s.log.Error(msg, attrs...)
}

// originWriter serialises rotate-then-append for one origin.
type originWriter struct {
	mu    sync.Mutex
	flock *fileLock
}

func newOriginWriter(cfg Config, o Origin) *originWriter {
	w := &originWriter{}
	if cfg.CrossProcessLock {
		w.flock = newFileLock(filepath.Join(cfg.Dir(o), lockFileName))
	}
	return w
}

func (w *originWriter) lock() error {
	w.mu.Lock()
	if w.flock == nil {
		return nil
	}
	if err := w.flock.Lock(); err != nil {
		w.mu.Unlock()
		return err
	}
	return nil
}

func (w *originWriter) unlock() {
	if w.flock != nil {
		_ = w.flock.Unlock()
	}
	w.mu.Unlock()
}

func (w *originWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flock != nil {
		_ = w.flock.Unlock()
	}
}
