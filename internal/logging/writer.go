package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

const (
	defaultWriterSizeMB = 10
	defaultWriterFiles  = 5
)

// RotatingWriter is the io.Writer behind the diagnostic log. Once the active
// file reaches maxSize it is archived under the store's naming scheme and
// only the newest maxFiles archives survive.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int
	now      func() time.Time

	mu          sync.Mutex
	f           *os.File
	size        int64
	syncOnWrite bool
}

// NewRotatingWriter opens path for appending. Non-positive limits fall back
// to 10 MB and 5 archives.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultWriterSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = defaultWriterFiles
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create diagnostics directory: %w", err)
	}

	w := &RotatingWriter{
		path:        path,
		maxSize:     int64(maxSizeMB) << 20,
		maxFiles:    maxFiles,
		now:         time.Now,
		syncOnWrite: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p. Rotation is decided before the write, so the record that
// crosses maxSize still lands in the old file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size >= w.maxSize {
		if err := w.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "applogs: diagnostics rotation: %v\n", err)
		}
	}
	if w.f == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	n, err := w.f.Write(p)
	w.size += int64(n)
	if err == nil && w.syncOnWrite {
		_ = w.f.Sync()
	}
	return n, err
}

// Close releases the file. A later Write reopens it.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeFile()
}

// Sync flushes the active file.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	return w.f.Sync()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open diagnostics log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat diagnostics log: %w", err)
	}
	w.f, w.size = f, info.Size()
	return nil
}

func (w *RotatingWriter) closeFile() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *RotatingWriter) rotate() error {
	if err := w.closeFile(); err != nil {
		return err
	}
	err := os.Rename(w.path, logstore.ArchiveName(w.path, w.now()))
	if err != nil && !os.IsNotExist(err) {
		// Keep writing to the oversized file rather than losing records.
		_ = w.open()
		return err
	}
	w.pruneArchives()
	return w.open()
}

func (w *RotatingWriter) pruneArchives() {
	ext := filepath.Ext(w.path)
	archives, err := filepath.Glob(strings.TrimSuffix(w.path, ext) + "-*" + ext)
	if err != nil || len(archives) <= w.maxFiles {
		return
	}
	// Timestamped names sort chronologically.
	slices.Sort(archives)
	for _, old := range archives[:len(archives)-w.maxFiles] {
		_ = os.Remove(old)
	}
}
