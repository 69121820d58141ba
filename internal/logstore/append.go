package logstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// Append writes line plus a trailing newline to the active file of origin o.
//
// The active file is rotated first when its size is already at or above
// MaxFileSize, so a single long line may overshoot the limit. After the write
// a retention sweep runs with probability SweepProbability.
//
// Append never fails from the caller's point of view: problems are reported
// on the diagnostic logger and dropped.
func (s *Store) Append(o Origin, line string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("logstore: append panicked", "origin", string(o), "panic", r)
		}
	}()

	w, ok := s.writers[o]
	if !ok {
		s.report("logstore: append rejected", apperrors.New(apperrors.ErrCodeInvalidOrigin, "unknown origin "+string(o), nil))
		return
	}

	if err := s.ensureDir(o); err != nil {
		s.report("logstore: append failed", err)
		return
	}

	if err := w.lock(); err != nil {
		s.report("logstore: append lock failed", apperrors.New(apperrors.ErrCodeWriteFailed, "lock origin", err))
		return
	}
	defer w.unlock()

	path := s.activePath(o)
	if err := s.rotateIfFull(path); err != nil {
		// Keep writing to the full file rather than dropping the line.
		s.report("logstore: rotate failed", err)
	}

	if err := appendLine(path, line); err != nil {
		s.report("logstore: append failed", err)
		if apperrors.IsFatal(err) {
			// Disk full: reclaim what retention allows before the next append.
			s.sweepLocked(o)
		}
		return
	}

	if s.cfg.SweepProbability > 0 && s.rand() < s.cfg.SweepProbability {
		s.sweepLocked(o)
	}
}

// AppendEntry formats e and appends it as one record, payload included.
func (s *Store) AppendEntry(o Origin, e Entry) {
	for _, line := range e.Lines() {
		s.Append(o, line)
	}
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return writeFailure("open log file", path, err)
	}
	_, werr := f.WriteString(strings.ToValidUTF8(line, "�") + "\n")
	cerr := f.Close()
	if werr != nil {
		return writeFailure("write log line", path, werr)
	}
	if cerr != nil {
		return writeFailure("close log file", path, cerr)
	}
	return nil
}

// writeFailure classifies an append error. ENOSPC is fatal; anything else
// is retried by the next append.
func writeFailure(msg, path string, err error) *apperrors.AppError {
	code := apperrors.ErrCodeWriteFailed
	if errors.Is(err, syscall.ENOSPC) {
		code = apperrors.ErrCodeDiskFull
	}
	return apperrors.New(code, msg, err).WithDetail("path", path)
}

// rotateIfFull renames path to its archive name when it has reached the size
// limit. A missing file is not an error.
func (s *Store) rotateIfFull(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if info.Size() < s.cfg.MaxFileSize {
		return nil
	}

	target, err := uniqueArchivePath(path, s.now())
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRotateFailed, "choose archive name", err).
			WithDetail("path", path)
	}
	if err := os.Rename(path, target); err != nil {
		return apperrors.New(apperrors.ErrCodeRotateFailed, "rotate log file", err).
			WithDetail("path", path).
			WithDetail("target", target)
	}
	s.log.Debug("logstore: rotated", "from", filepath.Base(path), "to", filepath.Base(target), "size", info.Size())
	return nil
}

// ArchiveTimestamp renders t as ISO-8601 with ':' and '.' replaced by '-'.
func ArchiveTimestamp(t time.Time) string {
	ts := t.UTC().Format(isoLayout)
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}

// ArchiveName returns the rotated name for an active file name.
//
//	server-2026-10-19.log -> server-2026-10-19-2026-10-19T12-30-00-000Z.log
func ArchiveName(activeName string, t time.Time) string {
	ext := filepath.Ext(activeName)
	base := strings.TrimSuffix(activeName, ext)
	return base + "-" + ArchiveTimestamp(t) + ext
}

// uniqueArchivePath avoids clobbering an archive rotated in the same
// millisecond. Any Lstat failure other than not-exist is returned.
func uniqueArchivePath(path string, t time.Time) (string, error) {
	dir := filepath.Dir(path)
	name := ArchiveName(filepath.Base(path), t)
	target := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	for i := 1; ; i++ {
		_, err := os.Lstat(target)
		if errors.Is(err, fs.ErrNotExist) {
			return target, nil
		}
		if err != nil {
			return "", err
		}
		target = filepath.Join(dir, strings.TrimSuffix(name, ext)+"-"+strconv.Itoa(i)+ext)
	}
}
