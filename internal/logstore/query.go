package logstore

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// Sentinels for typed read failures. Match with errors.Is.
var (
	ErrNotFound     = apperrors.New(apperrors.ErrCodeFileNotFound, "file not found", nil)
	ErrAccessDenied = apperrors.New(apperrors.ErrCodeAccessDenied, "access denied", nil)
)

// TailResult is the trailing slice of a file.
type TailResult struct {
	Content    string `json:"content"`
	TotalLines int    `json:"totalLines"`
}

type splitFile struct {
	size    int64
	modTime time.Time
	lines   []string
}

// List returns every .log file of both origins. Order is unspecified.
func (s *Store) List() (Listing, error) {
	var listing Listing
	var g errgroup.Group
	g.Go(func() error {
		files, err := s.ListOrigin(OriginServer)
		listing.Server = files
		return err
	})
	g.Go(func() error {
		files, err := s.ListOrigin(OriginClient)
		listing.Client = files
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

// ListOrigin returns the .log files of origin o. A missing directory yields
// an empty slice.
func (s *Store) ListOrigin(o Origin) ([]FileInfo, error) {
	if !o.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidOrigin, "unknown origin "+string(o), nil)
	}
	return readLogDir(s.cfg.Dir(o), o)
}

// ScanOrigin lists origin o's .log files under root without opening a Store,
// so it never sweeps.
func ScanOrigin(root string, o Origin) ([]FileInfo, error) {
	if !o.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidOrigin, "unknown origin "+string(o), nil)
	}
	return readLogDir(filepath.Join(root, string(o)), o)
}

func readLogDir(dir string, o Origin) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, apperrors.New(apperrors.ErrCodeFilePermission, "list log directory", err).WithDetail("dir", dir)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Rotated or swept between ReadDir and Info.
			continue
		}
		files = append(files, FileInfo{
			Name:    e.Name(),
			Origin:  o,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// Read returns the full content of a file in origin o's directory.
func (s *Store) Read(o Origin, name string) (string, error) {
	path, err := s.resolve(o, name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", notFound(o, name, err)
	}
	return string(data), nil
}

// Tail returns the last n lines of a file and the file's total line count.
// n <= 0 means DefaultTailLines.
func (s *Store) Tail(o Origin, name string, n int) (TailResult, error) {
	if n <= 0 {
		n = DefaultTailLines
	}
	path, err := s.resolve(o, name)
	if err != nil {
		return TailResult{}, err
	}

	lines, total, err := s.tailLines(path, n)
	if err != nil {
		return TailResult{}, notFound(o, name, err)
	}
	return TailResult{
		Content:    strings.Join(lines, "\n"),
		TotalLines: total,
	}, nil
}

// ParseTailLines reads a line-count query value. Anything that is not a
// positive integer becomes DefaultTailLines.
func ParseTailLines(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultTailLines
	}
	return n
}

// tailLines returns the last n "\n"-separated lines of path and the total
// count. Files up to tailCacheFileLimit are split whole and cached; larger
// ones are streamed through a window of n lines and never cached.
func (s *Store) tailLines(path string, n int) ([]string, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if info.IsDir() {
		return nil, 0, fs.ErrInvalid
	}
	if info.Size() > tailCacheFileLimit {
		s.tailCache.Remove(path)
		return streamTail(path, n)
	}

	lines, err := s.splitLines(path, info)
	if err != nil {
		return nil, 0, err
	}
	start := max(len(lines)-n, 0)
	return lines[start:], len(lines), nil
}

// splitLines splits a file on "\n", reusing the cached split while the
// file's size and mtime are unchanged.
func (s *Store) splitLines(path string, info fs.FileInfo) ([]string, error) {
	if cached, ok := s.tailCache.Get(path); ok &&
		cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.lines, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	s.tailCache.Add(path, splitFile{size: info.Size(), modTime: info.ModTime(), lines: lines})
	return lines, nil
}

// streamTail counts lines the way strings.Split does, so a trailing newline
// yields a final empty line, while holding at most n of them.
func streamTail(path string, n int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, n)
	total := 0
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, err
		}
		ring[total%n] = strings.TrimSuffix(line, "\n")
		total++
		if err != nil {
			break
		}
	}

	kept := min(total, n)
	out := make([]string, 0, kept)
	for i := total - kept; i < total; i++ {
		out = append(out, ring[i%n])
	}
	return out, total, nil
}

// resolve joins name onto origin o's directory and refuses any result that
// is not strictly inside it. The lexical check runs before the filesystem is
// touched; symlinks are then resolved and checked again.
func (s *Store) resolve(o Origin, name string) (string, error) {
	if !o.Valid() {
		return "", apperrors.New(apperrors.ErrCodeInvalidOrigin, "unknown origin "+string(o), nil)
	}
	base := filepath.Clean(s.cfg.Dir(o))
	target := filepath.Clean(filepath.Join(base, name))
	if !within(base, target) {
		return "", accessDenied(o, name)
	}

	realTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		// Missing file: the read reports not-found.
		return target, nil
	}
	realBase, err := filepath.EvalSymlinks(base)
	if err != nil {
		realBase = base
	}
	if !within(realBase, realTarget) {
		return "", accessDenied(o, name)
	}
	return target, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

func accessDenied(o Origin, name string) error {
	return apperrors.AccessDeniedError("access denied").
		WithDetail("origin", string(o)).
		WithDetail("name", name)
}

func notFound(o Origin, name string, cause error) error {
	return apperrors.NotFoundError("file not found", cause).
		WithDetail("origin", string(o)).
		WithDetail("name", name)
}
