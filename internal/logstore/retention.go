package logstore

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// SweepResult counts what a retention sweep did.
type SweepResult struct {
	Origin  Origin `json:"origin"`
	Scanned int    `json:"scanned"`
	Expired int    `json:"expired"`
	Excess  int    `json:"excess"`
	Failed  int    `json:"failed"`
}

// Deleted is the number of files removed.
func (r SweepResult) Deleted() int {
	return r.Expired + r.Excess
}

// SweepRetention deletes files older than MaxAge and, among the rest, every
// file beyond the MaxFiles most recently modified. Each deletion is attempted
// on its own; failures are reported and counted.
func (s *Store) SweepRetention(o Origin) SweepResult {
	w, ok := s.writers[o]
	if !ok {
		return SweepResult{Origin: o}
	}
	if err := w.lock(); err != nil {
		s.report("logstore: sweep lock failed", apperrors.New(apperrors.ErrCodeDeleteFailed, "lock origin", err))
		return SweepResult{Origin: o}
	}
	defer w.unlock()
	return s.sweepLocked(o)
}

type sweepCandidate struct {
	name    string
	path    string
	age     time.Duration
	modTime time.Time
}

func (s *Store) sweepLocked(o Origin) SweepResult {
	result := SweepResult{Origin: o}
	dir := s.cfg.Dir(o)

	files, err := readLogDir(dir, o)
	if err != nil {
		s.report("logstore: sweep failed", err)
		return result
	}
	result.Scanned = len(files)

	now := s.now()
	candidates := make([]sweepCandidate, 0, len(files))
	for _, f := range files {
		candidates = append(candidates, sweepCandidate{
			name:    f.Name,
			path:    filepath.Join(dir, f.Name),
			age:     now.Sub(f.ModTime),
			modTime: f.ModTime,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	survivors := candidates[:0]
	for _, c := range candidates {
		if c.age <= s.cfg.MaxAge {
			survivors = append(survivors, c)
			continue
		}
		if s.remove(c, "expired") {
			result.Expired++
		} else {
			result.Failed++
		}
	}

	if len(survivors) > s.cfg.MaxFiles {
		for _, c := range survivors[s.cfg.MaxFiles:] {
			if s.remove(c, "excess") {
				result.Excess++
			} else {
				result.Failed++
			}
		}
	}

	if result.Deleted() > 0 || result.Failed > 0 {
		s.log.Info("logstore: retention sweep",
			"origin", string(o),
			"scanned", result.Scanned,
			"expired", result.Expired,
			"excess", result.Excess,
			"failed", result.Failed)
	}
	return result
}

func (s *Store) remove(c sweepCandidate, reason string) bool {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		s.report("logstore: delete failed", apperrors.New(apperrors.ErrCodeDeleteFailed, "delete "+reason+" log file", err).
			WithDetail("name", c.name))
		return false
	}
	s.tailCache.Remove(c.path)
	return true
}
