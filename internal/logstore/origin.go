package logstore

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

// Origin identifies which side produced a log line.
type Origin string

const (
	// OriginServer is the server process.
	OriginServer Origin = "server"
	// OriginClient is a browser client relayed over HTTP.
	OriginClient Origin = "client"
)

// Origins lists every origin in a stable order.
var Origins = []Origin{OriginServer, OriginClient}

// ParseOrigin converts a route or flag value into an Origin.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "server":
		return OriginServer, nil
	case "client":
		return OriginClient, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeInvalidOrigin, "unknown log origin: "+s, nil).
			WithSuggestion("use 'server' or 'client'")
	}
}

// String implements fmt.Stringer.
func (o Origin) String() string {
	return string(o)
}

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	return o == OriginServer || o == OriginClient
}

// FileInfo describes one log file on disk.
type FileInfo struct {
	Name    string    `json:"name"`
	Origin  Origin    `json:"type"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}

// Listing groups files by origin.
type Listing struct {
	Server []FileInfo `json:"server"`
	Client []FileInfo `json:"client"`
}

// ForOrigin returns the files listed for o.
func (l Listing) ForOrigin(o Origin) []FileInfo {
	if o == OriginServer {
		return l.Server
	}
	return l.Client
}

// SortByModTime orders files most recently modified first.
func SortByModTime(files []FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
}

// Latest returns the most recently modified file, if any.
func Latest(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, true
}
