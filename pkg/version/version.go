// Package version reports build information for the applogs binaries.
//
// Release builds stamp Version, Commit and Date with ldflags:
//
//	-X github.com/Aman-CERP/applogs/pkg/version.Version=$(VERSION)
//
// When Commit or Date are left unstamped, the VCS settings the Go toolchain
// embeds (vcs.revision, vcs.time, vcs.modified) fill them in.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the program name used in version strings.
const Name = "applogs"

const unknown = "unknown"

var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown

	GoVersion = runtime.Version()
)

// BuildInfo is the JSON form of the build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetInfo returns the stamped values, completed from embedded VCS settings.
func GetInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok {
		info.fillFromVCS(bi.Settings)
	}
	return info
}

func (b *BuildInfo) fillFromVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == unknown && s.Value != "" {
				b.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if b.Date == unknown && s.Value != "" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String returns the one-line version string.
func String() string {
	info := GetInfo()
	commit := info.Commit
	if info.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, info.Version, commit, info.Date, info.GoVersion)
}

// Short returns just the version.
func Short() string { return Version }

// IsDev reports whether the binary was built without a release version.
func IsDev() bool { return Version == "dev" }
