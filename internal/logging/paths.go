package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

// DefaultRoot is the logs root used when nothing is configured.
const DefaultRoot = "logs"

// DiagnosticsFileName is the diagnostic log's name inside the logs root.
const DiagnosticsFileName = "applogs-diagnostics.log"

// DiagnosticsPath returns the diagnostic log path for a logs root. It sits
// beside the origin directories so listings never include it.
func DiagnosticsPath(root string) string {
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, DiagnosticsFileName)
}

// FindLogFile picks the file the viewer opens.
// Priority:
// 1. Explicit path (if provided)
// 2. The most recently modified .log file of origin under root
func FindLogFile(root string, origin logstore.Origin, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	files, err := logstore.ScanOrigin(root, origin)
	if err != nil {
		return "", err
	}
	latest, ok := logstore.Latest(files)
	if !ok {
		return "", fmt.Errorf("no %s log files found in %s\n\n%s",
			origin, filepath.Join(root, string(origin)), logHint(origin))
	}
	return filepath.Join(root, string(origin), latest.Name), nil
}

// logHint explains how to produce logs for origin.
func logHint(origin logstore.Origin) string {
	switch origin {
	case logstore.OriginServer:
		return "To generate server logs:\n  applogs serve"
	case logstore.OriginClient:
		return "Client logs appear once a browser posts to /logs/client."
	default:
		return ""
	}
}
