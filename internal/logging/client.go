package logging

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Aman-CERP/applogs/internal/logstore"
)

// clientFallbackIcon is used for client levels without an icon.
const clientFallbackIcon = "ℹ️"

// ClientReport is a record relayed by a browser client.
type ClientReport struct {
	Level     string          `json:"level"`
	Source    string          `json:"source"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
	UserAgent string          `json:"userAgent"`
	URL       string          `json:"url"`
}

// Entry converts r into a store record. A client timestamp that parses as
// RFC 3339 is written exactly as sent; otherwise received is used. An empty level means
// info, and levels the server does not know are written as given.
func (r ClientReport) Entry(received time.Time) logstore.Entry {
	level := strings.TrimSpace(r.Level)
	if level == "" {
		level = LevelInfo.String()
	}

	icon := clientFallbackIcon
	if l, ok := lookupLevel(level); ok && l != LevelNone {
		icon = l.Icon()
	}

	ts, stamp := received, ""
	if parsed, err := time.Parse(time.RFC3339Nano, r.Timestamp); err == nil {
		ts, stamp = parsed, r.Timestamp
	}

	return logstore.Entry{
		Icon:    icon,
		Time:    ts,
		Stamp:   stamp,
		Level:   level,
		Source:  "CLIENT:" + r.Source,
		Message: r.Message,
		Payload: renderPayload(r.Data),
	}
}

// Lines renders r as the lines written to the client log: the message line,
// the payload block if any, then the URL and user agent.
func (r ClientReport) Lines(received time.Time) []string {
	lines := r.Entry(received).Lines()
	return append(lines, "  URL: "+r.URL, "  User-Agent: "+r.UserAgent)
}

// LineSink appends raw lines. *logstore.Store satisfies it.
type LineSink interface {
	Append(o logstore.Origin, line string)
}

// WriteClientReport appends r to the client origin of s.
func WriteClientReport(s LineSink, r ClientReport, received time.Time) {
	for _, line := range r.Lines(received) {
		s.Append(logstore.OriginClient, line)
	}
}
