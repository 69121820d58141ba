package logstore

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// isoLayout matches JavaScript's Date.toISOString output in UTC.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way every log line stamps it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// Entry is one formatted record. Payload is already rendered text (usually
// indented JSON); the store never looks inside it.
type Entry struct {
	Icon string
	Time time.Time
	// Stamp, when set, is written verbatim in place of Time.
	Stamp   string
	Level   string
	Source  string
	Message string
	Payload string
}

// Line renders the message line:
//
//	<icon> [<timestamp>] [<LEVEL>] [<SOURCE>] <message>
func (e Entry) Line() string {
	stamp := e.Stamp
	if stamp == "" {
		stamp = FormatTimestamp(e.Time)
	}
	return fmt.Sprintf("%s [%s] [%s] [%s] %s",
		e.Icon, stamp, strings.ToUpper(e.Level), e.Source, e.Message)
}

// Lines returns the message line followed by the payload block, if any.
func (e Entry) Lines() []string {
	if e.Payload == "" {
		return []string{e.Line()}
	}
	return []string{e.Line(), e.Payload}
}

var lineRegex = regexp.MustCompile(`^(\S+)\s+\[([^\]]+)\] \[([A-Za-z]+)\] \[([^\]]*)\] ?(.*)$`)

// ParseLine reads a message line back into an Entry. Payload and metadata
// lines do not match and return false.
func ParseLine(line string) (Entry, bool) {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, m[2])
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Icon:    m[1],
		Time:    ts,
		Level:   strings.ToLower(m[3]),
		Source:  m[4],
		Message: m[5],
	}, true
}
