package logging

import "strings"

// Level orders log records by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
	LevelFatal

	// LevelNone suppresses every record when used as a minimum.
	LevelNone Level = 999
)

// FallbackIcon marks records whose level has no icon of its own.
const FallbackIcon = "📝"

var levelNames = map[Level]string{
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelSuccess: "success",
	LevelWarn:    "warn",
	LevelError:   "error",
	LevelFatal:   "fatal",
	LevelNone:    "none",
}

var levelIcons = map[Level]string{
	LevelDebug:   "🐛",
	LevelInfo:    "ℹ️",
	LevelSuccess: "✅",
	LevelWarn:    "⚠️",
	LevelError:   "❌",
	LevelFatal:   "💀",
}

// ParseLevel converts a level name. Unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	l, ok := lookupLevel(s)
	if !ok {
		return LevelInfo
	}
	return l
}

func lookupLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "success":
		return LevelSuccess, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	case "none":
		return LevelNone, true
	default:
		return LevelInfo, false
	}
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// Icon returns the glyph written at the start of each record.
func (l Level) Icon() string {
	if icon, ok := levelIcons[l]; ok {
		return icon
	}
	return FallbackIcon
}
