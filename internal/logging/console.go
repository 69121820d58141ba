package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ANSI 256 palette used on the console.
const (
	colorGray   = "245"
	colorBlue   = "33"
	colorGreen  = "42"
	colorYellow = "220"
	colorRed    = "196"
	colorWhite  = "255"
	colorCyan   = "37"
	colorDim    = "240"
)

// consoleStyles colours the parts of a console record.
type consoleStyles struct {
	timestamp lipgloss.Style
	source    lipgloss.Style
	payload   lipgloss.Style
	levels    map[Level]lipgloss.Style
}

func newConsoleStyles(color bool) consoleStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return consoleStyles{timestamp: plain, source: plain, payload: plain, levels: map[Level]lipgloss.Style{}}
	}
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return consoleStyles{
		timestamp: fg(colorDim),
		source:    fg(colorCyan),
		payload:   fg(colorGray),
		levels: map[Level]lipgloss.Style{
			LevelDebug:   fg(colorGray),
			LevelInfo:    fg(colorBlue),
			LevelSuccess: fg(colorGreen),
			LevelWarn:    fg(colorYellow),
			LevelError:   fg(colorRed),
			LevelFatal:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWhite)).Background(lipgloss.Color(colorRed)),
		},
	}
}

func (s consoleStyles) level(l Level) lipgloss.Style {
	if st, ok := s.levels[l]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// renderConsole formats one record the way it appears on a terminal:
// timestamp, icon and padded level, source tag, message.
func (s consoleStyles) renderConsole(ts string, l Level, source, message string) string {
	label := l.Icon() + " " + padRight(strings.ToUpper(l.String()), 7)
	return strings.Join([]string{
		s.timestamp.Render(ts),
		s.level(l).Render(label),
		s.source.Render("[" + source + "]"),
		message,
	}, " ")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// ColorEnabled reports whether output written to w should be coloured.
func ColorEnabled(w io.Writer) bool {
	return IsTTY(w) && !DetectNoColor()
}
