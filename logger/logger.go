package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	lipgloss "github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

var (
	mu           sync.Mutex
	level        = LevelWarn
	colorEnabled = true
	outWriter    io.Writer // nil = os.Stdout / os.Stderr per-level
)

// Level tag styles. Rebuilt by SetPalette when the console theme changes.
var (
	styleTrace = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("#56d7c2"))
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
)

// Palette carries the colors used for level tags.
type Palette struct {
	Trace, Debug, Info, Warn, Error lipgloss.TerminalColor
}

// SetPalette restyles the level tags.
func SetPalette(p Palette) {
	mu.Lock()
	defer mu.Unlock()
	styleTrace = lipgloss.NewStyle().Foreground(p.Trace)
	styleDebug = lipgloss.NewStyle().Foreground(p.Debug)
	styleInfo = lipgloss.NewStyle().Foreground(p.Info)
	styleWarn = lipgloss.NewStyle().Foreground(p.Warn)
	styleError = lipgloss.NewStyle().Foreground(p.Error)
}

// SetOutput redirects every level to w. Passing nil restores the process
// streams.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	outWriter = w
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

func SetColor(f bool) {
	mu.Lock()
	defer mu.Unlock()
	colorEnabled = f
}

func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "none", "off":
		return LevelNone
	case "error", "err":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "info":
		return LevelInfo
	case "debug", "dbg":
		return LevelDebug
	case "trace", "trc":
		return LevelTrace
	default:
		return LevelInfo
	}
}

func Trace(format string, v ...any) { write(LevelTrace, "[TRACE]", styleTrace, os.Stdout, format, v) }
func Debug(format string, v ...any) { write(LevelDebug, "[DEBUG]", styleDebug, os.Stdout, format, v) }
func Info(format string, v ...any)  { write(LevelInfo, "[INFO]", styleInfo, os.Stdout, format, v) }
func Warn(format string, v ...any)  { write(LevelWarn, "[WARN]", styleWarn, os.Stderr, format, v) }
func Error(format string, v ...any) { write(LevelError, "[ERROR]", styleError, os.Stderr, format, v) }

// Fatal always prints to stderr and exits, regardless of the current log level.
func Fatal(format string, v ...any) {
	mu.Lock()
	msg := fmt.Sprintf(format, v...)
	if colorEnabled {
		msg = styleError.Render("[FATAL]") + " " + msg
	} else {
		msg = "[FATAL] " + msg
	}
	fmt.Fprintln(os.Stderr, msg)
	if outWriter != nil {
		fmt.Fprintln(outWriter, "[FATAL] "+fmt.Sprintf(format, v...))
	}
	mu.Unlock()
	os.Exit(1)
}

// write formats one line. A custom writer (the console's log ring or the
// rotating file) receives plain text so it can apply its own styling.
func write(at Level, tag string, style lipgloss.Style, std io.Writer, format string, v []any) {
	mu.Lock()
	defer mu.Unlock()
	if level < at {
		return
	}
	msg := fmt.Sprintf(format, v...)
	if outWriter != nil {
		fmt.Fprintf(outWriter, "%s %s\n", tag, msg)
		return
	}
	if colorEnabled {
		fmt.Fprintf(std, "%s %s\n", style.Render(tag), msg)
		return
	}
	fmt.Fprintf(std, "%s %s\n", tag, msg)
}
