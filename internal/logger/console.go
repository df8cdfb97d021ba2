// Package logger provides the leveled console logger used by nexbench.
//
// All output goes to a single writer (normally os.Stderr) so that the
// benchmark's timing lines on stdout stay machine readable.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes leveled messages prefixed with [HH:MM:SS] timestamps.
// It is safe for concurrent use. Color output is enabled only when the
// writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	now         func() time.Time
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
		now:         time.Now,
	}
}

// isTerminal reports whether w is a file attached to a TTY. NO_COLOR (via
// color.NoColor) turns color off regardless.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}
	return !color.NoColor
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// ValidLevel reports whether level names one of the known log levels.
func ValidLevel(level string) bool {
	return normalizeLogLevel(level) == strings.ToLower(strings.TrimSpace(level))
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Tracef, Debugf, Infof, Warnf and Errorf log a formatted message at their
// level.
func (cl *ConsoleLogger) Tracef(format string, v ...interface{}) {
	cl.logWithLevel("TRACE", fmt.Sprintf(format, v...))
}

func (cl *ConsoleLogger) Debugf(format string, v ...interface{}) {
	cl.logWithLevel("DEBUG", fmt.Sprintf(format, v...))
}

func (cl *ConsoleLogger) Infof(format string, v ...interface{}) {
	cl.logWithLevel("INFO", fmt.Sprintf(format, v...))
}

func (cl *ConsoleLogger) Warnf(format string, v ...interface{}) {
	cl.logWithLevel("WARN", fmt.Sprintf(format, v...))
}

func (cl *ConsoleLogger) Errorf(format string, v ...interface{}) {
	cl.logWithLevel("ERROR", fmt.Sprintf(format, v...))
}

// LogParserStart logs, at DEBUG level, that a parser is about to be timed.
// Format: "[HH:MM:SS] [DEBUG] Timing <parser>: <n> parses of <path>"
func (cl *ConsoleLogger) LogParserStart(parser, path string, iterations int) {
	cl.logWithLevel("DEBUG",
		fmt.Sprintf("Timing %s: %d parses of %s", cl.bold(parser), iterations, path))
}

// LogParserDone logs, at INFO level, the time a parser took. The average
// per parse is included since that is usually what one compares.
// Format: "[HH:MM:SS] [INFO] <parser> done in <elapsed> (<avg>/parse)"
func (cl *ConsoleLogger) LogParserDone(parser string, iterations int, elapsed time.Duration) {
	avg := time.Duration(0)
	if iterations > 0 {
		avg = elapsed / time.Duration(iterations)
	}
	cl.logWithLevel("INFO",
		fmt.Sprintf("%s done in %s (%s/parse)", cl.bold(parser), round(elapsed), round(avg)))
}

func (cl *ConsoleLogger) bold(s string) string {
	if !cl.colorOutput {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}

func round(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Microsecond)
	}
	return d
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := cl.now().Format("15:04:05")
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.writer.Write([]byte(formatted))
}

func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	}
	return level
}
