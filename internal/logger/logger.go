// Package logger is the reqsync console logger.
//
// Errors always reach the output. Everything else is printed only once
// --verbose raised the threshold, which keeps normal runs quiet while
// letting a user follow every stage of a reconciliation.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log messages by severity.
type Level int

// Levels, from most to least severe.
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

type state struct {
	mu        sync.Mutex
	threshold Level
	out       io.Writer
	now       func() time.Time
}

var std = &state{threshold: LevelError, out: os.Stderr, now: time.Now}

// SetVerbose switches between errors only and everything.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelError)
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// SetLevel sets the least severe level that is still printed.
func SetLevel(l Level) {
	std.mu.Lock()
	std.threshold = l
	std.mu.Unlock()
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	std.mu.Lock()
	defer std.mu.Unlock()
	return l <= std.threshold
}

// SetOutput redirects all messages, mostly for tests. Nil restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	std.mu.Lock()
	std.out = w
	std.mu.Unlock()
}

func logf(l Level, format string, args ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if l > std.threshold {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(std.out, "[%s] %s\n", l, msg)
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }

// Error is printed whatever the level.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Stage prints a header for a named run stage and returns a func that
// reports how long the stage took. Both are info messages.
//
//	done := logger.Stage("generate")
//	defer done()
func Stage(name string) func() {
	if !Enabled(LevelInfo) {
		return func() {}
	}
	std.mu.Lock()
	start := std.now()
	fmt.Fprintf(std.out, "\n=== %s ===\n", name)
	std.mu.Unlock()

	return func() {
		std.mu.Lock()
		elapsed := std.now().Sub(start)
		std.mu.Unlock()
		Info("%s took %s", name, elapsed.Round(time.Millisecond))
	}
}
