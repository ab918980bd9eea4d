// Package debug provides conditional debug logging for arbor.
//
// Debug logging is enabled by setting the ARBOR_DEBUG environment variable:
//
//	ARBOR_DEBUG=1 arbor browse tree.json
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Usage:
//
//	import "github.com/vanderheijden86/arbor/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("flattened %d rows", len(rows))
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// enabled is true when ARBOR_DEBUG env var is set
	enabled bool
	// logger writes to stderr with the "arbor" prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("ARBOR_DEBUG") != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000000",
		Level:           log.DebugLevel,
		Prefix:          "arbor",
	})
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output, mainly for tests and for the TUI, which
// owns the terminal while it runs.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Logger returns the debug logger for structured key/value logging, or nil
// when debug logging is disabled.
func Logger() *log.Logger {
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Debugf(format, args...)
}

// With writes msg with structured key/value pairs.
func With(msg string, keyvals ...any) {
	if !enabled {
		return
	}
	logger.Debug(msg, keyvals...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Debug("timing", "op", name, "took", d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Debugf(format, args...)
}
