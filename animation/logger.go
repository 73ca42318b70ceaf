// ABOUTME: Logger port injected into every component instead of a process-wide logger.
// ABOUTME: *log.Logger satisfies it; a nil port falls back to a discarding logger.
package animation

import (
	"io"
	"log"
)

// Logger is the logging port. *log.Logger implements it.
type Logger interface {
	Printf(format string, v ...any)
}

// DiscardLogger returns a Logger that drops everything.
func DiscardLogger() Logger {
	return log.New(io.Discard, "", 0)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return DiscardLogger()
	}
	return l
}
