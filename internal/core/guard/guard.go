// Package guard wraps a role's unit of work with the failure-classification
// pipeline: classified failures pass through untouched, everything else is
// contained and converted into a transport-safe signal.
package guard

import (
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/openrpa/botkit/internal/core/errs"
)

// MessageLimit is the maximum failure message length accepted by the queue
// and report transports.
const MessageLimit = 1000

// UnitOfWork is a role's run entry point.
type UnitOfWork func() error

// ContainedError is an unexpected failure after normalization: its message
// is bounded by MessageLimit and the original cause has already been logged.
// It is deliberately not an AutomationError, so callers distinguishing
// classified from unknown failures treat it as unknown; the orchestrator
// still retries it, since its transience is unknown and dropping work
// silently is worse than retrying.
type ContainedError struct {
	Message string
}

func (e *ContainedError) Error() string {
	return e.Message
}

// Run enforces the failure taxonomy on fn. AutomationErrors and already
// contained failures pass through unchanged, so applying Run twice behaves
// like applying it once. Any other failure is logged in full and replaced by
// a ContainedError with a truncated message. Run never swallows a failure:
// every call either returns nil or an error.
func Run(fn UnitOfWork) UnitOfWork {
	return func() error {
		err := fn()
		if err == nil {
			return nil
		}

		var ae *errs.AutomationError
		if errors.As(err, &ae) {
			return err
		}
		var ce *ContainedError
		if errors.As(err, &ce) {
			return err
		}

		// Full message goes to the log only; the queue transport
		// rejects messages beyond MessageLimit.
		slog.Warn("unexpected error during automation", "error", err)
		return &ContainedError{Message: Truncate(err.Error(), MessageLimit)}
	}
}

// Truncate bounds s to at most limit bytes, backing off to the previous
// rune boundary so the result stays valid UTF-8. It never fails; a
// non-positive limit yields the empty string.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
