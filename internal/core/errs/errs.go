// Package errs defines the failure taxonomy every bot failure must resolve to.
//
// Application errors are transient: the work item being processed can be
// retried. Business errors are permanent: the underlying input data needs
// human correction, and the item must not be retried. Anything else is an
// unexpected failure and is contained by the execution guard before it can
// reach the work-item queue.
package errs

import "fmt"

// Kind classifies an automation failure.
type Kind string

const (
	// Application marks a transient failure, e.g. a downstream system
	// being temporarily unavailable.
	Application Kind = "application"
	// Business marks a permanent failure requiring human correction of
	// the input data.
	Business Kind = "business"
)

// AutomationError is the common supertype of all classified bot failures.
// Call sites that only care about "any classified failure" match on it with
// errors.As; the Kind field distinguishes application from business errors.
type AutomationError struct {
	Kind Kind

	// Code is a short machine-readable identifier, set only on business
	// errors that should be picked up by the reporter.
	Code string

	Message string
}

func (e *AutomationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error [%s]: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Retryable reports whether the work item may be retried after this failure.
func (e *AutomationError) Retryable() bool {
	return e.Kind == Application
}

// NewApplication creates a transient failure.
func NewApplication(format string, args ...any) *AutomationError {
	return &AutomationError{Kind: Application, Message: fmt.Sprintf(format, args...)}
}

// NewBusiness creates a permanent failure without a reporter code. It is not
// interceptable by the reporter attachment and propagates as a hard failure.
func NewBusiness(format string, args ...any) *AutomationError {
	return &AutomationError{Kind: Business, Message: fmt.Sprintf(format, args...)}
}

// NewBusinessCode creates a permanent, reportable failure. The code is looked
// up in the reporter's message table when the report is rendered.
func NewBusinessCode(code, format string, args ...any) *AutomationError {
	return &AutomationError{Kind: Business, Code: code, Message: fmt.Sprintf(format, args...)}
}
