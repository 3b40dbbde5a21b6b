// Package errors adds stack-trace preservation on top of github.com/pkg/errors
// for the errors this repo's Redis snapshot store and Postgres tick store
// return.
package errors

import "github.com/pkg/errors"

// ErrorTracer wraps an error with a human message while preserving (or
// attaching, if missing) a stack trace.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates a new ErrorTracer with the provided message and no
// wrapped error yet.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// TracerFromError builds an ErrorTracer whose message is err's own message,
// attaching a stack trace to err if it doesn't already carry one.
func TracerFromError(err error) *ErrorTracer {
	tracer := NewTracer(err.Error())
	tracer.Err = err
	if _, ok := err.(StackTracer); !ok {
		tracer.Err = errors.WithStack(err)
	}
	return tracer
}

// StackTracer is implemented by errors that can report their call stack —
// satisfied by anything github.com/pkg/errors has wrapped.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// Wrap attaches err as the cause, adding a stack trace if err doesn't
// already carry one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = err
	if _, ok := err.(StackTracer); !ok {
		e.Err = errors.WithStack(err)
	}
	return e
}

// StackTrace reports the wrapped error's stack trace, or nil if it has
// none.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if st, ok := e.Unwrap().(StackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
