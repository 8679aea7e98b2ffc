// Package apperr classifies errors the way the App routes them: as a
// status-bar message, a modal-guarded confirmation, a silently-degraded
// worker failure, or a fatal condition that unwinds to the top level.
package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind identifies which of the four error categories an error belongs to.
type Kind int

const (
	// UserRecoverable surfaces as a status-bar message; the operation
	// continues where partial progress is possible.
	UserRecoverable Kind = iota
	// ModalGuarded must route through the modal stack with a PendingAction
	// before the underlying operation executes.
	ModalGuarded
	// WorkerFailure is a background watcher/worker death; logged, the
	// feature degrades silently.
	WorkerFailure
	// Fatal propagates to the top level: restore the terminal, exit non-zero.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case UserRecoverable:
		return "user-recoverable"
	case ModalGuarded:
		return "modal-guarded"
	case WorkerFailure:
		return "worker-failure"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind and an optional context message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error. Fatal errors keep a stack trace
// (go-errors/errors) so the top-level recovery handler can log it before
// restoring the terminal.
func New(kind Kind, msg string, cause error) error {
	if kind == Fatal {
		var wrapped error = cause
		if wrapped == nil {
			wrapped = errors.New(msg)
		}
		wrapped = goerrors.Wrap(wrapped, 1)
		return &Error{Kind: kind, Msg: msg, Err: wrapped}
	}
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// UserRecoverablef builds a formatted UserRecoverable error.
func UserRecoverablef(format string, args ...any) error {
	return &Error{Kind: UserRecoverable, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to an existing error, formatting msg as context.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return New(kind, msg, err)
}

// As reports the Kind of err, defaulting to UserRecoverable for untyped errors.
func As(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return UserRecoverable
}

// StackTrace returns the go-errors stack trace string for a Fatal error, or "".
func StackTrace(err error) string {
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != Fatal {
		return ""
	}
	if ge, ok := ae.Err.(*goerrors.Error); ok {
		return ge.ErrorStack()
	}
	return ""
}
