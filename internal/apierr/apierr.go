// Package apierr defines the typed error taxonomy shared by the data
// acquisition clients. Callers dispatch on Kind via errors.As instead of
// matching error strings.
package apierr

import (
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindNetwork       Kind = "network"
	KindRateLimit     Kind = "rate_limit"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindParsing       Kind = "parsing"
	KindConfiguration Kind = "configuration"
	// KindAPI covers upstream failures that fit no more specific kind,
	// e.g. a non-retryable 4xx status.
	KindAPI Kind = "api"
)

// Error carries the failure kind plus whatever the transport observed on
// the way to it, so callers can log attempt counts and latency without
// the client deciding how.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Attempts   int
	Elapsed    time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a message cause.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from any error in the chain, or "" if the
// chain holds no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
