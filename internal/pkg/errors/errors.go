package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller-supplied data that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated marks a request without a valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden marks a row that exists but belongs to another owner.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write rejected by a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrConfiguration marks a missing required external credential.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstreamUnavailable marks exhaustion of every upstream candidate.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstream marks an unexpected upstream failure.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidCredential marks a rejected password, code, token or API key.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrRateLimited marks an upstream quota rejection.
	ErrRateLimited = errors.New("rate limited")
)

// Error pairs a taxonomy sentinel with the message shown to the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// New returns an error matching kind under errors.Is whose text is msg.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
