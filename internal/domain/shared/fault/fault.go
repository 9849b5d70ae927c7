package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer. Identity lives here, not
// in the message text: presentation may localize messages freely.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindBadRequest Kind = "bad_request"
	KindConflict   Kind = "conflict"
)

// Error carries a stable machine-readable code alongside the kind.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a not-found fault.
func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Msg: msg}
}

// Forbidden builds a forbidden fault.
func Forbidden(code, msg string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Msg: msg}
}

// BadRequest builds a bad-request fault.
func BadRequest(code, msg string) *Error {
	return &Error{Kind: KindBadRequest, Code: code, Msg: msg}
}

// Conflict builds a conflict fault.
func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Msg: msg}
}

// Wrap attaches an underlying cause to an existing fault.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// KindOf extracts the fault kind from an error chain; the empty kind means
// the error is not classified and should surface as an internal failure.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// CodeOf extracts the stable code from an error chain, if any.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Is lets errors.Is match two faults by kind and code.
func (e *Error) Is(target error) bool {
	var fe *Error
	if !errors.As(target, &fe) {
		return false
	}
	return e.Kind == fe.Kind && e.Code == fe.Code
}
