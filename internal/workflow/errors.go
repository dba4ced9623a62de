package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies a failed command so callers can map it to a response.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindValidation         Kind = "validation"
	KindPreconditionFailed Kind = "precondition_failed"
	KindPersistence        Kind = "persistence"
	KindPayment            Kind = "payment"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
	ErrPersistence        = &Error{Kind: KindPersistence}
	ErrPayment            = &Error{Kind: KindPayment}
)

// Error is the typed failure returned by every engine command.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Msg != "" {
		msg = e.Msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, so errors.Is(err, ErrForbidden) holds for any forbidden error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) ErrorKind() string { return string(e.Kind) }

func newError(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func forbidden(op, format string, args ...any) error {
	return newError(KindForbidden, op, format, args...)
}

func invalid(op, format string, args ...any) error {
	return newError(KindValidation, op, format, args...)
}

func precondition(op, format string, args ...any) error {
	return newError(KindPreconditionFailed, op, format, args...)
}

// wrapStore turns a store failure into a typed error. Errors the store already
// classified (not found, stale version) keep their kind.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var we *Error
	if errors.As(err, &we) {
		return &Error{Kind: we.Kind, Op: op, Msg: we.Msg, Err: we.Err}
	}
	return &Error{Kind: KindPersistence, Op: op, Msg: "store write failed", Err: err}
}

// KindOf reports the kind of err, or "" when err is not a workflow error.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// NotFoundf builds the not-found error stores and catalogs return.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// StaleVersionError builds the error a ProjectStore returns when an expected
// version no longer matches.
func StaleVersionError(id fmt.Stringer, expected int64) error {
	return &Error{Kind: KindPreconditionFailed, Msg: fmt.Sprintf("project %s changed since version %d", id, expected)}
}
