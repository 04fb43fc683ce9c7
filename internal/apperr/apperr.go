// Package apperr defines the error taxonomy shared by the request handlers
// and the HTTP error boundary.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Msg: msg} }
func Auth(msg string) *Error       { return &Error{Kind: KindAuth, Msg: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Msg: msg} }

func Internal(err error) *Error { return &Error{Kind: KindInternal, Err: err} }

// Status maps an error to its HTTP status. Duplicate-field conflicts map to
// 400 to match the documented contract, not 409.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
