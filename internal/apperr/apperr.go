// Package apperr defines the error kinds shared by the HTTP modules and the
// status codes they translate to.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for translation into a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindMethodNotAllowed
	KindConfiguration
	KindUpstream
)

// Validation reasons.
const (
	ReasonMissing   = "missing"
	ReasonWrongType = "wrong_type"
	ReasonInvalid   = "invalid"
)

// Error is a classified application error.
type Error struct {
	Kind   Kind
	Field  string
	Reason string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports bad client input on a specific field.
func Validation(field, reason, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Reason: reason, Msg: msg}
}

// Auth reports a missing, invalid or expired credential, or a failed login.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Msg: msg}
}

// Configuration reports missing server configuration. Msg is logged, the
// client only ever sees a generic message.
func Configuration(msg string, err error) *Error {
	return &Error{Kind: KindConfiguration, Msg: msg, Err: err}
}

// Upstream reports a failure of the image host or a storage backend.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the JSON error body sent to the client. Only validation and
// auth messages are echoed; everything else gets fallback.
func Body(err error, fallback string) map[string]string {
	var e *Error
	if !errors.As(err, &e) {
		return map[string]string{"error": fallback}
	}
	switch e.Kind {
	case KindValidation:
		return map[string]string{"error": e.Msg, "field": e.Field, "reason": e.Reason}
	case KindAuth:
		return map[string]string{"error": e.Msg}
	case KindMethodNotAllowed:
		return map[string]string{"error": "method not allowed"}
	default:
		return map[string]string{"error": fallback}
	}
}
