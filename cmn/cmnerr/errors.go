// Package cmnerr implements the provider-compatible error taxonomy from
// spec §4.8 / §7: every validator and service method returns one of these
// kinds, and the HTTP edge (package wire) maps it to the JSON envelope.
package cmnerr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is one of the taxonomy members from spec §7.
type Kind string

const (
	Invalid         Kind = "invalid"
	NotFound        Kind = "notFound"
	Conflict        Kind = "conflict"
	ConditionNotMet Kind = "conditionNotMet"
	Internal        Kind = "internalError"
	Unsupported     Kind = "unsupported"
)

// httpCode is the inverse of spec §4.8's reason mapping.
var httpCode = map[Kind]int{
	Invalid:         http.StatusBadRequest,
	NotFound:        http.StatusNotFound,
	Conflict:        http.StatusConflict,
	ConditionNotMet: http.StatusPreconditionFailed,
	Internal:        http.StatusInternalServerError,
	Unsupported:     http.StatusNotImplemented,
}

// Error is the typed error every cloudcore package raises. Wrap an
// underlying error with Wrap to keep its message while fixing the kind.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Code returns the HTTP status code spec §4.8 maps this kind to.
func (e *Error) Code() int {
	if c, ok := httpCode[e.Kind]; ok {
		return c
	}
	return http.StatusInternalServerError
}

// Reason is the provider's lower-camel-case reason string, e.g. "notFound".
func (e *Error) Reason() string { return string(e.Kind) }

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap preserves cause (retrievable via errors.Unwrap/errors.Cause) while
// presenting a stable taxonomy member and message at the HTTP edge.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return New(NotFound, format, args...)
}

func Invalidf(format string, args ...interface{}) *Error {
	return New(Invalid, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return New(Conflict, format, args...)
}

func ConditionNotMetf(format string, args ...interface{}) *Error {
	return New(ConditionNotMet, format, args...)
}

func Internalf(cause error, format string, args ...interface{}) *Error {
	return Wrap(Internal, cause, format, args...)
}

func Unsupportedf(format string, args ...interface{}) *Error {
	return New(Unsupported, format, args...)
}

// As reports whether err (or something it wraps) is a *Error, the way
// cmnerr.Error is always checked at the HTTP edge before falling back to
// a generic internalError.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
