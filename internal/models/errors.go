package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the request boundary can translate it to an
// HTTP status and a machine-readable body.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation_error"
	KindAuthentication Kind = "authentication_error"
	KindUpstream       Kind = "upstream_error"
	KindInternal       Kind = "internal_error"
)

var (
	ErrUnauthenticated = &Error{Kind: KindAuthentication, Message: "not authenticated"}
	ErrMissingToken    = &Error{Kind: KindAuthentication, Message: "missing GitHub token: provide 'Authorization: Bearer <token>', log in via OAuth, or set GITHUB_TOKEN"}
)

// Error is a classified error. Status overrides the kind's default HTTP
// status when non-zero (used to relay upstream status codes verbatim).
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authf(format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

// Upstreamf reports a failure of an external dependency. status may be 0 to
// use the default 502.
func Upstreamf(status int, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Message: fmt.Sprintf(format, args...), Status: status}
}

func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the handler should write.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"error"`
}

type RateLimitError struct {
	Error     string        `json:"error"`
	RateLimit RateLimitInfo `json:"rateLimit"`
}

type RateLimitInfo struct {
	Limit      int    `json:"limit"`
	Used       int    `json:"used"`
	ResetAt    int64  `json:"resetAt"`    // Unix timestamp in seconds
	ResetAtISO string `json:"resetAtISO"` // ISO 8601 format
}
