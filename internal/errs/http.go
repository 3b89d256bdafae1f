package errs

import (
	"errors"
	"net/http"
	"strings"
)

// HTTPError is the API-facing error shape. It is the only error type the REST
// layer serializes; internal causes stay attached for server-side logging but
// are never part of the client payload.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`

	cause error
}

// Error makes *HTTPError satisfy the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause chain to errors.As/Is without exposing it
// to clients.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// NewNotFoundError creates a 404 HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)),
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewBadRequestError creates a 400 HTTPError.
func NewBadRequestError(message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest)),
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewServiceUnavailableError creates a 503 HTTPError. Used when the upstream
// API, the store, or the cache cannot be reached.
func NewServiceUnavailableError(message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusServiceUnavailable)),
		Message: message,
		Status:  http.StatusServiceUnavailable,
	}
}

// NewInternalServerError creates a 500 HTTPError. The client message is the
// generic status text; the real failure stays server-side.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
	}
}

// ServiceToHTTP is the final translation hop: it maps a service-layer failure
// onto an API error with the matching HTTP status.
//
// Status mapping (walking the whole cause chain, not just the outer envelope):
//   - not-found                  -> 404
//   - validation / constraint    -> 400
//   - integration / connection   -> 503
//   - everything else            -> 500 (message sanitized)
//
// The incoming error is retained as the HTTPError's cause so the global error
// handler can log the full chain.
func ServiceToHTTP(err error) *HTTPError {
	if err == nil {
		return nil
	}

	// Already at the API layer; pass through untouched.
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	_, message := kindAndMessage(err, KindOperation)

	var out *HTTPError
	switch {
	case HasKind(err, KindNotFound):
		out = NewNotFoundError(message)
	case HasKind(err, KindValidation), HasKind(err, KindConstraint):
		out = NewBadRequestError(message)
	case HasKind(err, KindIntegration), HasKind(err, KindConnection):
		out = NewServiceUnavailableError(message)
	default:
		out = NewInternalServerError()
	}
	out.cause = err
	return out
}

// MakeUpperCaseWithUnderscores converts a string into
// UPPER_CASE_WITH_UNDERSCORES format, e.g. "Bad Request" -> "BAD_REQUEST".
// Used to derive stable machine-readable codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
