package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-booking-client/internal/errors"
)

// ErrNotFound matches any *HTTPError with status 404.
var ErrNotFound = apperrors.ErrNotFound

// GenericErrorMessage is shown when the server gave no message of its own.
const GenericErrorMessage = "Something went wrong. Please try again."

// NetworkError is a transport-level failure. Timeout is set when the request
// ran out of time, whether through the executor timeout or the caller's deadline.
type NetworkError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network error: %s: timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a response with status >= 400.
type HTTPError struct {
	StatusCode int
	Body       []byte
	// ServerMessage is the "message" field of a JSON error body, if any.
	ServerMessage string
}

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status, Body: body}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.ServerMessage = strings.TrimSpace(payload.Message)
	}
	return e
}

func (e *HTTPError) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.ServerMessage)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is matches ErrNotFound for 404 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Message returns the server-provided message, or GenericErrorMessage.
func (e *HTTPError) Message() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	return GenericErrorMessage
}

// AuthError means the request required a token and none was available.
// It is returned before anything is sent.
type AuthError struct {
	Method string
	Path   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth required for %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("auth required for %s %s: no token", e.Method, e.Path)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrInvalidRequest matches every *ValidationError.
var ErrInvalidRequest = apperrors.ErrInvalidRequest

// ValidationError rejects input before a request is built.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

// Invalid returns a *ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UserMessage returns text suitable for showing to a user for any error
// returned by the executor.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Msg
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return "Please sign in to continue."
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout {
			return "The server took too long to respond."
		}
		return "Unable to reach the server."
	}
	return GenericErrorMessage
}
