package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned when a call needs a bearer token and the
// session has none.
var ErrNotAuthenticated = errors.New("not authenticated, please log in again")

// Error is a typed failure for non-2xx responses, carrying the HTTP status
// and a best-effort message extracted from the body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, http.StatusText(e.Status))
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsForbidden reports whether err is a 403 from the backend.
func IsForbidden(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}

// newHTTPError builds an Error from a response body, pulling the backend's
// message field when the body is JSON. A 403 gets a role-staleness hint
// since stale role claims in an old token are the usual cause.
func newHTTPError(status int, body []byte) *Error {
	msg := extractMessage(body)
	if status == http.StatusForbidden {
		if msg == "" {
			msg = "access forbidden, you do not have permission for this resource"
		}
		msg += " (if your role changed recently, log out and log back in)"
	}
	return &Error{Status: status, Message: msg}
}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
