package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoAPIKey is returned when the client has no API key.
var ErrNoAPIKey = errors.New("gemini: API key not configured")

// HTTPError represents a non-200 HTTP response from the Gemini API.
type HTTPError struct {
	StatusCode int
	Status     string // API status, e.g. "RESOURCE_EXHAUSTED"
	Message    string
}

func newHTTPError(code int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: code, Message: string(body)}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		e.Message = envelope.Error.Message
		e.Status = envelope.Error.Status
	}
	return e
}

func (e *HTTPError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: HTTP %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if the status indicates quota exhaustion (429).
func (e *HTTPError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRetryable returns true for rate limits (429) and server errors (5xx).
func (e *HTTPError) IsRetryable() bool {
	return e.IsRateLimited() || e.StatusCode >= 500
}

// IsAuth returns true if the API key was rejected.
func (e *HTTPError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden ||
		(e.StatusCode == http.StatusBadRequest && e.Status == "INVALID_ARGUMENT" && strings.Contains(e.Message, "API key"))
}

// BlockedError indicates the model returned no usable content.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("gemini: no content returned (%s)", e.Reason)
}
