package llmbackend

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned when a request is attempted with no API key
// configured.
var ErrNoAPIKey = errors.New("llmbackend: API key required")

// APIError represents an error response from the chat-completions API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("llmbackend: API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the request should be retried: rate
// limited or a server-side failure.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode < 600)
}
