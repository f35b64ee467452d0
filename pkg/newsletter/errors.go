package newsletter

import (
	"errors"
	"fmt"
)

// ErrNoEndpoint is returned by Submit when the client has no endpoint.
var ErrNoEndpoint = errors.New("newsletter: no endpoint configured")

// APIError is returned when the endpoint rejects a submission.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("newsletter: status %d", e.StatusCode)
	}
	return fmt.Sprintf("newsletter: status %d: %s", e.StatusCode, e.Message)
}

// DisplayMessage returns the endpoint's explanation, shown to the user.
func (e *APIError) DisplayMessage() string {
	return e.Message
}

// Temporary reports whether retrying later might succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
