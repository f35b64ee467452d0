package subscribe

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a form that has been closed.
var ErrClosed = errors.New("subscribe: form closed")

// SubmissionError is the error a Submitter returns to show a specific message
// to the user.
type SubmissionError struct {
	Message string
	Err     error
}

// Error returns the error message.
func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("subscribe: submission rejected: %s: %v", e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("subscribe: submission rejected: %v", e.Err)
	default:
		return "subscribe: submission rejected: " + e.Message
	}
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// DisplayMessage returns the text shown in the status line.
func (e *SubmissionError) DisplayMessage() string {
	return e.Message
}

// displayMessager is implemented by errors that carry user-facing text.
type displayMessager interface {
	DisplayMessage() string
}
