package subscribe

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultSuccessMessage is shown after an accepted submission.
	DefaultSuccessMessage = "Thank you for subscribing!"

	// DefaultFailureMessage is shown when a rejected submission carries no
	// usable message.
	DefaultFailureMessage = "Something went wrong. Please try again."
)

// Result is what a Submitter returns for an accepted submission.
type Result struct {
	// Message is the collaborator's confirmation text, if any.
	Message string
}

// Submitter sends a validated subscription to the outside world.
//
// A rejected submission is reported as an error. Errors that implement
// DisplayMessage() string, such as *SubmissionError, provide the text shown
// to the user; any other error is shown as the generic failure message.
// The form imposes no timeout; implementations own theirs.
type Submitter interface {
	Submit(ctx context.Context, firstName, email string) (Result, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, firstName, email string) (Result, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, firstName, email string) (Result, error) {
	return f(ctx, firstName, email)
}

// textPolicy strips all markup from collaborator text.
var textPolicy = bluemonday.StrictPolicy()

// cleanMessage reduces collaborator text to a single plain line. It returns
// "" when nothing displayable is left.
func cleanMessage(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// errorMessage extracts the display text from a submission error.
func errorMessage(err error) string {
	var dm displayMessager
	if errors.As(err, &dm) {
		return cleanMessage(dm.DisplayMessage())
	}
	return ""
}
