package subscribe

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/newsletter/pkg/form"
)

// Recorder receives submission telemetry. See pkg/metrics for a Prometheus
// implementation.
type Recorder interface {
	// SubmitStarted is called when a valid submission is handed to the
	// Submitter.
	SubmitStarted()

	// SubmitFinished is called when the Submitter returns.
	SubmitFinished(outcome Outcome, elapsed time.Duration)

	// ValidationFailed is called once per invalid field on a submit attempt.
	ValidationFailed(field Field)

	// DuplicateDropped is called when OnSubmit is ignored because a
	// submission is already pending.
	DuplicateDropped()
}

// Outcome classifies a finished submission.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type nopRecorder struct{}

func (nopRecorder) SubmitStarted()                       {}
func (nopRecorder) SubmitFinished(Outcome, time.Duration) {}
func (nopRecorder) ValidationFailed(Field)               {}
func (nopRecorder) DuplicateDropped()                    {}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the form's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Form) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithSuccessMessage overrides the confirmation text.
func WithSuccessMessage(msg string) Option {
	return func(f *Form) {
		if msg != "" {
			f.successMessage = msg
		}
	}
}

// WithFailureMessage overrides the generic failure text.
func WithFailureMessage(msg string) Option {
	return func(f *Form) {
		if msg != "" {
			f.failureMessage = msg
		}
	}
}

// WithServerMessage shows the Submitter's confirmation text, when it returns
// one, instead of the configured success message.
func WithServerMessage(enabled bool) Option {
	return func(f *Form) {
		f.useServerMessage = enabled
	}
}

// WithContext sets the parent context passed to the Submitter. Values such as
// trace spans propagate; the form never cancels it.
func WithContext(ctx context.Context) Option {
	return func(f *Form) {
		if ctx != nil {
			f.ctx = ctx
		}
	}
}

// WithID sets the form instance id used in logs.
func WithID(id string) Option {
	return func(f *Form) {
		if id != "" {
			f.id = id
		}
	}
}

// Input bounds, in characters. 254 is the longest address SMTP accepts.
const (
	MaxFirstNameLength = 100
	MaxEmailLength     = 254
)

// DefaultSchema returns the built-in validation rules.
func DefaultSchema() *form.Schema {
	return form.NewSchema(
		form.Field(string(FieldFirstName),
			form.Required("First name is required"),
			form.MaxLength(MaxFirstNameLength, "First name is too long"),
		),
		form.Field(string(FieldEmail),
			form.Required("Email is required"),
			form.MaxLength(MaxEmailLength, "Email is too long"),
			form.Email("Email is invalid"),
		),
	)
}
