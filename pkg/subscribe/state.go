package subscribe

import "github.com/vango-dev/newsletter/pkg/form"

// Field identifies one of the form's inputs.
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldEmail     Field = "email"
)

// Fields lists the inputs in display order.
var Fields = []Field{FieldFirstName, FieldEmail}

// Valid reports whether f names a known input.
func (f Field) Valid() bool {
	return f == FieldFirstName || f == FieldEmail
}

// Values holds the current input values.
type Values struct {
	FirstName string
	Email     string
}

// Get returns the value of field.
func (v Values) Get(field Field) string {
	switch field {
	case FieldFirstName:
		return v.FirstName
	case FieldEmail:
		return v.Email
	default:
		return ""
	}
}

// With returns a copy of v with field set to value.
func (v Values) With(field Field, value string) Values {
	switch field {
	case FieldFirstName:
		v.FirstName = value
	case FieldEmail:
		v.Email = value
	}
	return v
}

// Map returns the values keyed by field name, the shape validators expect.
func (v Values) Map() map[string]string {
	return map[string]string{
		string(FieldFirstName): v.FirstName,
		string(FieldEmail):     v.Email,
	}
}

// StatusKind is the submission lifecycle state.
type StatusKind int

const (
	// StatusIdle is the initial state and the state after any edit.
	StatusIdle StatusKind = iota

	// StatusPending means a submission is in flight.
	StatusPending

	// StatusSucceeded means the last submission was accepted.
	StatusSucceeded

	// StatusFailed means the last submission was rejected.
	StatusFailed
)

// String returns a human-readable name for the status.
func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the current submission status and the text shown for it.
type Status struct {
	Kind    StatusKind
	Message string
}

// Idle returns the idle status.
func Idle() Status { return Status{Kind: StatusIdle} }

// Pending returns the pending status.
func Pending() Status { return Status{Kind: StatusPending} }

// Succeeded returns a success status showing message.
func Succeeded(message string) Status { return Status{Kind: StatusSucceeded, Message: message} }

// Failed returns a failure status showing message.
func Failed(message string) Status { return Status{Kind: StatusFailed, Message: message} }

// Text returns the status line, empty unless the status is Succeeded or
// Failed.
func (s Status) Text() string {
	if s.Kind == StatusSucceeded || s.Kind == StatusFailed {
		return s.Message
	}
	return ""
}

// State is a consistent snapshot of a form.
type State struct {
	Values Values
	Errors form.Errors
	Status Status
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return s.Status.Kind != StatusPending
}

// Error returns the validation message for field, or "".
func (s State) Error(field Field) string {
	return s.Errors.Get(string(field))
}
