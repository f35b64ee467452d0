package subscribe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/newsletter/pkg/form"
	"github.com/vango-dev/newsletter/pkg/loop"
	"github.com/vango-dev/newsletter/pkg/reactive"
	"github.com/vango-dev/newsletter/pkg/vdom"
)

// Form is one mounted subscription form. Create it with New and release it
// with Close.
type Form struct {
	id        string
	submitter Submitter
	schema    *form.Schema
	logger    *slog.Logger
	recorder  Recorder
	ctx       context.Context

	successMessage   string
	failureMessage   string
	useServerMessage bool

	loop   *loop.Loop
	owner  *reactive.Owner
	values *reactive.Signal[Values]
	errors *reactive.Signal[form.Errors]
	status *reactive.Signal[Status]

	// settled is closed when the current submission's result has been
	// applied. Guarded by settledMu; replaced on every accepted submit.
	settled   chan struct{}
	settledMu sync.Mutex
}

// New mounts a form with empty fields and an Idle status. It panics if
// submitter is nil.
func New(submitter Submitter, opts ...Option) *Form {
	if submitter == nil {
		panic("subscribe: nil Submitter")
	}

	f := &Form{
		id:             uuid.NewString(),
		submitter:      submitter,
		schema:         DefaultSchema(),
		logger:         slog.Default(),
		recorder:       nopRecorder{},
		ctx:            context.Background(),
		successMessage: DefaultSuccessMessage,
		failureMessage: DefaultFailureMessage,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "subscribe", "form_id", f.id)

	f.owner = reactive.NewOwner()
	f.values = reactive.NewSignal(f.owner, Values{})
	f.errors = reactive.NewSignal(f.owner, form.Errors{})
	f.status = reactive.NewSignal(f.owner, Idle())
	f.loop = loop.New(loop.WithLogger(f.logger))

	f.settled = make(chan struct{})
	close(f.settled)

	return f
}

// ID returns the form instance id.
func (f *Form) ID() string {
	return f.id
}

// OnFieldChange sets field to value, clears that field's validation error
// and dismisses a success or failure message. Unknown fields are ignored.
func (f *Form) OnFieldChange(field Field, value string) error {
	if !field.Valid() {
		f.logger.Debug("ignoring change to unknown field", "field", string(field))
		return nil
	}
	return f.do(func() {
		f.owner.Batch(func() {
			f.values.Update(func(v Values) Values { return v.With(field, value) })
			f.errors.Update(func(errs form.Errors) form.Errors {
				if !errs.Has(string(field)) {
					return errs
				}
				return errs.Without(string(field))
			})
			if kind := f.status.Get().Kind; kind == StatusFailed || kind == StatusSucceeded {
				f.status.Set(Idle())
			}
		})
	})
}

// OnSubmit validates the fields and, when they pass, hands them to the
// Submitter. It reports whether a submission was started. While a submission
// is pending OnSubmit changes nothing and returns false.
func (f *Form) OnSubmit() (bool, error) {
	var started bool
	err := f.do(func() {
		started = f.submit()
	})
	return started, err
}

// submit runs on the loop.
func (f *Form) submit() bool {
	if f.status.Get().Kind == StatusPending {
		f.recorder.DuplicateDropped()
		f.logger.Debug("submit ignored, submission pending")
		return false
	}

	values := f.values.Get()
	errs := f.schema.Validate(values.Map())
	if len(errs) > 0 {
		for _, field := range Fields {
			if errs.Has(string(field)) {
				f.recorder.ValidationFailed(field)
			}
		}
		f.logger.Debug("submit rejected by validation", "fields", len(errs))
		f.owner.Batch(func() {
			f.errors.Set(errs)
			f.status.Set(Idle())
		})
		return false
	}

	settled := make(chan struct{})
	f.settledMu.Lock()
	f.settled = settled
	f.settledMu.Unlock()

	f.owner.Batch(func() {
		f.errors.Set(form.Errors{})
		f.status.Set(Pending())
	})

	f.recorder.SubmitStarted()
	f.logger.Info("submission started")
	go f.run(values, settled)
	return true
}

// run calls the Submitter off the loop and dispatches the result back.
func (f *Form) run(values Values, settled chan struct{}) {
	start := time.Now()
	res, err := f.call(values)
	elapsed := time.Since(start)

	f.loop.Dispatch(func() {
		f.complete(res, err, elapsed)
		close(settled)
	})
}

// call invokes the Submitter, turning a panic into an error so the form stays
// usable.
func (f *Form) call(values Values) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscribe: submitter panic: %v", r)
		}
	}()
	return f.submitter.Submit(f.ctx, values.FirstName, values.Email)
}

// complete applies a submission result. It runs on the loop.
func (f *Form) complete(res Result, err error, elapsed time.Duration) {
	var next Status
	if err != nil {
		msg := errorMessage(err)
		if msg == "" {
			msg = f.failureMessage
		}
		next = Failed(msg)
		f.recorder.SubmitFinished(OutcomeFailure, elapsed)
		f.logger.Warn("submission failed", "error", err, "elapsed", elapsed)
	} else {
		msg := f.successMessage
		if f.useServerMessage {
			if server := cleanMessage(res.Message); server != "" {
				msg = server
			}
		}
		next = Succeeded(msg)
		f.recorder.SubmitFinished(OutcomeSuccess, elapsed)
		f.logger.Info("submission succeeded", "elapsed", elapsed)
	}

	f.owner.Batch(func() {
		f.status.Set(next)
	})
}

// Wait blocks until no submission is in flight and its result has been
// applied, or ctx is done.
func (f *Form) Wait(ctx context.Context) error {
	f.settledMu.Lock()
	settled := f.settled
	f.settledMu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-f.loop.Done():
		return ErrClosed
	}
}

// State returns a consistent snapshot of the form. After Close it returns
// the last state.
func (f *Form) State() State {
	var s State
	if err := f.do(func() { s = f.snapshot() }); err != nil {
		return f.snapshot()
	}
	return s
}

// Render returns the form markup for the current state.
func (f *Form) Render() *vdom.VNode {
	return Render(f.State())
}

// Subscribe calls fn with a fresh State after every change, once per
// change batch. fn runs on the form's loop and must not call blocking Form
// methods. The returned function removes the subscription.
func (f *Form) Subscribe(fn func(State)) func() {
	l := reactive.ListenerFunc(func() {
		fn(f.snapshot())
	})
	unsubs := []func(){
		f.values.Subscribe(l),
		f.errors.Subscribe(l),
		f.status.Subscribe(l),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Close unmounts the form. A submission still in flight runs to completion
// but its result is discarded. Close is safe to call more than once.
func (f *Form) Close() {
	f.loop.Close()
	f.owner.Dispose()
}

func (f *Form) snapshot() State {
	return State{
		Values: f.values.Get(),
		Errors: f.errors.Get().Clone(),
		Status: f.status.Get(),
	}
}

func (f *Form) do(fn func()) error {
	if err := f.loop.Do(fn); err != nil {
		return ErrClosed
	}
	return nil
}
