package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/newsletter/internal/errors"
	"github.com/vango-dev/newsletter/pkg/newsletter"
	"github.com/vango-dev/newsletter/pkg/subscribe"
)

type subscribeOptions struct {
	firstName string
	email     string
	endpoint  string
	timeout   time.Duration
}

func subscribeCmd(a *app) *cobra.Command {
	var opts subscribeOptions

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Submit one subscription from the command line",
		Long: `Submit one subscription through the same form the page uses.

The fields are validated first. Invalid fields are listed and nothing
is sent. Otherwise the subscription is posted to the newsletter
endpoint and its answer is printed.

Examples:
  newsletter subscribe --first-name=John --email=john@doe.com
  newsletter subscribe --first-name=John --email=john@doe.com --endpoint=http://localhost:8080/api/newsletter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscribe(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.firstName, "first-name", "", "Subscriber first name")
	cmd.Flags().StringVar(&opts.email, "email", "", "Subscriber email address")
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "", "Newsletter endpoint URL (default from newsletter.json)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Submission timeout (default from newsletter.json)")

	return cmd
}

// errRecorder keeps the last error a Submitter returned.
type errRecorder struct {
	next subscribe.Submitter

	mu  sync.Mutex
	err error
}

func (r *errRecorder) Submit(ctx context.Context, firstName, email string) (subscribe.Result, error) {
	res, err := r.next.Submit(ctx, firstName, email)
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	return res, err
}

func (r *errRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func runSubscribe(cmd *cobra.Command, a *app, opts subscribeOptions) error {
	cfg := a.cfg
	endpoint := cfg.Endpoint
	if opts.endpoint != "" {
		endpoint = opts.endpoint
	}
	if opts.timeout < 0 {
		return errors.New("N200").WithDetailf("--timeout must be positive, got %s", opts.timeout)
	}
	timeout := cfg.TimeoutDuration()
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	submitter := &errRecorder{next: newsletter.NewClient(endpoint,
		newsletter.WithTimeout(timeout),
		newsletter.WithTracerName(cfg.Tracing.TracerName),
		newsletter.WithLogger(a.logger),
		newsletter.WithUserAgent(userAgent()),
	)}

	f := subscribe.New(submitter,
		subscribe.WithContext(cmd.Context()),
		subscribe.WithLogger(a.logger),
		subscribe.WithSuccessMessage(cfg.SuccessMessage),
		subscribe.WithFailureMessage(cfg.FailureMessage),
		subscribe.WithServerMessage(cfg.UseServerMessage),
	)
	defer f.Close()

	if err := f.OnFieldChange(subscribe.FieldFirstName, opts.firstName); err != nil {
		return err
	}
	if err := f.OnFieldChange(subscribe.FieldEmail, opts.email); err != nil {
		return err
	}

	started, err := f.OnSubmit()
	if err != nil {
		return err
	}
	if started {
		if err := f.Wait(cmd.Context()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	st := f.State()
	if !started {
		for _, field := range subscribe.DefaultSchema().Fields() {
			if msg := st.Errors.Get(field); msg != "" {
				fmt.Fprintf(out, "  %s: %s\n", field, msg)
			}
		}
		return errors.New("N300").
			WithSuggestion("Pass --first-name and a valid --email")
	}

	if st.Status.Kind == subscribe.StatusFailed {
		if isTimeout(submitter.Err()) {
			return errors.New("N302").
				Wrap(submitter.Err()).
				WithSuggestion("Raise --timeout or check that the endpoint is reachable")
		}
		return errors.New("N301").
			WithDetail(st.Status.Message).
			Wrap(submitter.Err()).
			WithSuggestion(rejectionHint(submitter.Err()))
	}

	success(out, "%s", st.Status.Message)
	return nil
}

// rejectionHint tells a client error, which needs different input, apart from
// an outage, which needs a later retry.
func rejectionHint(err error) string {
	var apiErr *newsletter.APIError
	if stderrors.As(err, &apiErr) && !apiErr.Temporary() {
		return "Check --first-name and --email and try again"
	}
	return "The endpoint is unavailable right now, try again later"
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	if stderrors.As(err, &t) && t.Timeout() {
		return true
	}
	return stderrors.Is(err, context.DeadlineExceeded)
}
