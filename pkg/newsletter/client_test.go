package newsletter_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/newsletter/pkg/newsletter"
	"github.com/vango-dev/newsletter/pkg/newsletter/newslettertest"
	"github.com/vango-dev/newsletter/pkg/subscribe"
	"github.com/vango-dev/newsletter/pkg/vtest"
)

func TestClient_Success(t *testing.T) {
	srv := newslettertest.NewServer(t)
	client := newsletter.NewClient(srv.URL())

	res, err := client.Submit(context.Background(), "John", "john@doe.com")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Message != newslettertest.SuccessMessage {
		t.Errorf("message = %q", res.Message)
	}

	want := []newsletter.Request{{FirstName: "John", Email: "john@doe.com"}}
	if diff := cmp.Diff(want, srv.Requests()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.Handler
		status  int
		message string
	}{
		{"error field", newslettertest.Fail(http.StatusInternalServerError, "Something went wrong"), 500, "Something went wrong"},
		{"message field", newslettertest.Reply(http.StatusConflict, newsletter.Response{Message: "Already subscribed"}), 409, "Already subscribed"},
		{"empty body", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}), 502, ""},
		{"not json", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("<h1>down</h1>"))
		}), 503, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newslettertest.NewServer(t)
			srv.Use(tt.handler)
			client := newsletter.NewClient(srv.URL())

			_, err := client.Submit(context.Background(), "John", "john@doe.com")

			var apiErr *newsletter.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.DisplayMessage() != tt.message {
				t.Errorf("message = %q, want %q", apiErr.DisplayMessage(), tt.message)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := newslettertest.NewServer(t)
	srv.Hold()
	client := newsletter.NewClient(srv.URL(), newsletter.WithTimeout(50*time.Millisecond))

	_, err := client.Submit(context.Background(), "John", "john@doe.com")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var apiErr *newsletter.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("timeout should not be an APIError: %v", err)
	}
}

func TestClient_NoEndpoint(t *testing.T) {
	client := newsletter.NewClient("")
	if _, err := client.Submit(context.Background(), "John", "john@doe.com"); !errors.Is(err, newsletter.ErrNoEndpoint) {
		t.Errorf("err = %v, want ErrNoEndpoint", err)
	}
}

func TestClient_TracerProvider(t *testing.T) {
	srv := newslettertest.NewServer(t)
	client := newsletter.NewClient(srv.URL(),
		newsletter.WithTracerProvider(noop.NewTracerProvider()),
		newsletter.WithUserAgent("test-agent"),
	)

	if _, err := client.Submit(context.Background(), "John", "john@doe.com"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	err := &newsletter.APIError{StatusCode: 500, Message: "boom"}
	if got := err.Error(); got != "newsletter: status 500: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !err.Temporary() {
		t.Error("5xx should be temporary")
	}
	if (&newsletter.APIError{StatusCode: 400}).Temporary() {
		t.Error("4xx should not be temporary")
	}
	if got := (&newsletter.APIError{StatusCode: 404}).Error(); got != "newsletter: status 404" {
		t.Errorf("Error() = %q", got)
	}
}

func submitForm(t *testing.T, f *subscribe.Form, firstName, email string) {
	t.Helper()
	_ = f.OnFieldChange(subscribe.FieldFirstName, firstName)
	_ = f.OnFieldChange(subscribe.FieldEmail, email)
	if started, err := f.OnSubmit(); err != nil || !started {
		t.Fatalf("OnSubmit = %v, %v", started, err)
	}
}

func TestForm_WithClient(t *testing.T) {
	srv := newslettertest.NewServer(t)
	f := subscribe.New(newsletter.NewClient(srv.URL()))
	t.Cleanup(f.Close)
	screen := vtest.NewScreen(f)

	submitForm(t, f, "John", "john@doe.com")
	screen.FindByText(t, "Thank you for subscribing!")

	if srv.Calls() != 1 {
		t.Errorf("calls = %d, want 1", srv.Calls())
	}
}

func TestForm_WithClientFailureAndRetry(t *testing.T) {
	srv := newslettertest.NewServer(t)
	srv.Use(newslettertest.Fail(http.StatusInternalServerError, "Something went wrong"))
	f := subscribe.New(newsletter.NewClient(srv.URL()))
	t.Cleanup(f.Close)
	screen := vtest.NewScreen(f)

	submitForm(t, f, "John", "john@doe.com")
	screen.FindByText(t, "Something went wrong")

	srv.Use(nil)
	submitForm(t, f, "Jane", "john@doe.com")
	screen.FindByText(t, "Thank you for subscribing!")
	if screen.QueryByText("Something went wrong") != nil {
		t.Error("failure should be replaced by success")
	}
}

func TestForm_HeldRequestBlocksDoubleSubmit(t *testing.T) {
	srv := newslettertest.NewServer(t)
	srv.Hold()
	f := subscribe.New(newsletter.NewClient(srv.URL()))
	t.Cleanup(f.Close)
	screen := vtest.NewScreen(f)

	submitForm(t, f, "John", "john@doe.com")
	screen.WaitFor(t, func() bool { return srv.Calls() == 1 })
	if started, _ := f.OnSubmit(); started {
		t.Error("second submit should be ignored while pending")
	}

	srv.Release()
	screen.FindByText(t, "Thank you for subscribing!")
	if srv.Calls() != 1 {
		t.Errorf("calls = %d, want 1", srv.Calls())
	}
}
