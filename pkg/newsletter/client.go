package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/newsletter/pkg/subscribe"
)

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 10 * time.Second

const (
	defaultTracerName = "newsletter"
	maxBodyBytes      = 64 << 10
)

// Request is the JSON body posted to the endpoint.
type Request struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}

// Response is the JSON body the endpoint answers with.
type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client posts subscriptions to a newsletter endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
	userAgent  string
}

var _ subscribe.Submitter = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-submission timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithTracerName sets the tracer name used on the global provider.
func WithTracerName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.tracer = otel.Tracer(name)
		}
	}
}

// WithTracerProvider resolves the tracer from tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(defaultTracerName)
		}
	}
}

// WithLogger sets the client's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     otel.Tracer(defaultTracerName),
		logger:     slog.Default(),
		userAgent:  "newsletter-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "newsletter")
	return c
}

// Endpoint returns the URL submissions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts one subscription. A 2xx answer is a success; any other
// status is returned as *APIError.
func (c *Client) Submit(ctx context.Context, firstName, email string) (result subscribe.Result, err error) {
	ctx, span := c.tracer.Start(ctx, "newsletter.subscribe",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("http.url", c.endpoint),
			attribute.String("newsletter.email_domain", emailDomain(email)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	if c.endpoint == "" {
		return subscribe.Result{}, ErrNoEndpoint
	}

	body, err := json.Marshal(Request{FirstName: firstName, Email: email})
	if err != nil {
		return subscribe.Result{}, fmt.Errorf("newsletter: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return subscribe.Result{}, fmt.Errorf("newsletter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("newsletter request failed", "error", err)
		return subscribe.Result{}, fmt.Errorf("newsletter: post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return subscribe.Result{}, fmt.Errorf("newsletter: read response: %w", err)
	}
	decoded := decodeResponse(resp.Header.Get("Content-Type"), raw)

	c.logger.Debug("newsletter response",
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decoded.Error
		if msg == "" {
			msg = decoded.Message
		}
		return subscribe.Result{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return subscribe.Result{Message: decoded.Message}, nil
}

// decodeResponse reads a JSON body. Bodies that are not JSON decode to an
// empty Response.
func decodeResponse(contentType string, raw []byte) Response {
	var out Response
	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}
	if contentType != "" && !strings.Contains(contentType, "json") {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}
	}
	return out
}

func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
