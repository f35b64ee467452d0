package main

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/newsletter/internal/errors"
	"github.com/vango-dev/newsletter/pkg/live"
	"github.com/vango-dev/newsletter/pkg/metrics"
	"github.com/vango-dev/newsletter/pkg/newsletter"
	"github.com/vango-dev/newsletter/pkg/newsletter/newslettertest"
	"github.com/vango-dev/newsletter/pkg/subscribe"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	address  string
	endpoint string
	timeout  time.Duration
	mock     bool
}

func serveCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page with the live subscription form",
		Long: `Serve the page with the live subscription form.

Every browser tab gets its own form over a WebSocket at /ws. Browsers
without JavaScript post the form to / instead. Health checks are served
at /healthz and Prometheus metrics at /metrics unless disabled.

With --mock a fake newsletter endpoint is served at /api/newsletter and
the form submits to it.

Examples:
  newsletter serve
  newsletter serve --mock
  newsletter serve --address=:9000 --endpoint=https://example.com/api/newsletter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.address, "address", "a", "", "Address to listen on (default from newsletter.json)")
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "", "Newsletter endpoint URL (default from newsletter.json)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Submission timeout (default from newsletter.json)")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "Serve a fake newsletter endpoint and submit to it")

	return cmd
}

func runServe(cmd *cobra.Command, a *app, opts serveOptions) error {
	cfg := a.cfg
	if opts.address != "" {
		cfg.Address = opts.address
	}
	if opts.timeout < 0 {
		return errors.New("N200").WithDetailf("--timeout must be positive, got %s", opts.timeout)
	}
	timeout := cfg.TimeoutDuration()
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return errors.New("N201").Wrap(err).
			WithSuggestion("Pick another address with --address")
	}

	endpoint := cfg.Endpoint
	switch {
	case opts.endpoint != "":
		endpoint = opts.endpoint
	case opts.mock:
		endpoint = "http://" + localAddr(ln.Addr()) + newslettertest.Path
	}

	var liveOpts []live.Option
	liveOpts = append(liveOpts,
		live.WithLogger(a.logger),
		live.WithConfig(live.Config{Title: cfg.Title}),
		live.WithFormOptions(
			subscribe.WithSuccessMessage(cfg.SuccessMessage),
			subscribe.WithFailureMessage(cfg.FailureMessage),
			subscribe.WithServerMessage(cfg.UseServerMessage),
		),
	)
	if cfg.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec := metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		)
		liveOpts = append(liveOpts, live.WithMetrics(rec, metrics.Handler(reg)))
	}
	if opts.mock {
		liveOpts = append(liveOpts, live.WithMount("/", newslettertest.NewHandler()))
	}

	client := newsletter.NewClient(endpoint,
		newsletter.WithTimeout(timeout),
		newsletter.WithTracerName(cfg.Tracing.TracerName),
		newsletter.WithLogger(a.logger),
		newsletter.WithUserAgent(userAgent()),
	)
	server := live.NewServer(client, liveOpts...)

	httpServer := &http.Server{
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	out := cmd.OutOrStdout()
	success(out, "Serving on http://%s", localAddr(ln.Addr()))
	info(out, "Endpoint: %s", client.Endpoint())
	if cfg.MetricsEnabled() {
		info(out, "Metrics:  http://%s/metrics", localAddr(ln.Addr()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		server.Close()
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("N201").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by http.Server.
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("live sessions did not close in time", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.New("N201").Wrap(err)
	}
	return nil
}

// localAddr returns addr with an unspecified host replaced by localhost.
func localAddr(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
