package live

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/newsletter/pkg/metrics"
	"github.com/vango-dev/newsletter/pkg/render"
	"github.com/vango-dev/newsletter/pkg/subscribe"
	"github.com/vango-dev/newsletter/pkg/vdom"
)

const (
	// DefaultReadTimeout is how long a connection may stay silent, pongs
	// included, before it is dropped.
	DefaultReadTimeout = 60 * time.Second

	// DefaultWriteTimeout bounds a single WebSocket write.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultMaxMessageSize limits inbound WebSocket messages.
	DefaultMaxMessageSize = 8 << 10

	// DefaultTitle is the page title.
	DefaultTitle = "Newsletter"
)

// Config configures a Server.
type Config struct {
	// Title is the page title.
	Title string

	// ReadTimeout drops connections that stay silent this long.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration

	// MaxMessageSize limits inbound WebSocket messages.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Nil accepts same-origin requests only.
	CheckOrigin func(r *http.Request) bool
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the server configuration. Zero fields keep their
// defaults.
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		if cfg.Title != "" {
			s.config.Title = cfg.Title
		}
		if cfg.ReadTimeout > 0 {
			s.config.ReadTimeout = cfg.ReadTimeout
		}
		if cfg.WriteTimeout > 0 {
			s.config.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.MaxMessageSize > 0 {
			s.config.MaxMessageSize = cfg.MaxMessageSize
		}
		if cfg.CheckOrigin != nil {
			s.config.CheckOrigin = cfg.CheckOrigin
		}
	}
}

// WithLogger sets the server's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records session and form metrics on rec and serves h at
// /metrics when h is non-nil.
func WithMetrics(rec *metrics.Recorder, h http.Handler) Option {
	return func(s *Server) {
		s.metrics = rec
		s.metricsHandler = h
	}
}

// WithFormOptions adds options applied to every form the server mounts.
func WithFormOptions(opts ...subscribe.Option) Option {
	return func(s *Server) {
		s.formOpts = append(s.formOpts, opts...)
	}
}

// WithMount serves h under pattern on the same router, for example a fake
// newsletter endpoint during local development.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts = append(s.mounts, mount{pattern: pattern, handler: h})
	}
}

type mount struct {
	pattern string
	handler http.Handler
}

// Server serves the page, the live WebSocket endpoint and health checks.
type Server struct {
	submitter      subscribe.Submitter
	config         Config
	logger         *slog.Logger
	metrics        *metrics.Recorder
	metricsHandler http.Handler
	formOpts       []subscribe.Option
	mounts         []mount

	router   chi.Router
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a Server whose forms submit through submitter. It panics
// if submitter is nil.
func NewServer(submitter subscribe.Submitter, opts ...Option) *Server {
	if submitter == nil {
		panic("live: nil Submitter")
	}
	s := &Server{
		submitter: submitter,
		config: Config{
			Title:          DefaultTitle,
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
			MaxMessageSize: DefaultMaxMessageSize,
		},
		logger:   slog.Default(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "live")
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Post("/", s.handleFormPost)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", handleHealth)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	for _, m := range s.mounts {
		r.Mount(m.pattern, m.handler)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ActiveSessions returns the number of connected live sessions.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close disconnects every live session and waits for them to finish.
// New WebSocket connections are refused afterwards.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.shutdown()
	}
	s.wg.Wait()
}

func (s *Server) newForm(id string, logger *slog.Logger) *subscribe.Form {
	opts := make([]subscribe.Option, 0, len(s.formOpts)+3)
	opts = append(opts, s.formOpts...)
	opts = append(opts, subscribe.WithID(id), subscribe.WithLogger(logger))
	if s.metrics != nil {
		opts = append(opts, subscribe.WithRecorder(s.metrics))
	}
	return subscribe.New(s.submitter, opts...)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, subscribe.State{})
}

// handleFormPost handles a submission from a browser without JavaScript.
func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := middleware.GetReqID(r.Context())
	f := s.newForm(id, s.logger.With("request_id", id))
	defer f.Close()

	_ = f.OnFieldChange(subscribe.FieldFirstName, r.PostForm.Get(string(subscribe.FieldFirstName)))
	_ = f.OnFieldChange(subscribe.FieldEmail, r.PostForm.Get(string(subscribe.FieldEmail)))

	started, err := f.OnSubmit()
	if err != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	if started {
		if err := f.Wait(r.Context()); err != nil {
			s.logger.Warn("form post abandoned", "error", err)
			return
		}
	}

	st := f.State()
	status := http.StatusOK
	switch {
	case len(st.Errors) > 0:
		status = http.StatusUnprocessableEntity
	case st.Status.Kind == subscribe.StatusFailed:
		status = http.StatusBadGateway
	}
	s.writePage(w, status, st)
}

func (s *Server) writePage(w http.ResponseWriter, status int, st subscribe.State) {
	var buf bytes.Buffer
	r := render.NewRenderer(render.RendererConfig{})
	err := r.RenderPage(&buf, render.PageData{
		Title:   s.config.Title,
		Body:    page(s.config.Title, st),
		Styles:  []string{pageStyles},
		Scripts: []string{thinClient},
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func page(title string, st subscribe.State) *vdom.VNode {
	return vdom.Fragment(
		vdom.Main(
			vdom.H1(vdom.Text(title)),
			vdom.P(vdom.Text("Notes on building and testing interactive components.")),
		),
		subscribe.Footer(st),
	)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// requestLogger logs one line per request through logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.LogAttrs(r.Context(), slog.LevelDebug, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Shutdown closes live sessions once ctx is done or they have all ended.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
