// Package newslettertest provides a programmable fake of the newsletter
// endpoint for tests and local development.
//
// By default the fake accepts every well-formed submission with
//
//	200 {"message":"Thank you for subscribing!"}
//
// Use swaps the behavior for later requests, Hold keeps requests open until
// Release, and Calls and Requests report what was received:
//
//	srv := newslettertest.NewServer(t)
//	srv.Use(newslettertest.Fail(http.StatusInternalServerError, "Something went wrong"))
//	client := newsletter.NewClient(srv.URL())
package newslettertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/newsletter/pkg/newsletter"
)

// Path is the route the fake serves.
const Path = "/api/newsletter"

// SuccessMessage is the default confirmation.
const SuccessMessage = "Thank you for subscribing!"

// Handler is the fake endpoint as an http.Handler.
type Handler struct {
	router chi.Router

	mu       sync.Mutex
	override http.Handler
	calls    int
	requests []newsletter.Request
	gate     chan struct{}
}

// NewHandler returns a fake endpoint serving Path.
func NewHandler() *Handler {
	h := &Handler{}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Post(Path, h.subscribe)
	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletter.Request
	decodeErr := json.NewDecoder(r.Body).Decode(&req)

	h.mu.Lock()
	h.calls++
	if decodeErr == nil {
		h.requests = append(h.requests, req)
	}
	override := h.override
	gate := h.gate
	h.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if override != nil {
		override.ServeHTTP(w, r)
		return
	}
	if decodeErr != nil {
		writeJSON(w, http.StatusBadRequest, newsletter.Response{Error: "Invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, newsletter.Response{Message: SuccessMessage})
}

// Use replaces the response for subsequent requests. A nil handler restores
// the default.
func (h *Handler) Use(handler http.Handler) {
	h.mu.Lock()
	h.override = handler
	h.mu.Unlock()
}

// Hold keeps subsequent requests open until Release is called.
func (h *Handler) Hold() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gate == nil {
		h.gate = make(chan struct{})
	}
}

// Release lets held requests proceed and stops holding new ones.
func (h *Handler) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gate != nil {
		close(h.gate)
		h.gate = nil
	}
}

// Calls returns how many requests reached the endpoint.
func (h *Handler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// Requests returns the decoded bodies received so far.
func (h *Handler) Requests() []newsletter.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]newsletter.Request(nil), h.requests...)
}

// Reset restores the default response and clears recorded calls.
func (h *Handler) Reset() {
	h.mu.Lock()
	h.override = nil
	h.calls = 0
	h.requests = nil
	h.mu.Unlock()
	h.Release()
}

// Reply responds with status and body.
func Reply(status int, body newsletter.Response) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

// Fail responds with status and {"error": message}.
func Fail(status int, message string) http.Handler {
	return Reply(status, newsletter.Response{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Server runs a Handler on a local listener.
type Server struct {
	*Handler
	srv *httptest.Server
}

// NewServer starts a fake endpoint and closes it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{Handler: NewHandler()}
	s.srv = httptest.NewServer(s.Handler)
	t.Cleanup(s.Close)
	return s
}

// URL returns the endpoint URL to pass to newsletter.NewClient.
func (s *Server) URL() string {
	return s.srv.URL + Path
}

// Close releases held requests and shuts the listener down.
func (s *Server) Close() {
	s.Release()
	s.srv.Close()
}
