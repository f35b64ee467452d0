package live_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/newsletter/pkg/live"
	"github.com/vango-dev/newsletter/pkg/metrics"
	"github.com/vango-dev/newsletter/pkg/newsletter"
	"github.com/vango-dev/newsletter/pkg/newsletter/newslettertest"
	"github.com/vango-dev/newsletter/pkg/subscribe"
)

type countingSubmitter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSubmitter) Submit(context.Context, string, string) (subscribe.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return subscribe.Result{}, s.err
}

func (s *countingSubmitter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestServer(t *testing.T, sub subscribe.Submitter, opts ...live.Option) (*live.Server, *httptest.Server) {
	t.Helper()
	ls := live.NewServer(sub, opts...)
	srv := httptest.NewServer(ls)
	t.Cleanup(func() {
		ls.Close()
		srv.Close()
	})
	return ls, srv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads render messages until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(live.ServerMessage) bool) live.ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg live.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type != live.MessageRender {
			t.Fatalf("unexpected message type %q", msg.Type)
		}
		if match(msg) {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, ev live.ClientEvent) {
	t.Helper()
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestPage(t *testing.T) {
	_, srv := newTestServer(t, &countingSubmitter{})

	status, body := get(t, srv, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<h2>Stay up to date</h2>",
		`<label for="firstName">First name</label>`,
		`<label for="email">Email</label>`,
		`id="subscribe-root"`,
		`new WebSocket(`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPage_ConfiguredTitle(t *testing.T) {
	_, srv := newTestServer(t, &countingSubmitter{}, live.WithConfig(live.Config{Title: "Acme Weekly"}))

	_, body := get(t, srv, "/")
	for _, want := range []string{"<title>Acme Weekly</title>", "<h1>Acme Weekly</h1>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t, &countingSubmitter{})

	status, body := get(t, srv, "/healthz")
	if status != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Errorf("healthz = %d %q", status, body)
	}
	if status, _ := get(t, srv, "/metrics"); status != http.StatusNotFound {
		t.Errorf("/metrics without handler = %d, want 404", status)
	}
}

func TestWebSocket_SubmitFlow(t *testing.T) {
	sub := &countingSubmitter{}
	_, srv := newTestServer(t, sub)
	conn := dial(t, srv)

	initial := readUntil(t, conn, func(live.ServerMessage) bool { return true })
	if initial.Status != "idle" || !strings.Contains(initial.HTML, "Subscribe") {
		t.Fatalf("initial render = %+v", initial)
	}

	send(t, conn, live.ClientEvent{Type: live.EventSubmit})
	readUntil(t, conn, func(m live.ServerMessage) bool {
		return strings.Contains(m.HTML, "First name is required") && strings.Contains(m.HTML, "Email is required")
	})

	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "firstName", Value: "John"})
	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "email", Value: "john@doe.com"})
	readUntil(t, conn, func(m live.ServerMessage) bool {
		return strings.Contains(m.HTML, `value="john@doe.com"`) && !strings.Contains(m.HTML, "is required")
	})

	send(t, conn, live.ClientEvent{Type: live.EventSubmit})
	done := readUntil(t, conn, func(m live.ServerMessage) bool { return m.Status == "succeeded" })

	if !strings.Contains(done.HTML, "Thank you for subscribing!") {
		t.Errorf("success render missing message: %s", done.HTML)
	}
	if sub.Calls() != 1 {
		t.Errorf("calls = %d, want 1", sub.Calls())
	}
}

func TestWebSocket_FailureThenEdit(t *testing.T) {
	sub := &countingSubmitter{err: &subscribe.SubmissionError{Message: "Something went wrong"}}
	_, srv := newTestServer(t, sub)
	conn := dial(t, srv)
	readUntil(t, conn, func(live.ServerMessage) bool { return true })

	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "firstName", Value: "John"})
	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "email", Value: "john@doe.com"})
	send(t, conn, live.ClientEvent{Type: live.EventSubmit})
	failed := readUntil(t, conn, func(m live.ServerMessage) bool { return m.Status == "failed" })
	if !strings.Contains(failed.HTML, "Something went wrong") {
		t.Errorf("failure render missing message: %s", failed.HTML)
	}

	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "firstName", Value: "Jane"})
	idle := readUntil(t, conn, func(m live.ServerMessage) bool { return m.Status == "idle" })
	if strings.Contains(idle.HTML, "Something went wrong") {
		t.Error("failure message should be dismissed by editing")
	}
}

func TestWebSocket_SessionsAreIndependent(t *testing.T) {
	ls, srv := newTestServer(t, &countingSubmitter{})

	a := dial(t, srv)
	b := dial(t, srv)
	readUntil(t, a, func(live.ServerMessage) bool { return true })
	readUntil(t, b, func(live.ServerMessage) bool { return true })

	send(t, a, live.ClientEvent{Type: live.EventInput, Field: "firstName", Value: "Alice"})
	readUntil(t, a, func(m live.ServerMessage) bool { return strings.Contains(m.HTML, `value="Alice"`) })

	send(t, b, live.ClientEvent{Type: live.EventSubmit})
	other := readUntil(t, b, func(m live.ServerMessage) bool { return strings.Contains(m.HTML, "is required") })
	if strings.Contains(other.HTML, "Alice") {
		t.Error("sessions share form state")
	}

	if n := ls.ActiveSessions(); n != 2 {
		t.Errorf("ActiveSessions() = %d, want 2", n)
	}
}

func TestWebSocket_ClientDisconnectEndsSession(t *testing.T) {
	ls, srv := newTestServer(t, &countingSubmitter{})
	conn := dial(t, srv)
	readUntil(t, conn, func(live.ServerMessage) bool { return true })

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ls.ActiveSessions() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session still active after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerClose_DisconnectsSessions(t *testing.T) {
	ls, srv := newTestServer(t, &countingSubmitter{})
	conn := dial(t, srv)
	readUntil(t, conn, func(live.ServerMessage) bool { return true })

	ls.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close, got %v", err)
	}
	if ls.ActiveSessions() != 0 {
		t.Errorf("ActiveSessions() = %d after Close", ls.ActiveSessions())
	}

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if _, resp, err := websocket.DefaultDialer.Dial(u, nil); err == nil {
		t.Error("expected new connections to be refused")
	} else if resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestFormPost(t *testing.T) {
	sub := &countingSubmitter{}
	_, srv := newTestServer(t, sub)

	post := func(values url.Values) (int, string) {
		resp, err := srv.Client().PostForm(srv.URL+"/", values)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	status, body := post(url.Values{"firstName": {"John"}, "email": {"john"}})
	if status != http.StatusUnprocessableEntity || !strings.Contains(body, "Email is invalid") {
		t.Errorf("invalid post = %d, body missing error", status)
	}
	if sub.Calls() != 0 {
		t.Errorf("calls = %d after invalid post", sub.Calls())
	}

	status, body = post(url.Values{"firstName": {"John"}, "email": {"john@doe.com"}})
	if status != http.StatusOK || !strings.Contains(body, "Thank you for subscribing!") {
		t.Errorf("valid post = %d, body missing confirmation", status)
	}
	if sub.Calls() != 1 {
		t.Errorf("calls = %d, want 1", sub.Calls())
	}
}

func TestMetricsAndMount(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(metrics.WithRegistry(reg))
	fake := newslettertest.NewHandler()

	// The form posts to the fake endpoint mounted on its own server.
	srv := httptest.NewUnstartedServer(nil)
	endpoint := "http://" + srv.Listener.Addr().String() + newslettertest.Path
	ls := live.NewServer(newsletter.NewClient(endpoint),
		live.WithMetrics(rec, metrics.Handler(reg)),
		live.WithMount("/", fake),
	)
	srv.Config.Handler = ls
	srv.Start()
	t.Cleanup(func() {
		ls.Close()
		srv.Close()
	})

	conn := dial(t, srv)
	readUntil(t, conn, func(live.ServerMessage) bool { return true })
	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "firstName", Value: "John"})
	send(t, conn, live.ClientEvent{Type: live.EventInput, Field: "email", Value: "john@doe.com"})
	send(t, conn, live.ClientEvent{Type: live.EventSubmit})
	readUntil(t, conn, func(m live.ServerMessage) bool { return m.Status == "succeeded" })

	if fake.Calls() != 1 {
		t.Errorf("fake endpoint calls = %d, want 1", fake.Calls())
	}
	if got := fake.Requests(); len(got) != 1 || got[0].Email != "john@doe.com" {
		t.Errorf("fake endpoint requests = %+v", got)
	}

	_, body := get(t, srv, "/metrics")
	for _, want := range []string{
		"newsletter_active_sessions 1",
		"newsletter_submissions_started_total 1",
		`newsletter_submissions_total{outcome="success"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
