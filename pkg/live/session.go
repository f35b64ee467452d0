package live

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/newsletter/pkg/render"
	"github.com/vango-dev/newsletter/pkg/subscribe"
)

// Event types sent by the browser.
const (
	EventInput  = "input"
	EventSubmit = "submit"
)

// MessageRender is the type of every server message.
const MessageRender = "render"

// ClientEvent is one message from the browser.
type ClientEvent struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// ServerMessage carries the re-rendered form.
type ServerMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	HTML   string `json:"html"`
}

// closeGracePeriod is how long a closing session waits for the peer's close
// frame.
const closeGracePeriod = time.Second

var errUnknownEvent = errors.New("live: unknown event type")

// session binds one WebSocket connection to one form.
type session struct {
	id     string
	conn   *websocket.Conn
	form   *subscribe.Form
	server *Server
	logger *slog.Logger

	// latest holds the newest unsent render; older ones are dropped.
	mu     sync.Mutex
	latest []byte
	notify chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}

	id := uuid.NewString()
	logger := s.logger.With("session_id", id)
	sess := &session{
		id:     id,
		conn:   conn,
		server: s,
		logger: logger,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	sess.form = s.newForm(id, logger)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sess.form.Close()
		conn.Close()
		return
	}
	s.sessions[id] = sess
	s.wg.Add(1)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	logger.Info("live session opened")

	sess.run()
}

// run drives the session until the connection ends.
func (sess *session) run() {
	s := sess.server
	defer s.wg.Done()

	unsubscribe := sess.form.Subscribe(sess.push)
	sess.push(sess.form.State())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		sess.writeLoop()
	}()

	sess.readLoop()

	unsubscribe()
	sess.form.Close()
	sess.shutdown()
	<-writerDone
	sess.conn.Close()

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	sess.logger.Info("live session closed")
}

// push queues a render of st. It runs on the form's loop and never blocks.
func (sess *session) push(st subscribe.State) {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(subscribe.Render(st))
	if err != nil {
		sess.logger.Error("form render failed", "error", err)
		return
	}
	msg, err := json.Marshal(ServerMessage{
		Type:   MessageRender,
		Status: st.Status.Kind.String(),
		HTML:   html,
	})
	if err != nil {
		sess.logger.Error("message encode failed", "error", err)
		return
	}

	sess.mu.Lock()
	sess.latest = msg
	sess.mu.Unlock()

	select {
	case sess.notify <- struct{}{}:
	default:
	}
}

func (sess *session) readLoop() {
	sess.conn.SetReadLimit(sess.server.config.MaxMessageSize)
	sess.extendDeadline()
	sess.conn.SetPongHandler(func(string) error {
		sess.extendDeadline()
		return nil
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
				sess.recordError("read")
			}
			return
		}
		sess.extendDeadline()

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			sess.logger.Warn("event decode error", "error", err)
			sess.recordError("decode")
			continue
		}
		if err := sess.apply(ev); err != nil {
			if errors.Is(err, subscribe.ErrClosed) {
				return
			}
			sess.logger.Warn("event rejected", "type", ev.Type, "error", err)
			sess.recordError("event")
		}
	}
}

func (sess *session) apply(ev ClientEvent) error {
	switch ev.Type {
	case EventInput:
		return sess.form.OnFieldChange(subscribe.Field(ev.Field), ev.Value)
	case EventSubmit:
		_, err := sess.form.OnSubmit()
		return err
	default:
		return errUnknownEvent
	}
}

func (sess *session) writeLoop() {
	cfg := sess.server.config
	pingPeriod := cfg.ReadTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-sess.notify:
			sess.mu.Lock()
			msg := sess.latest
			sess.latest = nil
			sess.mu.Unlock()
			if msg == nil {
				continue
			}
			sess.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := sess.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				sess.logger.Warn("write error", "error", err)
				sess.recordError("write")
				sess.conn.Close()
				return
			}

		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.conn.Close()
				return
			}

		case <-sess.done:
			sess.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			_ = sess.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// extendDeadline pushes the read deadline out unless the session is
// shutting down.
func (sess *session) extendDeadline() {
	select {
	case <-sess.done:
	default:
		sess.conn.SetReadDeadline(time.Now().Add(sess.server.config.ReadTimeout))
	}
}

// shutdown asks the writer to send a close frame and stop. The read loop
// ends when the peer answers or closeGracePeriod passes.
func (sess *session) shutdown() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		sess.conn.SetReadDeadline(time.Now().Add(closeGracePeriod))
	})
}

func (sess *session) recordError(kind string) {
	if m := sess.server.metrics; m != nil {
		m.WebSocketError(kind)
	}
}
