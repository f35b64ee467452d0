package loop

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrClosed is returned when work is submitted to a closed loop.
var ErrClosed = errors.New("loop: closed")

// DefaultQueueSize is the dispatch buffer used when none is configured.
const DefaultQueueSize = 64

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for panic and overflow reports.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueueSize sets the dispatch buffer size.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// Loop runs queued functions one at a time on a dedicated goroutine.
type Loop struct {
	logger    *slog.Logger
	queueSize int

	dispatchCh chan func()
	done       chan struct{}
	exited     chan struct{}

	closeOnce sync.Once
}

// New starts a loop goroutine. Call Close to stop it.
func New(opts ...Option) *Loop {
	l := &Loop{
		logger:    slog.Default(),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.dispatchCh = make(chan func(), l.queueSize)
	l.done = make(chan struct{})
	l.exited = make(chan struct{})

	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.exited)
	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
		case <-l.done:
			return
		}
	}
}

// execute runs fn with panic recovery so one faulty callback cannot stop the
// loop.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Dispatch queues fn to run on the loop and returns immediately. It is safe
// to call from any goroutine. Work dispatched after Close is discarded.
// Dispatch blocks while the queue is full.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.dispatchCh <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.dispatchCh <- wrapped:
	case <-l.done:
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-l.exited:
		// The loop stopped before reaching fn; it may still have run.
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Close stops the loop. Functions still queued are dropped. Close waits for
// the function currently running, if any, and is safe to call more than once.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	<-l.exited
}

// Done returns a channel that is closed once Close has been called.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
