package reactive

// Listener is anything that can be notified when a signal changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its signals changed.
	MarkDirty()

	// ID returns a unique identifier used for deduplication during batches.
	ID() uint64
}

type funcListener struct {
	id uint64
	fn func()
}

func (l *funcListener) MarkDirty() { l.fn() }
func (l *funcListener) ID() uint64 { return l.id }

// ListenerFunc wraps fn in a Listener with a fresh ID.
// Subscribing the same returned Listener to several signals of one Owner
// yields a single call per batch.
func ListenerFunc(fn func()) Listener {
	return &funcListener{id: nextID(), fn: fn}
}
