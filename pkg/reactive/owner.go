package reactive

import "sync"

// Owner is the scope a component's signals live in. It groups their
// notifications into batches and clears their subscriptions on Dispose.
type Owner struct {
	id uint64

	mu       sync.Mutex
	depth    int
	pending  []Listener
	signals  []*signalBase
	disposed bool
}

// NewOwner creates an empty Owner.
func NewOwner() *Owner {
	return &Owner{id: nextID()}
}

// ID returns the unique identifier for this owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Batch groups signal updates into a single notification phase.
// Listeners touched inside fn are deduplicated by ID and notified once when
// the outermost batch completes. Batches can be nested.
func (o *Owner) Batch(fn func()) {
	o.mu.Lock()
	o.depth++
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.depth--
		var updates []Listener
		if o.depth == 0 {
			updates = o.pending
			o.pending = nil
		}
		o.mu.Unlock()

		notifyUnique(updates)
	}()

	fn()
}

// Dispose drops every subscription on the owner's signals. Writes after
// Dispose still update values but notify nobody.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	signals := o.signals
	o.signals = nil
	o.pending = nil
	o.mu.Unlock()

	for _, s := range signals {
		s.clear()
	}
}

// Disposed reports whether Dispose has been called.
func (o *Owner) Disposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

func (o *Owner) adopt(s *signalBase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.signals = append(o.signals, s)
}

// queue defers subs until the current batch ends. It reports false when no
// batch is open and the caller should notify immediately.
func (o *Owner) queue(subs []Listener) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.depth == 0 {
		return false
	}
	o.pending = append(o.pending, subs...)
	return true
}

func notifyUnique(updates []Listener) {
	if len(updates) == 0 {
		return
	}
	seen := make(map[uint64]bool, len(updates))
	for _, l := range updates {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}
