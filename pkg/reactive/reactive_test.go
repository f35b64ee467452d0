package reactive

import (
	"sync"
	"testing"
)

type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirty++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 { return l.id }

func (l *testListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(nil, 0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalNotifiesOnChangeOnly(t *testing.T) {
	name := NewSignal(nil, "")
	l := newTestListener()
	name.Subscribe(l)

	name.Set("John")
	name.Set("John")

	if l.count() != 1 {
		t.Errorf("expected 1 notification, got %d", l.count())
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	name := NewSignal(nil, "")
	l := newTestListener()
	unsubscribe := name.Subscribe(l)

	name.Set("a")
	unsubscribe()
	name.Set("b")

	if l.count() != 1 {
		t.Errorf("expected 1 notification after unsubscribe, got %d", l.count())
	}
}

func TestSignalSubscribeDeduplicates(t *testing.T) {
	s := NewSignal(nil, 0)
	l := newTestListener()
	s.Subscribe(l)
	s.Subscribe(l)

	s.Set(1)
	if l.count() != 1 {
		t.Errorf("expected deduplicated subscription, got %d notifications", l.count())
	}
}

func TestSignalMapValuesUseDeepEqual(t *testing.T) {
	errs := NewSignal(nil, map[string]string{"email": "Email is required"})
	l := newTestListener()
	errs.Subscribe(l)

	errs.Set(map[string]string{"email": "Email is required"})
	if l.count() != 0 {
		t.Errorf("equal map should not notify, got %d", l.count())
	}

	errs.Set(map[string]string{})
	if l.count() != 1 {
		t.Errorf("expected 1 notification, got %d", l.count())
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal(nil, 1).WithEquals(func(a, b int) bool { return a%2 == b%2 })
	l := newTestListener()
	s.Subscribe(l)

	s.Set(3)
	if l.count() != 0 {
		t.Errorf("custom equality should suppress notification, got %d", l.count())
	}
	s.Set(4)
	if l.count() != 1 {
		t.Errorf("expected 1 notification, got %d", l.count())
	}
}

func TestOwnerBatchNotifiesOnce(t *testing.T) {
	owner := NewOwner()
	first := NewSignal(owner, "")
	last := NewSignal(owner, "")
	l := newTestListener()
	first.Subscribe(l)
	last.Subscribe(l)

	owner.Batch(func() {
		first.Set("John")
		last.Set("Doe")
		if l.count() != 0 {
			t.Errorf("listener notified inside batch")
		}
	})

	if l.count() != 1 {
		t.Errorf("expected 1 notification after batch, got %d", l.count())
	}
}

func TestOwnerNestedBatch(t *testing.T) {
	owner := NewOwner()
	s := NewSignal(owner, 0)
	l := newTestListener()
	s.Subscribe(l)

	owner.Batch(func() {
		owner.Batch(func() {
			s.Set(1)
		})
		if l.count() != 0 {
			t.Errorf("inner batch should not flush, got %d", l.count())
		}
		s.Set(2)
	})

	if l.count() != 1 {
		t.Errorf("expected 1 notification, got %d", l.count())
	}
}

func TestOwnerDispose(t *testing.T) {
	owner := NewOwner()
	s := NewSignal(owner, 0)
	l := newTestListener()
	s.Subscribe(l)

	owner.Dispose()
	if !owner.Disposed() {
		t.Fatal("expected owner to be disposed")
	}

	s.Set(1)
	if l.count() != 0 {
		t.Errorf("disposed owner should drop subscriptions, got %d", l.count())
	}
	owner.Dispose()
}

func TestListenerFunc(t *testing.T) {
	calls := 0
	l := ListenerFunc(func() { calls++ })
	other := ListenerFunc(func() {})

	if l.ID() == other.ID() {
		t.Error("expected distinct listener ids")
	}

	s := NewSignal(nil, 0)
	s.Subscribe(l)
	s.Set(1)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestSignalConcurrentAccess(t *testing.T) {
	s := NewSignal(nil, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(n int) int { return n + 1 })
			_ = s.Get()
		}()
	}
	wg.Wait()

	if s.Get() != 50 {
		t.Errorf("expected 50, got %d", s.Get())
	}
}
