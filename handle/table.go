package handle

import (
	"context"
	"sync"
)

// Table tracks the live native objects of one instance.
type Table struct {
	mu        sync.Mutex
	live      map[*Owned]struct{}
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{live: make(map[*Owned]struct{}, 16)}
}

// Register wraps a native address and starts tracking it. Returns nil if the
// table is already closed, in which case the caller must not use the
// address.
func (t *Table) Register(kind string, ptr uint32, release ReleaseFunc) *Owned {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	o := &Owned{kind: kind, ptr: ptr, release: release, table: t}
	t.live[o] = struct{}{}
	t.mu.Unlock()

	t.notify(Event{Type: EventRegistered, Kind: kind, Ptr: ptr})
	return o
}

// Len returns the number of live native objects.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Each visits every live object. Return false to stop.
func (t *Table) Each(fn func(*Owned) bool) {
	t.mu.Lock()
	snapshot := make([]*Owned, 0, len(t.live))
	for o := range t.live {
		snapshot = append(snapshot, o)
	}
	t.mu.Unlock()

	for _, o := range snapshot {
		if !fn(o) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close releases every live object and stops accepting registrations.
// Called during instance teardown, while the native module is still
// callable.
func (t *Table) Close(ctx context.Context) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	stragglers := make([]*Owned, 0, len(t.live))
	for o := range t.live {
		stragglers = append(stragglers, o)
	}
	t.mu.Unlock()

	for _, o := range stragglers {
		o.Release(ctx)
	}
}

// forget drops a released wrapper from tracking.
func (t *Table) forget(o *Owned) {
	t.mu.Lock()
	delete(t.live, o)
	t.mu.Unlock()

	t.notify(Event{Type: EventReleased, Kind: o.kind, Ptr: o.ptr})
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
