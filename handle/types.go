package handle

import "context"

// ReleaseFunc runs the native destructor for one object. It is invoked at
// most once per object.
type ReleaseFunc func(ctx context.Context, ptr uint32)

// Event types for native object lifecycle notifications.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReleased
)

// Event describes one lifecycle transition of a native object.
type Event struct {
	Kind string
	Ptr  uint32
	Type EventType
}

// Observer receives lifecycle events from a Table.
type Observer interface {
	OnHandleEvent(Event)
}
