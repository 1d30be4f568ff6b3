package handle

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Owned is a non-duplicable wrapper around one native object. It owns the
// object: the release function runs exactly once, either through Release or
// through the table's Close.
type Owned struct {
	kind     string
	ptr      uint32
	release  ReleaseFunc
	table    *Table
	released atomic.Bool
}

// NewOwned creates a standalone wrapper, outside any table. Most callers
// should use Table.Register instead so instance teardown can find the
// object.
func NewOwned(kind string, ptr uint32, release ReleaseFunc) *Owned {
	return &Owned{kind: kind, ptr: ptr, release: release}
}

// Kind returns the label the wrapper was registered with.
func (o *Owned) Kind() string { return o.kind }

// Ptr borrows the native address for one call. Borrowing does not affect
// ownership and may happen any number of times. Panics after release:
// handing a dangling native address to a call would be undefined behavior on
// the other side, so the host fails loudly instead.
func (o *Owned) Ptr() uint32 {
	if o.released.Load() {
		panic(fmt.Sprintf("handle: %s used after release", o.kind))
	}
	return o.ptr
}

// PtrMut borrows the native address for a mutating call. Same rules as Ptr.
func (o *Owned) PtrMut() uint32 {
	return o.Ptr()
}

// Released reports whether the native object has been destroyed.
func (o *Owned) Released() bool {
	return o.released.Load()
}

// Release runs the native destructor. The first call wins; later calls are
// no-ops, so Release composes with defer the way Close does elsewhere.
func (o *Owned) Release(ctx context.Context) {
	if !o.released.CompareAndSwap(false, true) {
		return
	}
	if o.release != nil {
		o.release(ctx, o.ptr)
	}
	if o.table != nil {
		o.table.forget(o)
	}
}
