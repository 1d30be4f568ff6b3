package ffi

import (
	"github.com/wasmvis/linedesc/errors"
)

// Bytes is a raw byte buffer copied into native memory for one call. The
// native side sees a pointer; the length travels separately as a scalar
// argument. Borrow-only, like CString.
type Bytes struct {
	rt    Runtime
	ptr   Ptr
	n     uint32
	freed bool
}

// NewBytes copies b into native memory. A zero-length buffer still allocates
// one byte so the pointer is valid and distinct.
func NewBytes(rt Runtime, b []byte) (*Bytes, error) {
	size := uint32(len(b))
	alloc := size
	if alloc == 0 {
		alloc = 1
	}
	ptr, err := rt.Allocator().Alloc(alloc, 1)
	if err != nil {
		return nil, errors.AllocationFailed(alloc, 1, err)
	}
	if size > 0 {
		if err := rt.Memory().Write(ptr, b); err != nil {
			rt.Allocator().Free(ptr, alloc, 1)
			return nil, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write byte buffer")
		}
	}
	return &Bytes{rt: rt, ptr: ptr, n: size}, nil
}

// Len returns the buffer length as seen by the native side.
func (b *Bytes) Len() uint32 { return b.n }

func (b *Bytes) ExternPtr() Ptr { return b.ptr }

func (b *Bytes) ExternPtrMut() Ptr { return b.ptr }

// ExternMove always panics. See Container.
func (b *Bytes) ExternMove() Ptr {
	panic("ffi: ExternMove on Bytes: the native side never takes ownership of a borrowed byte buffer")
}

func (b *Bytes) Free() {
	if b.freed {
		return
	}
	b.freed = true
	alloc := b.n
	if alloc == 0 {
		alloc = 1
	}
	b.rt.Allocator().Free(b.ptr, alloc, 1)
}

var _ Container = (*Bytes)(nil)
