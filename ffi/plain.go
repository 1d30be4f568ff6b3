package ffi

import (
	"math"

	"github.com/wasmvis/linedesc/errors"
)

// Plain is a value with a fixed wasm32 C-ABI layout, marshalled by field
// copy. Both sides must agree on the layout byte for byte; a mismatch is a
// contract violation that no runtime check catches, so each implementation
// pins its size with a constant that the tests verify against the
// hand-computed ABI layout.
type Plain interface {
	// PlainSize returns the record size in bytes, padding included.
	PlainSize() uint32
	// PlainAlign returns the record alignment in bytes.
	PlainAlign() uint32
	// PlainPut writes the record at off.
	PlainPut(mem Memory, off Ptr) error
}

// PlainGetter is implemented by pointer receivers of Plain records that can
// be read back from native memory.
type PlainGetter interface {
	Plain
	// PlainGet overwrites the receiver with the record at off.
	PlainGet(mem Memory, off Ptr) error
}

// PlainBox places one Plain record in native memory for a call. Unlike
// CString and Bytes, a box supports ExternMove: transfer-of-ownership call
// sites hand the record's memory to the native side, which reclaims it.
type PlainBox struct {
	rt    Runtime
	ptr   Ptr
	size  uint32
	align uint32
	freed bool
}

// NewPlainBox allocates native memory for v and writes it.
func NewPlainBox(rt Runtime, v Plain) (*PlainBox, error) {
	size, align := v.PlainSize(), v.PlainAlign()
	ptr, err := rt.Allocator().Alloc(size, align)
	if err != nil {
		return nil, errors.AllocationFailed(size, align, err)
	}
	if err := v.PlainPut(rt.Memory(), ptr); err != nil {
		rt.Allocator().Free(ptr, size, align)
		return nil, err
	}
	return &PlainBox{rt: rt, ptr: ptr, size: size, align: align}, nil
}

func (p *PlainBox) ExternPtr() Ptr { return p.ptr }

func (p *PlainBox) ExternPtrMut() Ptr { return p.ptr }

// ExternMove marks the allocation as owned by the native side. Free becomes
// a no-op afterwards.
func (p *PlainBox) ExternMove() Ptr {
	p.freed = true
	return p.ptr
}

// ReadBack re-reads the record after a call that mutated it in place.
func (p *PlainBox) ReadBack(v PlainGetter) error {
	return v.PlainGet(p.rt.Memory(), p.ptr)
}

func (p *PlainBox) Free() {
	if p.freed {
		return
	}
	p.freed = true
	p.rt.Allocator().Free(p.ptr, p.size, p.align)
}

var _ Container = (*PlainBox)(nil)

// Writer is a little-endian cursor for PlainPut implementations. The first
// error sticks; check Err once after the last field.
type Writer struct {
	mem Memory
	off Ptr
	err error
}

func NewWriter(mem Memory, off Ptr) *Writer {
	return &Writer{mem: mem, off: off}
}

func (w *Writer) Err() error { return w.err }

// Skip advances over padding bytes.
func (w *Writer) Skip(n uint32) { w.off += n }

func (w *Writer) PutU32(v uint32) {
	if w.err == nil {
		w.err = w.mem.WriteU32(w.off, v)
	}
	w.off += 4
}

func (w *Writer) PutI32(v int32) { w.PutU32(uint32(v)) }

func (w *Writer) PutF32(v float32) { w.PutU32(math.Float32bits(v)) }

func (w *Writer) PutU64(v uint64) {
	if w.err == nil {
		w.err = w.mem.WriteU64(w.off, v)
	}
	w.off += 8
}

func (w *Writer) PutF64(v float64) { w.PutU64(math.Float64bits(v)) }

// Reader is the counterpart of Writer for PlainGet implementations.
type Reader struct {
	mem Memory
	off Ptr
	err error
}

func NewReader(mem Memory, off Ptr) *Reader {
	return &Reader{mem: mem, off: off}
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) Skip(n uint32) { r.off += n }

func (r *Reader) U32() uint32 {
	var v uint32
	if r.err == nil {
		v, r.err = r.mem.ReadU32(r.off)
	}
	r.off += 4
	return v
}

func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

func (r *Reader) U64() uint64 {
	var v uint64
	if r.err == nil {
		v, r.err = r.mem.ReadU64(r.off)
	}
	r.off += 8
	return v
}

func (r *Reader) F64() float64 { return math.Float64frombits(r.U64()) }
