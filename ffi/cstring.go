package ffi

import (
	"context"
	"strings"

	"github.com/wasmvis/linedesc/errors"
)

// CString is a NUL-terminated intermediate buffer in native memory. It exists
// because the native call sites expect C strings while the Go representation
// is a plain string; the buffer is created right before a call and freed
// right after it.
//
// CString is borrow-only: the native side reads through the pointer for the
// duration of one call and never takes ownership.
type CString struct {
	rt    Runtime
	ptr   Ptr
	size  uint32 // allocation size, including the terminator
	freed bool
}

// NewCString copies s into native memory with a trailing NUL. It fails with
// an embedded-NUL error when s contains an interior NUL byte, since the
// native side would silently see a truncated string.
func NewCString(rt Runtime, s string) (*CString, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, errors.EmbeddedNul(i)
	}
	return newCString(rt, s)
}

// NewCStringLossy copies s into native memory with a trailing NUL,
// truncating at the first interior NUL byte instead of failing. String
// content never makes this constructor fail; the only error source is the
// native allocator. It is meant for paths where an encoding failure is not
// acceptable, such as cleanup or return paths.
func NewCStringLossy(rt Runtime, s string) (*CString, error) {
	return newCString(rt, SanitizeNul(s))
}

// SanitizeNul returns s truncated at its first NUL byte. The identity for
// NUL-free input.
func SanitizeNul(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}

func newCString(rt Runtime, s string) (*CString, error) {
	size := uint32(len(s)) + 1
	ptr, err := rt.Allocator().Alloc(size, 1)
	if err != nil {
		return nil, errors.AllocationFailed(size, 1, err)
	}

	buf := make([]byte, size)
	copy(buf, s)
	if err := rt.Memory().Write(ptr, buf); err != nil {
		rt.Allocator().Free(ptr, size, 1)
		return nil, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write C string")
	}

	return &CString{rt: rt, ptr: ptr, size: size}, nil
}

func (c *CString) ExternPtr() Ptr { return c.ptr }

func (c *CString) ExternPtrMut() Ptr { return c.ptr }

// ExternMove always panics. See Container.
func (c *CString) ExternMove() Ptr {
	panic("ffi: ExternMove on CString: the native side never takes ownership of a C string buffer")
}

func (c *CString) Free() {
	if c.freed {
		return
	}
	c.freed = true
	c.rt.Allocator().Free(c.ptr, c.size, 1)
}

var _ Container = (*CString)(nil)

// ReadCString reads a NUL-terminated string from native memory at p.
func ReadCString(mem Memory, p Ptr) (string, error) {
	const chunk = 64

	var out []byte
	for off := p; ; off += chunk {
		n := uint32(chunk)
		data, err := mem.Read(off, n)
		if err != nil {
			// Near the end of memory, fall back to byte-wise reads.
			data, err = readCStringTail(mem, off)
			if err != nil {
				return "", err
			}
			return string(append(out, data...)), nil
		}
		for i, b := range data {
			if b == 0 {
				return string(append(out, data[:i]...)), nil
			}
		}
		out = append(out, data...)
	}
}

func readCStringTail(mem Memory, p Ptr) ([]byte, error) {
	var out []byte
	for off := p; ; off++ {
		b, err := mem.ReadU8(off)
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseLift, off, 1)
		}
		if b == 0 {
			return out, nil
		}
		out = append(out, b)
	}
}

// Native entry points that expose an owned native string to the host. The
// glue allocates a string object when a call returns text; the host reads it
// back through these accessors and releases the temporary immediately.
const (
	symStringData = "ocvrs_string_data"
	symStringLen  = "ocvrs_string_len"
	symStringFree = "ocvrs_string_free"
)

// ReceiveString reconstructs an owned Go string from a native string object
// returned over the boundary and frees the native temporary. The pointer
// must originate from a native call that returns a string; anything else is
// undefined behavior on the native side.
func ReceiveString(ctx context.Context, rt Runtime, p Ptr) (string, error) {
	b, err := receiveBuffer(ctx, rt, p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReceiveBytes is ReceiveString for raw byte payloads: same native string
// object, no text interpretation.
func ReceiveBytes(ctx context.Context, rt Runtime, p Ptr) ([]byte, error) {
	return receiveBuffer(ctx, rt, p)
}

func receiveBuffer(ctx context.Context, rt Runtime, p Ptr) ([]byte, error) {
	stack := []uint64{uint64(p)}
	if err := rt.Call(ctx, symStringData, stack); err != nil {
		return nil, err
	}
	data := Ptr(stack[0])

	stack[0] = uint64(p)
	if err := rt.Call(ctx, symStringLen, stack); err != nil {
		return nil, err
	}
	length := uint32(stack[0])

	var out []byte
	if length > 0 {
		raw, err := rt.Memory().Read(data, length)
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseLift, data, length)
		}
		// Copy out before the free invalidates the view.
		out = make([]byte, length)
		copy(out, raw)
	}

	stack[0] = uint64(p)
	if err := rt.Call(ctx, symStringFree, stack); err != nil {
		return nil, err
	}
	return out, nil
}
