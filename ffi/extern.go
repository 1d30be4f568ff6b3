package ffi

import (
	"context"
	"math"

	linedesc "github.com/wasmvis/linedesc"
)

// Ptr is an address in the native module's linear memory.
type Ptr = uint32

type Memory = linedesc.Memory
type Allocator = linedesc.Allocator

// Runtime is the slice of a native instance the marshalling layer needs.
type Runtime interface {
	Memory() Memory
	Allocator() Allocator
	Call(ctx context.Context, name string, stack []uint64) error
}

// Container holds a boundary-safe representation of one value for the
// duration of one native call.
type Container interface {
	// ExternPtr returns the read-only boundary pointer.
	ExternPtr() Ptr
	// ExternPtrMut returns the mutable boundary pointer.
	ExternPtrMut() Ptr
	// ExternMove transfers ownership of the representation to the native
	// side. Borrow-only containers panic: no call site hands ownership of a
	// CString or byte buffer to the native library, and silently returning a
	// pointer here would leak or double-free.
	ExternMove() Ptr
	// Free releases the container's native allocation. Safe to call more
	// than once and after ExternMove.
	Free()
}

// Scalar lowering/lifting. One 64-bit stack slot per value, matching the
// value representation of the call stack.

func LowerBool(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func LowerI32(v int32) uint64 { return uint64(uint32(v)) }

func LowerU32(v uint32) uint64 { return uint64(v) }

func LowerI64(v int64) uint64 { return uint64(v) }

func LowerU64(v uint64) uint64 { return v }

func LowerF32(v float32) uint64 { return uint64(math.Float32bits(v)) }

func LowerF64(v float64) uint64 { return math.Float64bits(v) }

func LiftBool(s uint64) bool { return uint32(s) != 0 }

func LiftI32(s uint64) int32 { return int32(uint32(s)) }

func LiftU32(s uint64) uint32 { return uint32(s) }

func LiftI64(s uint64) int64 { return int64(s) }

func LiftU64(s uint64) uint64 { return s }

func LiftF32(s uint64) float32 { return math.Float32frombits(uint32(s)) }

func LiftF64(s uint64) float64 { return math.Float64frombits(s) }
