package native

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
)

// Result record layout, see package doc.
const (
	resultSize     = 16
	resultAlign    = 8
	resultMsgOff   = 4
	resultValueOff = 8
)

// CallResult invokes a fallible entry point: allocates the Result record,
// prepends its address to the arguments, performs the call, and lifts the
// outcome. On success it returns the raw 8-byte value area; interpretation
// (pointer, i32, f64, unused) is the caller's.
func (i *Instance) CallResult(ctx context.Context, symbol string, args ...uint64) (uint64, error) {
	i.alloc.setContext(ctx)

	rp, err := i.alloc.Alloc(resultSize, resultAlign)
	if err != nil {
		return 0, errors.AllocationFailed(resultSize, resultAlign, err)
	}
	defer i.alloc.Free(rp, resultSize, resultAlign)

	stack := make([]uint64, 1+len(args))
	stack[0] = uint64(rp)
	copy(stack[1:], args)

	if err := i.Call(ctx, symbol, stack); err != nil {
		return 0, err
	}
	return liftResult(i, symbol, rp)
}

// CallVoid is CallResult for entry points whose value area is unused.
func (i *Instance) CallVoid(ctx context.Context, symbol string, args ...uint64) error {
	_, err := i.CallResult(ctx, symbol, args...)
	return err
}

// liftResult reads a Result record and converts a nonzero code to an error.
// The exception message buffer is given back to the native allocator once
// copied out.
func liftResult(rt ffi.Runtime, symbol string, rp uint32) (uint64, error) {
	mem := rt.Memory()

	code, err := mem.ReadU32(rp)
	if err != nil {
		return 0, err
	}
	if code == 0 {
		return mem.ReadU64(rp + resultValueOff)
	}

	msg := ""
	msgPtr, err := mem.ReadU32(rp + resultMsgOff)
	if err == nil && msgPtr != 0 {
		if s, rerr := ffi.ReadCString(mem, msgPtr); rerr == nil {
			msg = s
		}
		rt.Allocator().Free(msgPtr, 0, 1)
	}
	return 0, errors.Native(symbol, int32(code), msg)
}
