package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
	"github.com/wasmvis/linedesc/native"
)

// Runtime is what the bindings need from the hosted glue module: raw calls
// for infallible entry points, Result-lifted calls for fallible ones, and
// the handle table that tracks native object lifetimes.
type Runtime interface {
	ffi.Runtime

	// CallResult invokes a fallible entry point and returns the raw value
	// area of its Result record.
	CallResult(ctx context.Context, symbol string, args ...uint64) (uint64, error)

	// CallVoid invokes a fallible entry point whose value area is unused.
	CallVoid(ctx context.Context, symbol string, args ...uint64) error

	// Handles is the lifetime table native objects register with.
	Handles() *handle.Table
}

var _ Runtime = (*native.Instance)(nil)
