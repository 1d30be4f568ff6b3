// Package handle manages ownership of opaque native objects.
//
// A native object is an address inside the native module whose internal
// layout the host never sees: a detector, a matcher, a matrix, a vector. The
// host's only obligations are to pass the address back for calls and to run
// the matching native destructor exactly once.
//
// # Owned wrappers
//
// An Owned wrapper holds one native address and its release function:
//
//	mat := table.Register("Mat", ptr, func(ctx context.Context, p uint32) {
//	    rt.Call(ctx, "cv_Mat_delete", []uint64{uint64(p)})
//	})
//
//	p := mat.Ptr()          // borrow, does not affect ownership
//	mat.Release(ctx)        // destructor runs here, exactly once
//	mat.Release(ctx)        // no-op
//	mat.Ptr()               // panics: use after release
//
// Wrappers are safe to hand to another goroutine but are not meant to be
// shared concurrently; any concurrent use of the underlying native object is
// the caller's responsibility.
//
// # Table
//
// A Table tracks every live wrapper of one native instance so that closing
// the instance can release stragglers before the native memory goes away,
// and so leaks are observable. Observers receive lifecycle events.
package handle
