// Package errors provides structured error types for the binding pipeline.
//
// Errors carry a Phase (where in the pipeline: load, lower, call, lift,
// runtime) and a Kind (what went wrong). Two tiers exist:
//
// Recoverable errors are ordinary values returned to callers, e.g. the
// embedded-NUL failure when lowering a Go string into a NUL-terminated
// native buffer:
//
//	cs, err := ffi.NewCString(rt, s)
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseLower, Kind: errors.KindEmbeddedNul}) {
//	    ...
//	}
//
// Native exceptions caught by the glue layer surface as KindNative errors
// carrying the native code and message.
//
// Contract violations (calling ExternMove on a borrow-only container, using
// an object after release where the misuse is detectable) are panics, not
// errors: they indicate a bug in the caller, never a runtime condition.
package errors
