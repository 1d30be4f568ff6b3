// Package native hosts the precompiled OpenCV glue module and provides the
// call plumbing the bindings run on.
//
// The glue is a core WebAssembly module built from OpenCV plus a thin C
// layer that catches exceptions at the boundary. This package loads it with
// wazero, discovers its allocator, and exposes the narrow surface the
// marshalling layer needs: linear memory, an allocator, and entry point
// invocation by exported name.
//
// # Glue ABI
//
// Entry points use the flat C symbol naming of the glue layer, e.g.
//
//	cv_line_descriptor_BinaryDescriptor_createBinaryDescriptor
//	cv_LSDDetector_delete
//
// Fallible entry points return through a 16-byte Result record written at a
// host-allocated address passed as the first argument (the wasm32 struct
// return convention):
//
//	offset 0  i32  code   0 = ok, nonzero = caught native exception
//	offset 4  i32  msg    NUL-terminated exception message, malloc-owned
//	offset 8  u64  value  return value area: pointer, scalar, or unused
//
// Instance.CallResult allocates the record, performs the call, and lifts the
// outcome; a nonzero code becomes an errors.Native error and the message
// buffer is returned to the glue's allocator. Infallible entry points
// (vector accessors, destructors, property reads) return their value
// directly through the call stack and are invoked with Instance.Call.
//
// The glue exports its allocator as ocvrs_malloc/ocvrs_free; plain
// malloc/free from the libc build are accepted as a fallback. Owned strings
// crossing the boundary are opaque objects read back through
// ocvrs_string_data/ocvrs_string_len and released with ocvrs_string_free.
package native
