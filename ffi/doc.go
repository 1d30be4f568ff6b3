// Package ffi converts Go values to and from the representations expected by
// the native module's C ABI.
//
// Values cross the boundary in three categories:
//
//   - Scalars (numbers, booleans, raw pointers) pass by value through 64-bit
//     stack slots. Lower* and Lift* are exact inverses.
//   - Fixed-layout aggregates (Plain) are written to and read from native
//     memory by explicit little-endian field layout. The layout must match
//     the wasm32 C ABI of the native record bit for bit; sizes are asserted
//     in tests.
//   - Opaque native objects are referenced only by address; ownership lives
//     in package handle.
//
// Two special cases need an intermediate per-call container in native
// memory: text (CString, NUL-terminated) and raw byte buffers (Bytes,
// pointer plus length). Containers implement Container and are freed
// immediately after the call they were created for.
//
// Conversion into a CString has a fallible path (NewCString, which rejects
// interior NUL bytes) and a lossy path (NewCStringLossy, which truncates at
// the first NUL and never fails on content). This is the only recoverable
// error in the package; everything else is either infallible or a caller
// contract whose violation panics.
package ffi
