// Package linedesc provides Go bindings for OpenCV's line_descriptor module
// (line detection, LBD binary descriptors, multi-index-hash matching) running
// as a precompiled WebAssembly module.
//
// The computer-vision algorithms live entirely inside the native build of
// OpenCV plus a thin C glue layer compiled to a core wasm module. This
// library is the host side of that boundary: it loads the module with wazero,
// marshals values in and out of its linear memory, and exposes the
// line_descriptor surface as ordinary Go types.
//
// # Architecture Overview
//
//	linedesc/            Root package with boundary Memory/Allocator interfaces
//	├── native/          wazero engine, module lifecycle, native call plumbing
//	├── ffi/             Marshalling between Go values and the native C ABI
//	├── handle/          Owned wrappers and leak tracking for native objects
//	├── linedescriptor/  The binding surface: KeyLine, detectors, matcher
//	└── errors/          Structured error types for the binding pipeline
//
// # Quick Start
//
//	eng, err := native.NewEngine(ctx, nil)
//	...
//	mod, err := eng.Load(ctx, glueWasm)
//	...
//	inst, err := mod.Instantiate(ctx)
//	defer inst.Close(ctx)
//
//	det, err := linedescriptor.CreateBinaryDescriptor(ctx, inst)
//	defer det.Close(ctx)
//	keylines, err := det.Detect(ctx, img, nil)
package linedesc
