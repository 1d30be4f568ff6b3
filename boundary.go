package linedesc

import "context"

// Memory is the linear memory of the native module.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of the native module's memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates memory inside the native module.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Caller invokes a native entry point by its exported name. The stack slice
// carries flattened arguments in and results out, wazero-style.
type Caller interface {
	Call(ctx context.Context, name string, stack []uint64) error
}
