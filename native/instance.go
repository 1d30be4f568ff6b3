package native

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	linedesc "github.com/wasmvis/linedesc"
	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

// Allocator export fallback chain: the glue's own wrappers first, then the
// libc exports of a wasi-sdk build.
const (
	glueMalloc = "ocvrs_malloc"
	glueFree   = "ocvrs_free"
	libcMalloc = "malloc"
	libcFree   = "free"
)

// wasi-libc reactor modules export _initialize instead of _start.
const reactorInit = "_initialize"

// Instantiate creates a running instance of the glue module.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	if err := m.engine.initWASI(ctx); err != nil {
		return nil, err
	}

	modConfig := wazero.NewModuleConfig().
		WithName(""). // anonymous, so instances can coexist
		WithStartFunctions(reactorInit)

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Load("instantiate glue module", err)
	}

	inst := &Instance{
		mod:       mod,
		handles:   handle.NewTable(),
		funcCache: make(map[string]api.Function, 64),
	}

	mem := mod.Memory()
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, errors.Load("glue module exports no memory", nil)
	}
	inst.memory = &GuestMemory{mem: mem}

	allocFn := mod.ExportedFunction(glueMalloc)
	if allocFn == nil {
		allocFn = mod.ExportedFunction(libcMalloc)
	}
	freeFn := mod.ExportedFunction(glueFree)
	if freeFn == nil {
		freeFn = mod.ExportedFunction(libcFree)
	}
	if allocFn == nil || freeFn == nil {
		_ = mod.Close(ctx)
		return nil, errors.Load("glue module exports no allocator", nil)
	}
	debugf("allocator exports resolved: %s/%s",
		allocFn.Definition().Name(), freeFn.Definition().Name())
	inst.alloc = &guestAllocator{
		allocFn:  allocFn,
		freeFn:   freeFn,
		stackBuf: make([]uint64, 4),
	}

	return inst, nil
}

// Instance is a running glue module. Calls are synchronous; an Instance is
// not meant for concurrent use from multiple goroutines.
type Instance struct {
	mod       api.Module
	memory    *GuestMemory
	alloc     *guestAllocator
	handles   *handle.Table
	funcCache map[string]api.Function
	cacheMu   sync.RWMutex
}

// Memory returns the instance's linear memory.
func (i *Instance) Memory() linedesc.Memory {
	return i.memory
}

// Allocator returns the instance's native allocator.
func (i *Instance) Allocator() linedesc.Allocator {
	return i.alloc
}

// Handles returns the table tracking this instance's live native objects.
func (i *Instance) Handles() *handle.Table {
	return i.handles
}

// Call invokes a native entry point by exported name. The stack carries
// flattened arguments in and results out.
func (i *Instance) Call(ctx context.Context, name string, stack []uint64) error {
	if i.mod == nil {
		return errors.NotInitialized("instance")
	}

	i.cacheMu.RLock()
	fn, ok := i.funcCache[name]
	i.cacheMu.RUnlock()

	if !ok {
		fn = i.mod.ExportedFunction(name)
		if fn == nil {
			return errors.NotFound("export", name)
		}
		i.cacheMu.Lock()
		i.funcCache[name] = fn
		i.cacheMu.Unlock()
	}

	i.alloc.setContext(ctx)
	if err := fn.CallWithStack(ctx, stack); err != nil {
		return errors.New(errors.PhaseCall, errors.KindNative).
			Symbol(name).
			Cause(err).
			Detail("native call trapped").
			Build()
	}
	return nil
}

// Close releases every tracked native object, then the wasm instance.
func (i *Instance) Close(ctx context.Context) error {
	if i.mod == nil {
		return nil
	}

	if n := i.handles.Len(); n > 0 {
		Logger().Debug("releasing leaked native objects on close",
			zap.Int("count", n))
	}
	i.handles.Close(ctx)

	err := i.mod.Close(ctx)
	i.mod = nil
	i.funcCache = nil
	i.memory = nil
	i.alloc = nil
	return err
}

var _ ffi.Runtime = (*Instance)(nil)
