package native

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wasmvis/linedesc/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB
	// each). 0 means the wazero default (65536 pages = 4GB). OpenCV needs
	// room for pyramids: 4096 pages = 256MB is a reasonable floor.
	MemoryLimitPages uint32
}

// Engine owns the wazero runtime that hosts glue module instances.
type Engine struct {
	runtime      wazero.Runtime
	wasiInitMu   sync.Mutex
	wasiInitDone atomic.Bool
}

// NewEngine creates a wazero-backed engine.
func NewEngine(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
	}, nil
}

// Close releases the runtime. All instances must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// Load compiles the glue binary. The module is compiled once and may be
// instantiated multiple times.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	if len(wasmBytes) < 4 || !bytes.Equal(wasmBytes[:4], wasmMagic) {
		return nil, errors.InvalidInput(errors.PhaseLoad, "not a wasm binary")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile glue module", err)
	}

	return &Module{engine: e, compiled: compiled}, nil
}

// initWASI instantiates the WASI host module the libc build of the glue
// imports. Safe for concurrent calls from multiple modules sharing the
// engine.
func (e *Engine) initWASI(ctx context.Context) error {
	if e.wasiInitDone.Load() {
		return nil
	}

	e.wasiInitMu.Lock()
	defer e.wasiInitMu.Unlock()

	if e.wasiInitDone.Load() {
		return nil
	}

	if e.runtime.Module(wasi_snapshot_preview1.ModuleName) == nil {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, e.runtime); err != nil {
			if e.runtime.Module(wasi_snapshot_preview1.ModuleName) == nil {
				return errors.Load("instantiate WASI", err)
			}
		}
	}

	e.wasiInitDone.Store(true)
	return nil
}

// Module is a compiled glue binary.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
