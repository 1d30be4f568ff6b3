package native

import (
	"context"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	linedesc "github.com/wasmvis/linedesc"
	"github.com/wasmvis/linedesc/errors"
)

type fakeMemory struct {
	data []byte
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return nil, fmt.Errorf("read out of bounds")
	}
	return m.data[offset : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return fmt.Errorf("write out of bounds")
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *fakeMemory) ReadU64(offset uint32) (uint64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *fakeMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *fakeMemory) WriteU32(offset uint32, value uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) WriteU64(offset uint32, value uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], value)
	return m.Write(offset, b[:])
}

type fakeAlloc struct {
	frees map[uint32]int
}

func (a *fakeAlloc) Alloc(size, align uint32) (uint32, error) { return 0, fmt.Errorf("unused") }
func (a *fakeAlloc) Free(ptr, size, align uint32)             { a.frees[ptr]++ }

type fakeRuntime struct {
	mem   *fakeMemory
	alloc *fakeAlloc
}

func (rt *fakeRuntime) Memory() linedesc.Memory       { return rt.mem }
func (rt *fakeRuntime) Allocator() linedesc.Allocator { return rt.alloc }
func (rt *fakeRuntime) Call(context.Context, string, []uint64) error {
	return fmt.Errorf("unused")
}

func newResultFixture() *fakeRuntime {
	return &fakeRuntime{
		mem:   &fakeMemory{data: make([]byte, 4096)},
		alloc: &fakeAlloc{frees: make(map[uint32]int)},
	}
}

func TestLiftResult_OK(t *testing.T) {
	rt := newResultFixture()
	const rp = 64

	// code 0, value 0xdeadbeef
	if err := rt.mem.WriteU32(rp, 0); err != nil {
		t.Fatal(err)
	}
	if err := rt.mem.WriteU64(rp+resultValueOff, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}

	v, err := liftResult(rt, "cv_Mat_rows", rp)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Errorf("value = %#x, want 0xdeadbeef", v)
	}
}

func TestLiftResult_NativeError(t *testing.T) {
	rt := newResultFixture()
	const rp = 64
	const msgPtr = 512

	msg := "OpenCV(3.4) empty query matrix"
	copy(rt.mem.data[msgPtr:], append([]byte(msg), 0))

	code := int32(-215)
	if err := rt.mem.WriteU32(rp, uint32(code)); err != nil {
		t.Fatal(err)
	}
	if err := rt.mem.WriteU32(rp+resultMsgOff, msgPtr); err != nil {
		t.Fatal(err)
	}

	_, err := liftResult(rt, "cv_line_descriptor_BinaryDescriptorMatcher_match", rp)
	if err == nil {
		t.Fatal("expected native error")
	}

	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("wrong error type %T", err)
	}
	if e.Kind != errors.KindNative || e.Code != -215 {
		t.Errorf("got kind %q code %d", e.Kind, e.Code)
	}
	if !strings.Contains(e.Detail, "empty query matrix") {
		t.Errorf("message not lifted: %q", e.Detail)
	}
	if rt.alloc.frees[msgPtr] != 1 {
		t.Errorf("message buffer freed %d times, want 1", rt.alloc.frees[msgPtr])
	}
}

func TestLiftResult_ErrorWithoutMessage(t *testing.T) {
	rt := newResultFixture()
	const rp = 64

	if err := rt.mem.WriteU32(rp, 1); err != nil {
		t.Fatal(err)
	}
	// msg pointer left 0

	_, err := liftResult(rt, "cv_Mat_Mat", rp)
	if err == nil {
		t.Fatal("expected error")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != 1 {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestEngine_LoadRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	eng, err := NewEngine(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	if _, err := eng.Load(ctx, []byte("not a wasm binary")); err == nil {
		t.Fatal("expected load failure for non-wasm input")
	}
}
