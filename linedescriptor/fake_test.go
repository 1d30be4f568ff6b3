package linedescriptor

import (
	"context"
	"encoding/binary"
	"fmt"

	linedesc "github.com/wasmvis/linedesc"
	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/handle"
)

// rig fakes the hosted glue module: a byte-slice linear memory, a bump
// allocator, and Go-side object heaps behind fake pointers. Entry points
// with fixed plumbing (vectors, Mat accessors, destructors) are built in;
// the domain entry points are installed per test.
type rig struct {
	mem     *rigMemory
	alloc   *rigAllocator
	handles *handle.Table

	nextPtr uint32

	vecKeyLine    map[uint32][]KeyLine
	vecDMatch     map[uint32][]DMatch
	vecVecKeyLine map[uint32][]uint32
	vecVecDMatch  map[uint32][]uint32
	vecMat        map[uint32][]uint32
	vecByte       map[uint32][]byte
	mats          map[uint32]*rigMat
	objects       map[uint32]string

	deletes map[string]int

	onVoid    map[string]func(args []uint64) error
	onResult  map[string]func(args []uint64) (uint64, error)
	directFns map[string]func(stack []uint64) error
}

type rigMat struct {
	rows, cols, typ int32
	dataPtr         uint32
}

type rigMemory struct {
	data []byte
}

func (m *rigMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return nil, fmt.Errorf("read out of bounds")
	}
	return m.data[offset : offset+length], nil
}

func (m *rigMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return fmt.Errorf("write out of bounds")
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *rigMemory) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *rigMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *rigMemory) ReadU64(offset uint32) (uint64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *rigMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *rigMemory) WriteU32(offset uint32, value uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value)
	return m.Write(offset, b[:])
}

func (m *rigMemory) WriteU64(offset uint32, value uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], value)
	return m.Write(offset, b[:])
}

type rigAllocator struct {
	next   uint32
	allocs int
	frees  int
}

func (a *rigAllocator) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	a.next = (a.next + align - 1) &^ (align - 1)
	ptr := a.next
	a.next += size
	a.allocs++
	return ptr, nil
}

func (a *rigAllocator) Free(ptr, size, align uint32) { a.frees++ }

func newRig() *rig {
	return &rig{
		mem:           &rigMemory{data: make([]byte, 1<<20)},
		alloc:         &rigAllocator{next: 1 << 16},
		handles:       handle.NewTable(),
		nextPtr:       0x1000,
		vecKeyLine:    make(map[uint32][]KeyLine),
		vecDMatch:     make(map[uint32][]DMatch),
		vecVecKeyLine: make(map[uint32][]uint32),
		vecVecDMatch:  make(map[uint32][]uint32),
		vecMat:        make(map[uint32][]uint32),
		vecByte:       make(map[uint32][]byte),
		mats:          make(map[uint32]*rigMat),
		objects:       make(map[uint32]string),
		deletes:       make(map[string]int),
		onVoid:        make(map[string]func(args []uint64) error),
		onResult:      make(map[string]func(args []uint64) (uint64, error)),
		directFns:     make(map[string]func(stack []uint64) error),
	}
}

// direct installs a handler for an infallible entry point.
func (r *rig) direct(name string, fn func(stack []uint64) error) {
	r.directFns[name] = fn
}

func (r *rig) newPtr() uint32 {
	r.nextPtr += 16
	return r.nextPtr
}

func (r *rig) Memory() linedesc.Memory       { return r.mem }
func (r *rig) Allocator() linedesc.Allocator { return r.alloc }
func (r *rig) Handles() *handle.Table        { return r.handles }

func (r *rig) newMat(rows, cols, typ int32) uint32 {
	ptr := r.newPtr()
	m := &rigMat{rows: rows, cols: cols, typ: typ}
	if rows > 0 && cols > 0 {
		n := uint32(rows) * uint32(cols) * uint32(MatElemSize(typ))
		m.dataPtr, _ = r.alloc.Alloc(n, 8)
	}
	r.mats[ptr] = m
	return ptr
}

// setMatData places b in fake memory as the element data of mat ptr.
func (r *rig) setMatData(ptr uint32, b []byte) {
	m := r.mats[ptr]
	if m.dataPtr == 0 {
		m.dataPtr, _ = r.alloc.Alloc(uint32(len(b)), 8)
	}
	copy(r.mem.data[m.dataPtr:], b)
}

func (r *rig) Call(ctx context.Context, name string, stack []uint64) error {
	switch name {

	case symVecKeyLineNew:
		ptr := r.newPtr()
		r.vecKeyLine[ptr] = nil
		stack[0] = uint64(ptr)
	case symVecKeyLineDelete:
		delete(r.vecKeyLine, uint32(stack[0]))
		r.deletes[name]++
	case symVecKeyLineLen:
		stack[0] = uint64(uint32(len(r.vecKeyLine[uint32(stack[0])])))
	case symVecKeyLinePush:
		var k KeyLine
		if err := k.PlainGet(r.mem, uint32(stack[1])); err != nil {
			return err
		}
		ptr := uint32(stack[0])
		r.vecKeyLine[ptr] = append(r.vecKeyLine[ptr], k)
	case symVecKeyLineGet:
		v := r.vecKeyLine[uint32(stack[0])]
		return v[int32(uint32(stack[1]))].PlainPut(r.mem, uint32(stack[2]))

	case symVecDMatchNew:
		ptr := r.newPtr()
		r.vecDMatch[ptr] = nil
		stack[0] = uint64(ptr)
	case symVecDMatchDelete:
		delete(r.vecDMatch, uint32(stack[0]))
		r.deletes[name]++
	case symVecDMatchLen:
		stack[0] = uint64(uint32(len(r.vecDMatch[uint32(stack[0])])))
	case symVecDMatchPush:
		var d DMatch
		if err := d.PlainGet(r.mem, uint32(stack[1])); err != nil {
			return err
		}
		ptr := uint32(stack[0])
		r.vecDMatch[ptr] = append(r.vecDMatch[ptr], d)
	case symVecDMatchGet:
		v := r.vecDMatch[uint32(stack[0])]
		return v[int32(uint32(stack[1]))].PlainPut(r.mem, uint32(stack[2]))

	case symVecVecKeyLineNew:
		ptr := r.newPtr()
		r.vecVecKeyLine[ptr] = nil
		stack[0] = uint64(ptr)
	case symVecVecKeyLineDelete:
		delete(r.vecVecKeyLine, uint32(stack[0]))
		r.deletes[name]++
	case symVecVecKeyLineLen:
		stack[0] = uint64(uint32(len(r.vecVecKeyLine[uint32(stack[0])])))
	case symVecVecKeyLinePush:
		outer := uint32(stack[0])
		inner := uint32(stack[1])
		cp := r.newPtr()
		r.vecKeyLine[cp] = append([]KeyLine(nil), r.vecKeyLine[inner]...)
		r.vecVecKeyLine[outer] = append(r.vecVecKeyLine[outer], cp)
	case symVecVecKeyLineGet:
		v := r.vecVecKeyLine[uint32(stack[0])]
		src := v[int32(uint32(stack[1]))]
		cp := r.newPtr()
		r.vecKeyLine[cp] = append([]KeyLine(nil), r.vecKeyLine[src]...)
		stack[0] = uint64(cp)

	case symVecVecDMatchNew:
		ptr := r.newPtr()
		r.vecVecDMatch[ptr] = nil
		stack[0] = uint64(ptr)
	case symVecVecDMatchDelete:
		delete(r.vecVecDMatch, uint32(stack[0]))
		r.deletes[name]++
	case symVecVecDMatchLen:
		stack[0] = uint64(uint32(len(r.vecVecDMatch[uint32(stack[0])])))
	case symVecVecDMatchGet:
		v := r.vecVecDMatch[uint32(stack[0])]
		src := v[int32(uint32(stack[1]))]
		cp := r.newPtr()
		r.vecDMatch[cp] = append([]DMatch(nil), r.vecDMatch[src]...)
		stack[0] = uint64(cp)

	case symVecMatNew:
		ptr := r.newPtr()
		r.vecMat[ptr] = nil
		stack[0] = uint64(ptr)
	case symVecMatDelete:
		delete(r.vecMat, uint32(stack[0]))
		r.deletes[name]++
	case symVecMatLen:
		stack[0] = uint64(uint32(len(r.vecMat[uint32(stack[0])])))
	case symVecMatPush:
		ptr := uint32(stack[0])
		r.vecMat[ptr] = append(r.vecMat[ptr], uint32(stack[1]))
	case symVecMatGet:
		v := r.vecMat[uint32(stack[0])]
		src := r.mats[v[int32(uint32(stack[1]))]]
		cp := r.newPtr()
		r.mats[cp] = &rigMat{rows: src.rows, cols: src.cols, typ: src.typ, dataPtr: src.dataPtr}
		stack[0] = uint64(cp)

	case symVecByteNew:
		ptr := r.newPtr()
		r.vecByte[ptr] = nil
		stack[0] = uint64(ptr)
	case symVecByteDelete:
		delete(r.vecByte, uint32(stack[0]))
		r.deletes[name]++
	case symVecByteLen:
		stack[0] = uint64(uint32(len(r.vecByte[uint32(stack[0])])))
	case symVecBytePush:
		ptr := uint32(stack[0])
		r.vecByte[ptr] = append(r.vecByte[ptr], byte(stack[1]))

	case symMatDelete:
		delete(r.mats, uint32(stack[0]))
		r.deletes[name]++
	case symMatRows:
		stack[0] = uint64(uint32(r.mats[uint32(stack[0])].rows))
	case symMatCols:
		stack[0] = uint64(uint32(r.mats[uint32(stack[0])].cols))
	case symMatType:
		stack[0] = uint64(uint32(r.mats[uint32(stack[0])].typ))
	case symMatData:
		stack[0] = uint64(r.mats[uint32(stack[0])].dataPtr)

	case symParamsDelete, symBDDelete, symLSDDelete, symBDMDelete:
		delete(r.objects, uint32(stack[0]))
		r.deletes[name]++

	default:
		if fn, ok := r.directFns[name]; ok {
			return fn(stack)
		}
		return errors.NotFound("export", name)
	}
	return nil
}

func (r *rig) CallResult(ctx context.Context, symbol string, args ...uint64) (uint64, error) {
	if fn, ok := r.onResult[symbol]; ok {
		return fn(args)
	}
	switch symbol {
	case symMatNew:
		return uint64(r.newMat(0, 0, CV8U)), nil
	case symMatNewSized:
		rows := int32(uint32(args[0]))
		cols := int32(uint32(args[1]))
		typ := int32(uint32(args[2]))
		return uint64(r.newMat(rows, cols, typ)), nil
	case symParamsNew, symBDNew, symBDCreate, symLSDNew, symLSDNewParams, symBDMNew, symBDMCreate:
		ptr := r.newPtr()
		r.objects[ptr] = symbol
		return uint64(ptr), nil
	}
	return 0, errors.NotFound("export", symbol)
}

func (r *rig) CallVoid(ctx context.Context, symbol string, args ...uint64) error {
	if fn, ok := r.onVoid[symbol]; ok {
		return fn(args)
	}
	_, err := r.CallResult(ctx, symbol, args...)
	return err
}

var _ Runtime = (*rig)(nil)
