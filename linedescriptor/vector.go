package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

// Native vector wrappers. The glue exposes one symbol family per
// instantiation; plain-element vectors move elements through a scratch
// record, boxed-element vectors move pointers.

type vector struct {
	rt Runtime
	h  *handle.Owned
}

func newVector(ctx context.Context, rt Runtime, kind, symNew, symDelete string) (vector, error) {
	ptr, err := callValue(ctx, rt, symNew)
	if err != nil {
		return vector{}, err
	}
	return wrapVector(rt, ffi.LiftU32(ptr), kind, symDelete)
}

func wrapVector(rt Runtime, ptr uint32, kind, symDelete string) (vector, error) {
	h := rt.Handles().Register(kind, ptr, releaseVia(rt, symDelete))
	if h == nil {
		return vector{}, errors.NotInitialized("handle table")
	}
	return vector{rt: rt, h: h}, nil
}

func (v *vector) len(ctx context.Context, symLen string) (int, error) {
	n, err := callValue(ctx, v.rt, symLen, uint64(v.h.Ptr()))
	return int(ffi.LiftI32(n)), err
}

// pushPlain copies one record into the vector through a scratch allocation.
func (v *vector) pushPlain(ctx context.Context, symPush string, e ffi.Plain) error {
	box, err := ffi.NewPlainBox(v.rt, e)
	if err != nil {
		return err
	}
	defer box.Free()
	return callNoValue(ctx, v.rt, symPush, uint64(v.h.PtrMut()), uint64(box.ExternPtr()))
}

// getPlain reads the record at index i into e through a scratch allocation.
func (v *vector) getPlain(ctx context.Context, symGet string, i int, e ffi.PlainGetter) error {
	box, err := ffi.NewPlainBox(v.rt, e)
	if err != nil {
		return err
	}
	defer box.Free()
	if err := callNoValue(ctx, v.rt, symGet,
		uint64(v.h.Ptr()), ffi.LowerI32(int32(i)), uint64(box.ExternPtrMut())); err != nil {
		return err
	}
	return box.ReadBack(e)
}

// Ptr is the native pointer for borrow call sites.
func (v *vector) Ptr() uint32 { return v.h.Ptr() }

// PtrMut is the native pointer for mutating call sites.
func (v *vector) PtrMut() uint32 { return v.h.PtrMut() }

// Close releases the native vector. Idempotent.
func (v *vector) Close(ctx context.Context) { v.h.Release(ctx) }

// VectorKeyLine wraps a native std::vector<KeyLine>.
type VectorKeyLine struct {
	vector
}

const (
	symVecKeyLineNew    = "cv_VectorOfKeyLine_new"
	symVecKeyLineDelete = "cv_VectorOfKeyLine_delete"
	symVecKeyLineLen    = "cv_VectorOfKeyLine_len"
	symVecKeyLinePush   = "cv_VectorOfKeyLine_push"
	symVecKeyLineGet    = "cv_VectorOfKeyLine_get"
)

func NewVectorKeyLine(ctx context.Context, rt Runtime) (*VectorKeyLine, error) {
	v, err := newVector(ctx, rt, "VectorKeyLine", symVecKeyLineNew, symVecKeyLineDelete)
	if err != nil {
		return nil, err
	}
	return &VectorKeyLine{vector: v}, nil
}

// NewVectorKeyLineFrom builds a native vector holding lines.
func NewVectorKeyLineFrom(ctx context.Context, rt Runtime, lines []KeyLine) (*VectorKeyLine, error) {
	v, err := NewVectorKeyLine(ctx, rt)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if err := v.Push(ctx, lines[i]); err != nil {
			v.Close(ctx)
			return nil, err
		}
	}
	return v, nil
}

func wrapVectorKeyLine(rt Runtime, ptr uint32) (*VectorKeyLine, error) {
	v, err := wrapVector(rt, ptr, "VectorKeyLine", symVecKeyLineDelete)
	if err != nil {
		return nil, err
	}
	return &VectorKeyLine{vector: v}, nil
}

func (v *VectorKeyLine) Len(ctx context.Context) (int, error) {
	return v.len(ctx, symVecKeyLineLen)
}

func (v *VectorKeyLine) Push(ctx context.Context, k KeyLine) error {
	return v.pushPlain(ctx, symVecKeyLinePush, k)
}

func (v *VectorKeyLine) Get(ctx context.Context, i int) (KeyLine, error) {
	var k KeyLine
	err := v.getPlain(ctx, symVecKeyLineGet, i, &k)
	return k, err
}

// ToSlice copies the whole vector out.
func (v *VectorKeyLine) ToSlice(ctx context.Context) ([]KeyLine, error) {
	n, err := v.Len(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]KeyLine, n)
	for i := 0; i < n; i++ {
		if err := v.getPlain(ctx, symVecKeyLineGet, i, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// VectorDMatch wraps a native std::vector<DMatch>.
type VectorDMatch struct {
	vector
}

const (
	symVecDMatchNew    = "cv_VectorOfDMatch_new"
	symVecDMatchDelete = "cv_VectorOfDMatch_delete"
	symVecDMatchLen    = "cv_VectorOfDMatch_len"
	symVecDMatchPush   = "cv_VectorOfDMatch_push"
	symVecDMatchGet    = "cv_VectorOfDMatch_get"
)

func NewVectorDMatch(ctx context.Context, rt Runtime) (*VectorDMatch, error) {
	v, err := newVector(ctx, rt, "VectorDMatch", symVecDMatchNew, symVecDMatchDelete)
	if err != nil {
		return nil, err
	}
	return &VectorDMatch{vector: v}, nil
}

func wrapVectorDMatch(rt Runtime, ptr uint32) (*VectorDMatch, error) {
	v, err := wrapVector(rt, ptr, "VectorDMatch", symVecDMatchDelete)
	if err != nil {
		return nil, err
	}
	return &VectorDMatch{vector: v}, nil
}

func (v *VectorDMatch) Len(ctx context.Context) (int, error) {
	return v.len(ctx, symVecDMatchLen)
}

func (v *VectorDMatch) Push(ctx context.Context, d DMatch) error {
	return v.pushPlain(ctx, symVecDMatchPush, d)
}

func (v *VectorDMatch) Get(ctx context.Context, i int) (DMatch, error) {
	var d DMatch
	err := v.getPlain(ctx, symVecDMatchGet, i, &d)
	return d, err
}

func (v *VectorDMatch) ToSlice(ctx context.Context) ([]DMatch, error) {
	n, err := v.Len(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DMatch, n)
	for i := 0; i < n; i++ {
		if err := v.getPlain(ctx, symVecDMatchGet, i, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// VectorVectorKeyLine wraps a native std::vector<std::vector<KeyLine>>.
// Get returns a freshly boxed inner vector owned by the caller.
type VectorVectorKeyLine struct {
	vector
}

const (
	symVecVecKeyLineNew    = "cv_VectorOfVectorOfKeyLine_new"
	symVecVecKeyLineDelete = "cv_VectorOfVectorOfKeyLine_delete"
	symVecVecKeyLineLen    = "cv_VectorOfVectorOfKeyLine_len"
	symVecVecKeyLinePush   = "cv_VectorOfVectorOfKeyLine_push"
	symVecVecKeyLineGet    = "cv_VectorOfVectorOfKeyLine_get"
)

func NewVectorVectorKeyLine(ctx context.Context, rt Runtime) (*VectorVectorKeyLine, error) {
	v, err := newVector(ctx, rt, "VectorVectorKeyLine", symVecVecKeyLineNew, symVecVecKeyLineDelete)
	if err != nil {
		return nil, err
	}
	return &VectorVectorKeyLine{vector: v}, nil
}

func (v *VectorVectorKeyLine) Len(ctx context.Context) (int, error) {
	return v.len(ctx, symVecVecKeyLineLen)
}

// Push copies inner into the outer vector. inner stays owned by the caller.
func (v *VectorVectorKeyLine) Push(ctx context.Context, inner *VectorKeyLine) error {
	return callNoValue(ctx, v.rt, symVecVecKeyLinePush, uint64(v.h.PtrMut()), uint64(inner.Ptr()))
}

func (v *VectorVectorKeyLine) Get(ctx context.Context, i int) (*VectorKeyLine, error) {
	ptr, err := callValue(ctx, v.rt, symVecVecKeyLineGet,
		uint64(v.h.Ptr()), ffi.LowerI32(int32(i)))
	if err != nil {
		return nil, err
	}
	return wrapVectorKeyLine(v.rt, ffi.LiftU32(ptr))
}

// ToSlices copies every inner vector out.
func (v *VectorVectorKeyLine) ToSlices(ctx context.Context) ([][]KeyLine, error) {
	n, err := v.Len(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]KeyLine, n)
	for i := 0; i < n; i++ {
		inner, err := v.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i], err = inner.ToSlice(ctx)
		inner.Close(ctx)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// VectorVectorDMatch wraps a native std::vector<std::vector<DMatch>>.
type VectorVectorDMatch struct {
	vector
}

const (
	symVecVecDMatchNew    = "cv_VectorOfVectorOfDMatch_new"
	symVecVecDMatchDelete = "cv_VectorOfVectorOfDMatch_delete"
	symVecVecDMatchLen    = "cv_VectorOfVectorOfDMatch_len"
	symVecVecDMatchGet    = "cv_VectorOfVectorOfDMatch_get"
)

func NewVectorVectorDMatch(ctx context.Context, rt Runtime) (*VectorVectorDMatch, error) {
	v, err := newVector(ctx, rt, "VectorVectorDMatch", symVecVecDMatchNew, symVecVecDMatchDelete)
	if err != nil {
		return nil, err
	}
	return &VectorVectorDMatch{vector: v}, nil
}

func (v *VectorVectorDMatch) Len(ctx context.Context) (int, error) {
	return v.len(ctx, symVecVecDMatchLen)
}

func (v *VectorVectorDMatch) Get(ctx context.Context, i int) (*VectorDMatch, error) {
	ptr, err := callValue(ctx, v.rt, symVecVecDMatchGet,
		uint64(v.h.Ptr()), ffi.LowerI32(int32(i)))
	if err != nil {
		return nil, err
	}
	return wrapVectorDMatch(v.rt, ffi.LiftU32(ptr))
}

func (v *VectorVectorDMatch) ToSlices(ctx context.Context) ([][]DMatch, error) {
	n, err := v.Len(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]DMatch, n)
	for i := 0; i < n; i++ {
		inner, err := v.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i], err = inner.ToSlice(ctx)
		inner.Close(ctx)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// VectorMat wraps a native std::vector<Mat>. Push copies the matrix header,
// so the pushed Mat stays owned by the caller; Get returns a freshly boxed
// matrix sharing the element data.
type VectorMat struct {
	vector
}

const (
	symVecMatNew    = "cv_VectorOfMat_new"
	symVecMatDelete = "cv_VectorOfMat_delete"
	symVecMatLen    = "cv_VectorOfMat_len"
	symVecMatPush   = "cv_VectorOfMat_push"
	symVecMatGet    = "cv_VectorOfMat_get"
)

func NewVectorMat(ctx context.Context, rt Runtime) (*VectorMat, error) {
	v, err := newVector(ctx, rt, "VectorMat", symVecMatNew, symVecMatDelete)
	if err != nil {
		return nil, err
	}
	return &VectorMat{vector: v}, nil
}

// NewVectorMatFrom builds a native vector holding the given matrices. The
// matrices stay owned by the caller.
func NewVectorMatFrom(ctx context.Context, rt Runtime, mats []*Mat) (*VectorMat, error) {
	v, err := NewVectorMat(ctx, rt)
	if err != nil {
		return nil, err
	}
	for _, m := range mats {
		if err := v.Push(ctx, m); err != nil {
			v.Close(ctx)
			return nil, err
		}
	}
	return v, nil
}

func (v *VectorMat) Len(ctx context.Context) (int, error) {
	return v.len(ctx, symVecMatLen)
}

func (v *VectorMat) Push(ctx context.Context, m *Mat) error {
	return callNoValue(ctx, v.rt, symVecMatPush, uint64(v.h.PtrMut()), uint64(m.Ptr()))
}

func (v *VectorMat) Get(ctx context.Context, i int) (*Mat, error) {
	ptr, err := callValue(ctx, v.rt, symVecMatGet,
		uint64(v.h.Ptr()), ffi.LowerI32(int32(i)))
	if err != nil {
		return nil, err
	}
	return wrapMat(v.rt, ffi.LiftU32(ptr))
}

// VectorByte wraps a native std::vector<char>, used for match masks.
type VectorByte struct {
	vector
}

const (
	symVecByteNew    = "cv_VectorOfchar_new"
	symVecByteDelete = "cv_VectorOfchar_delete"
	symVecByteLen    = "cv_VectorOfchar_len"
	symVecBytePush   = "cv_VectorOfchar_push"
)

func NewVectorByte(ctx context.Context, rt Runtime) (*VectorByte, error) {
	v, err := newVector(ctx, rt, "VectorByte", symVecByteNew, symVecByteDelete)
	if err != nil {
		return nil, err
	}
	return &VectorByte{vector: v}, nil
}

// NewVectorByteFrom builds a native vector holding b.
func NewVectorByteFrom(ctx context.Context, rt Runtime, b []byte) (*VectorByte, error) {
	v, err := NewVectorByte(ctx, rt)
	if err != nil {
		return nil, err
	}
	for _, e := range b {
		if err := v.Push(ctx, e); err != nil {
			v.Close(ctx)
			return nil, err
		}
	}
	return v, nil
}

func (v *VectorByte) Len(ctx context.Context) (int, error) {
	return v.len(ctx, symVecByteLen)
}

func (v *VectorByte) Push(ctx context.Context, b byte) error {
	return callNoValue(ctx, v.rt, symVecBytePush, uint64(v.h.PtrMut()), uint64(b))
}
