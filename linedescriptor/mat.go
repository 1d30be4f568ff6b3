package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

// Mat element depths and type composition, mirroring the native constants.
const (
	CV8U  int32 = 0
	CV8S  int32 = 1
	CV16U int32 = 2
	CV16S int32 = 3
	CV32S int32 = 4
	CV32F int32 = 5
	CV64F int32 = 6
)

// MakeType composes a Mat type from a depth and a channel count.
func MakeType(depth, channels int32) int32 {
	return depth + ((channels - 1) << 3)
}

// MatDepth extracts the element depth from a Mat type.
func MatDepth(matType int32) int32 { return matType & 7 }

// MatChannels extracts the channel count from a Mat type.
func MatChannels(matType int32) int32 { return (matType >> 3) + 1 }

// MatElemSize returns the byte size of one element, channels included.
func MatElemSize(matType int32) int32 {
	var depthSize int32
	switch MatDepth(matType) {
	case CV8U, CV8S:
		depthSize = 1
	case CV16U, CV16S:
		depthSize = 2
	case CV32S, CV32F:
		depthSize = 4
	case CV64F:
		depthSize = 8
	}
	return depthSize * MatChannels(matType)
}

const (
	symMatNew      = "cv_Mat_Mat"
	symMatNewSized = "cv_Mat_Mat_int_int_int"
	symMatDelete   = "cv_Mat_delete"
	symMatRows     = "cv_Mat_rows"
	symMatCols     = "cv_Mat_cols"
	symMatType     = "cv_Mat_type"
	symMatData     = "cv_Mat_data"
)

// Mat is a boxed native matrix. The binding surface is the minimum the
// line_descriptor operations need: construction from raw bytes, shape and
// type reads, and reading the element data back out.
type Mat struct {
	rt Runtime
	h  *handle.Owned
}

// NewMat creates an empty matrix, the placeholder the native side accepts
// wherever an optional mask or output matrix is expected.
func NewMat(ctx context.Context, rt Runtime) (*Mat, error) {
	ptr, err := rt.CallResult(ctx, symMatNew)
	if err != nil {
		return nil, err
	}
	return wrapMat(rt, ffi.LiftU32(ptr))
}

// NewMatFromBytes creates a rows x cols matrix of the given type and copies
// data into it. len(data) must be exactly rows*cols*MatElemSize(matType).
func NewMatFromBytes(ctx context.Context, rt Runtime, rows, cols, matType int32, data []byte) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.InvalidInput(errors.PhaseLower, "matrix dimensions must be positive")
	}
	want := int(rows) * int(cols) * int(MatElemSize(matType))
	if len(data) != want {
		return nil, errors.InvalidInput(errors.PhaseLower, "data length does not match rows*cols*elemsize")
	}

	ptr, err := rt.CallResult(ctx, symMatNewSized,
		ffi.LowerI32(rows), ffi.LowerI32(cols), ffi.LowerI32(matType))
	if err != nil {
		return nil, err
	}
	m, err := wrapMat(rt, ffi.LiftU32(ptr))
	if err != nil {
		return nil, err
	}

	dataPtr, err := callValue(ctx, rt, symMatData, uint64(m.h.Ptr()))
	if err != nil {
		m.Close(ctx)
		return nil, err
	}
	if err := rt.Memory().Write(ffi.LiftU32(dataPtr), data); err != nil {
		m.Close(ctx)
		return nil, err
	}
	return m, nil
}

func wrapMat(rt Runtime, ptr uint32) (*Mat, error) {
	h := rt.Handles().Register("Mat", ptr, releaseVia(rt, symMatDelete))
	if h == nil {
		return nil, errors.NotInitialized("handle table")
	}
	return &Mat{rt: rt, h: h}, nil
}

// Rows returns the row count.
func (m *Mat) Rows(ctx context.Context) (int32, error) {
	v, err := callValue(ctx, m.rt, symMatRows, uint64(m.h.Ptr()))
	return ffi.LiftI32(v), err
}

// Cols returns the column count.
func (m *Mat) Cols(ctx context.Context) (int32, error) {
	v, err := callValue(ctx, m.rt, symMatCols, uint64(m.h.Ptr()))
	return ffi.LiftI32(v), err
}

// Type returns the composed element type.
func (m *Mat) Type(ctx context.Context) (int32, error) {
	v, err := callValue(ctx, m.rt, symMatType, uint64(m.h.Ptr()))
	return ffi.LiftI32(v), err
}

// Data copies the element data out of native memory. The matrix is assumed
// continuous, which holds for every matrix this package creates or receives.
func (m *Mat) Data(ctx context.Context) ([]byte, error) {
	rows, err := m.Rows(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := m.Cols(ctx)
	if err != nil {
		return nil, err
	}
	matType, err := m.Type(ctx)
	if err != nil {
		return nil, err
	}
	n := uint32(rows) * uint32(cols) * uint32(MatElemSize(matType))
	if n == 0 {
		return nil, nil
	}

	dataPtr, err := callValue(ctx, m.rt, symMatData, uint64(m.h.Ptr()))
	if err != nil {
		return nil, err
	}
	raw, err := m.rt.Memory().Read(ffi.LiftU32(dataPtr), n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, raw)
	return out, nil
}

// Ptr is the native pointer for borrow call sites.
func (m *Mat) Ptr() uint32 { return m.h.Ptr() }

// PtrMut is the native pointer for mutating call sites.
func (m *Mat) PtrMut() uint32 { return m.h.PtrMut() }

// Close releases the native matrix. Idempotent.
func (m *Mat) Close(ctx context.Context) { m.h.Release(ctx) }

// Closed reports whether the matrix has been released.
func (m *Mat) Closed() bool { return m.h.Released() }
