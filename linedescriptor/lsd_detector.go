package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

const (
	symLSDNew         = "cv_line_descriptor_LSDDetector_LSDDetector"
	symLSDNewParams   = "cv_line_descriptor_LSDDetector_LSDDetector_LSDParam"
	symLSDDelete      = "cv_LSDDetector_delete"
	symLSDDetect      = "cv_line_descriptor_LSDDetector_detect_const_MatR_vector_KeyLine_R_int_int_const_MatR"
	symLSDDetectMulti = "cv_line_descriptor_LSDDetector_detect_const_const_vector_Mat_R_vector_vector_KeyLine__R_int_int_const_vector_Mat_R"
)

// LSDDetector extracts lines with the LSD algorithm over a Gaussian
// pyramid. KeyLine.ClassID indexes the extraction order inside one octave.
type LSDDetector struct {
	rt Runtime
	h  *handle.Owned
}

// NewLSDDetector creates a detector with the native default parameters.
func NewLSDDetector(ctx context.Context, rt Runtime) (*LSDDetector, error) {
	ptr, err := rt.CallResult(ctx, symLSDNew)
	if err != nil {
		return nil, err
	}
	return wrapLSDDetector(rt, ffi.LiftU32(ptr))
}

// NewLSDDetectorWithParams creates a detector with explicit LSD tuning.
func NewLSDDetectorWithParams(ctx context.Context, rt Runtime, params LSDParam) (*LSDDetector, error) {
	box, err := ffi.NewPlainBox(rt, params)
	if err != nil {
		return nil, err
	}
	defer box.Free()

	ptr, err := rt.CallResult(ctx, symLSDNewParams, uint64(box.ExternPtr()))
	if err != nil {
		return nil, err
	}
	return wrapLSDDetector(rt, ffi.LiftU32(ptr))
}

func wrapLSDDetector(rt Runtime, ptr uint32) (*LSDDetector, error) {
	h := rt.Handles().Register("LSDDetector", ptr, releaseVia(rt, symLSDDelete))
	if h == nil {
		return nil, errors.NotInitialized("handle table")
	}
	return &LSDDetector{rt: rt, h: h}, nil
}

// Detect extracts lines from a grayscale image. scale is the pyramid
// downscale factor between octaves, numOctaves the pyramid depth. A nil
// mask means no mask.
func (d *LSDDetector) Detect(ctx context.Context, image *Mat, scale, numOctaves int32, mask *Mat) ([]KeyLine, error) {
	lines, err := NewVectorKeyLine(ctx, d.rt)
	if err != nil {
		return nil, err
	}
	defer lines.Close(ctx)

	maskPtr, cleanup, err := maskOrEmpty(ctx, d.rt, mask)
	if err != nil {
		return nil, err
	}
	defer cleanup(ctx)

	if err := d.rt.CallVoid(ctx, symLSDDetect,
		uint64(d.h.PtrMut()), uint64(image.Ptr()), uint64(lines.PtrMut()),
		ffi.LowerI32(scale), ffi.LowerI32(numOctaves), uint64(maskPtr)); err != nil {
		return nil, err
	}
	return lines.ToSlice(ctx)
}

// DetectMultiple extracts lines from several images at once. masks may be
// nil or must have one entry per image.
func (d *LSDDetector) DetectMultiple(ctx context.Context, images []*Mat, scale, numOctaves int32, masks []*Mat) ([][]KeyLine, error) {
	imageVec, err := NewVectorMatFrom(ctx, d.rt, images)
	if err != nil {
		return nil, err
	}
	defer imageVec.Close(ctx)

	maskVec, err := NewVectorMatFrom(ctx, d.rt, masks)
	if err != nil {
		return nil, err
	}
	defer maskVec.Close(ctx)

	lines, err := NewVectorVectorKeyLine(ctx, d.rt)
	if err != nil {
		return nil, err
	}
	defer lines.Close(ctx)

	if err := d.rt.CallVoid(ctx, symLSDDetectMulti,
		uint64(d.h.Ptr()), uint64(imageVec.Ptr()), uint64(lines.PtrMut()),
		ffi.LowerI32(scale), ffi.LowerI32(numOctaves), uint64(maskVec.Ptr())); err != nil {
		return nil, err
	}
	return lines.ToSlices(ctx)
}

// Close releases the native detector. Idempotent.
func (d *LSDDetector) Close(ctx context.Context) { d.h.Release(ctx) }
