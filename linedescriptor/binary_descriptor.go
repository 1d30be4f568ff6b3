package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

const (
	symBDNew    = "cv_line_descriptor_BinaryDescriptor_BinaryDescriptor_const_ParamsR"
	symBDCreate = "cv_line_descriptor_BinaryDescriptor_createBinaryDescriptor"
	symBDDelete = "cv_BinaryDescriptor_delete"

	symBDGetNumOfOctaves   = "cv_line_descriptor_BinaryDescriptor_getNumOfOctaves"
	symBDSetNumOfOctaves   = "cv_line_descriptor_BinaryDescriptor_setNumOfOctaves_int"
	symBDGetWidthOfBand    = "cv_line_descriptor_BinaryDescriptor_getWidthOfBand"
	symBDSetWidthOfBand    = "cv_line_descriptor_BinaryDescriptor_setWidthOfBand_int"
	symBDGetReductionRatio = "cv_line_descriptor_BinaryDescriptor_getReductionRatio"
	symBDSetReductionRatio = "cv_line_descriptor_BinaryDescriptor_setReductionRatio_int"

	symBDDetect         = "cv_line_descriptor_BinaryDescriptor_detect_const_MatR_vector_KeyLine_R_const_MatR"
	symBDDetectMulti    = "cv_line_descriptor_BinaryDescriptor_detect_const_const_vector_Mat_R_vector_vector_KeyLine__R_const_vector_Mat_R"
	symBDCompute        = "cv_line_descriptor_BinaryDescriptor_compute_const_const_MatR_vector_KeyLine_R_MatR_bool"
	symBDComputeMulti   = "cv_line_descriptor_BinaryDescriptor_compute_const_const_vector_Mat_R_vector_vector_KeyLine__R_vector_Mat_R_bool"
	symBDDescriptorSize = "cv_line_descriptor_BinaryDescriptor_descriptorSize_const"
	symBDDescriptorType = "cv_line_descriptor_BinaryDescriptor_descriptorType_const"
	symBDDefaultNorm    = "cv_line_descriptor_BinaryDescriptor_defaultNorm_const"
)

// BinaryDescriptor detects lines with the EDLine extractor and computes
// 32-byte binary descriptors over a line support region band.
type BinaryDescriptor struct {
	rt Runtime
	h  *handle.Owned
}

// NewBinaryDescriptor constructs a detector from a parameter object. The
// parameters are copied; params stays owned by the caller.
func NewBinaryDescriptor(ctx context.Context, rt Runtime, params *BinaryDescriptorParams) (*BinaryDescriptor, error) {
	ptr, err := rt.CallResult(ctx, symBDNew, uint64(params.Ptr()))
	if err != nil {
		return nil, err
	}
	return wrapBinaryDescriptor(rt, ffi.LiftU32(ptr))
}

// CreateBinaryDescriptor constructs a detector with default parameters.
func CreateBinaryDescriptor(ctx context.Context, rt Runtime) (*BinaryDescriptor, error) {
	ptr, err := rt.CallResult(ctx, symBDCreate)
	if err != nil {
		return nil, err
	}
	return wrapBinaryDescriptor(rt, ffi.LiftU32(ptr))
}

func wrapBinaryDescriptor(rt Runtime, ptr uint32) (*BinaryDescriptor, error) {
	h := rt.Handles().Register("BinaryDescriptor", ptr, releaseVia(rt, symBDDelete))
	if h == nil {
		return nil, errors.NotInitialized("handle table")
	}
	return &BinaryDescriptor{rt: rt, h: h}, nil
}

func (b *BinaryDescriptor) NumOfOctaves(ctx context.Context) (int32, error) {
	v, err := b.rt.CallResult(ctx, symBDGetNumOfOctaves, uint64(b.h.PtrMut()))
	return ffi.LiftI32(v), err
}

func (b *BinaryDescriptor) SetNumOfOctaves(ctx context.Context, octaves int32) error {
	return b.rt.CallVoid(ctx, symBDSetNumOfOctaves, uint64(b.h.PtrMut()), ffi.LowerI32(octaves))
}

func (b *BinaryDescriptor) WidthOfBand(ctx context.Context) (int32, error) {
	v, err := b.rt.CallResult(ctx, symBDGetWidthOfBand, uint64(b.h.PtrMut()))
	return ffi.LiftI32(v), err
}

func (b *BinaryDescriptor) SetWidthOfBand(ctx context.Context, width int32) error {
	return b.rt.CallVoid(ctx, symBDSetWidthOfBand, uint64(b.h.PtrMut()), ffi.LowerI32(width))
}

func (b *BinaryDescriptor) ReductionRatio(ctx context.Context) (int32, error) {
	v, err := b.rt.CallResult(ctx, symBDGetReductionRatio, uint64(b.h.PtrMut()))
	return ffi.LiftI32(v), err
}

func (b *BinaryDescriptor) SetReductionRatio(ctx context.Context, ratio int32) error {
	return b.rt.CallVoid(ctx, symBDSetReductionRatio, uint64(b.h.PtrMut()), ffi.LowerI32(ratio))
}

// Detect extracts lines from a grayscale image. A nil mask means no mask.
func (b *BinaryDescriptor) Detect(ctx context.Context, image *Mat, mask *Mat) ([]KeyLine, error) {
	lines, err := NewVectorKeyLine(ctx, b.rt)
	if err != nil {
		return nil, err
	}
	defer lines.Close(ctx)

	maskPtr, cleanup, err := maskOrEmpty(ctx, b.rt, mask)
	if err != nil {
		return nil, err
	}
	defer cleanup(ctx)

	if err := b.rt.CallVoid(ctx, symBDDetect,
		uint64(b.h.PtrMut()), uint64(image.Ptr()), uint64(lines.PtrMut()), uint64(maskPtr)); err != nil {
		return nil, err
	}
	return lines.ToSlice(ctx)
}

// DetectMultiple extracts lines from several images at once. masks may be
// nil or must have one entry per image.
func (b *BinaryDescriptor) DetectMultiple(ctx context.Context, images []*Mat, masks []*Mat) ([][]KeyLine, error) {
	imageVec, err := NewVectorMatFrom(ctx, b.rt, images)
	if err != nil {
		return nil, err
	}
	defer imageVec.Close(ctx)

	maskVec, err := NewVectorMatFrom(ctx, b.rt, masks)
	if err != nil {
		return nil, err
	}
	defer maskVec.Close(ctx)

	lines, err := NewVectorVectorKeyLine(ctx, b.rt)
	if err != nil {
		return nil, err
	}
	defer lines.Close(ctx)

	if err := b.rt.CallVoid(ctx, symBDDetectMulti,
		uint64(b.h.Ptr()), uint64(imageVec.Ptr()), uint64(lines.PtrMut()), uint64(maskVec.Ptr())); err != nil {
		return nil, err
	}
	return lines.ToSlices(ctx)
}

// Compute builds descriptors for the given lines. The native side may drop
// lines it cannot describe, so the surviving lines are returned next to the
// descriptor matrix: one row per line, 32 bytes unless returnFloatDescr.
// The caller owns the returned Mat.
func (b *BinaryDescriptor) Compute(ctx context.Context, image *Mat, keylines []KeyLine, returnFloatDescr bool) ([]KeyLine, *Mat, error) {
	lines, err := NewVectorKeyLineFrom(ctx, b.rt, keylines)
	if err != nil {
		return nil, nil, err
	}
	defer lines.Close(ctx)

	descriptors, err := NewMat(ctx, b.rt)
	if err != nil {
		return nil, nil, err
	}

	if err := b.rt.CallVoid(ctx, symBDCompute,
		uint64(b.h.Ptr()), uint64(image.Ptr()), uint64(lines.PtrMut()),
		uint64(descriptors.PtrMut()), ffi.LowerBool(returnFloatDescr)); err != nil {
		descriptors.Close(ctx)
		return nil, nil, err
	}

	kept, err := lines.ToSlice(ctx)
	if err != nil {
		descriptors.Close(ctx)
		return nil, nil, err
	}
	return kept, descriptors, nil
}

// ComputeMultiple is Compute over several images. keylines must have one
// entry per image. The caller owns the returned matrices.
func (b *BinaryDescriptor) ComputeMultiple(ctx context.Context, images []*Mat, keylines [][]KeyLine, returnFloatDescr bool) ([][]KeyLine, []*Mat, error) {
	if len(keylines) != len(images) {
		return nil, nil, errors.InvalidInput(errors.PhaseLower, "one keyline set per image required")
	}

	imageVec, err := NewVectorMatFrom(ctx, b.rt, images)
	if err != nil {
		return nil, nil, err
	}
	defer imageVec.Close(ctx)

	lineVec, err := NewVectorVectorKeyLine(ctx, b.rt)
	if err != nil {
		return nil, nil, err
	}
	defer lineVec.Close(ctx)
	for _, set := range keylines {
		inner, err := NewVectorKeyLineFrom(ctx, b.rt, set)
		if err != nil {
			return nil, nil, err
		}
		err = lineVec.Push(ctx, inner)
		inner.Close(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	descVec, err := NewVectorMat(ctx, b.rt)
	if err != nil {
		return nil, nil, err
	}
	defer descVec.Close(ctx)

	if err := b.rt.CallVoid(ctx, symBDComputeMulti,
		uint64(b.h.Ptr()), uint64(imageVec.Ptr()), uint64(lineVec.PtrMut()),
		uint64(descVec.PtrMut()), ffi.LowerBool(returnFloatDescr)); err != nil {
		return nil, nil, err
	}

	kept, err := lineVec.ToSlices(ctx)
	if err != nil {
		return nil, nil, err
	}

	n, err := descVec.Len(ctx)
	if err != nil {
		return nil, nil, err
	}
	descriptors := make([]*Mat, 0, n)
	for i := 0; i < n; i++ {
		m, err := descVec.Get(ctx, i)
		if err != nil {
			for _, d := range descriptors {
				d.Close(ctx)
			}
			return nil, nil, err
		}
		descriptors = append(descriptors, m)
	}
	return kept, descriptors, nil
}

// DescriptorSize returns the descriptor length in bytes.
func (b *BinaryDescriptor) DescriptorSize(ctx context.Context) (int32, error) {
	v, err := b.rt.CallResult(ctx, symBDDescriptorSize, uint64(b.h.Ptr()))
	return ffi.LiftI32(v), err
}

// DescriptorType returns the Mat type of descriptor rows.
func (b *BinaryDescriptor) DescriptorType(ctx context.Context) (int32, error) {
	v, err := b.rt.CallResult(ctx, symBDDescriptorType, uint64(b.h.Ptr()))
	return ffi.LiftI32(v), err
}

// DefaultNorm returns the norm matching should use, NORM_HAMMING.
func (b *BinaryDescriptor) DefaultNorm(ctx context.Context) (int32, error) {
	v, err := b.rt.CallResult(ctx, symBDDefaultNorm, uint64(b.h.Ptr()))
	return ffi.LiftI32(v), err
}

// Close releases the native detector. Idempotent.
func (b *BinaryDescriptor) Close(ctx context.Context) { b.h.Release(ctx) }

// maskOrEmpty resolves an optional mask argument. A nil mask becomes a
// fresh empty matrix released by the returned cleanup.
func maskOrEmpty(ctx context.Context, rt Runtime, mask *Mat) (uint32, func(context.Context), error) {
	if mask != nil {
		return mask.Ptr(), func(context.Context) {}, nil
	}
	empty, err := NewMat(ctx, rt)
	if err != nil {
		return 0, nil, err
	}
	return empty.Ptr(), func(ctx context.Context) { empty.Close(ctx) }, nil
}
