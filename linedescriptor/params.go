package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

const (
	symParamsNew    = "cv_line_descriptor_BinaryDescriptor_Params_Params"
	symParamsDelete = "cv_BinaryDescriptor_Params_delete"

	symParamsGetNumOfOctave    = "cv_line_descriptor_BinaryDescriptor_Params_getPropNumOfOctave__const"
	symParamsSetNumOfOctave    = "cv_line_descriptor_BinaryDescriptor_Params_setPropNumOfOctave__int"
	symParamsGetWidthOfBand    = "cv_line_descriptor_BinaryDescriptor_Params_getPropWidthOfBand__const"
	symParamsSetWidthOfBand    = "cv_line_descriptor_BinaryDescriptor_Params_setPropWidthOfBand__int"
	symParamsGetReductionRatio = "cv_line_descriptor_BinaryDescriptor_Params_getPropReductionRatio_const"
	symParamsSetReductionRatio = "cv_line_descriptor_BinaryDescriptor_Params_setPropReductionRatio_int"
	symParamsGetKsize          = "cv_line_descriptor_BinaryDescriptor_Params_getPropKsize__const"
	symParamsSetKsize          = "cv_line_descriptor_BinaryDescriptor_Params_setPropKsize__int"
)

// BinaryDescriptorParams is the boxed parameter object a BinaryDescriptor
// is constructed from: octave count, band width, image reduction ratio,
// and the Gaussian kernel size used in octave generation.
type BinaryDescriptorParams struct {
	rt Runtime
	h  *handle.Owned
}

// NewBinaryDescriptorParams creates a parameter object with the native
// defaults.
func NewBinaryDescriptorParams(ctx context.Context, rt Runtime) (*BinaryDescriptorParams, error) {
	ptr, err := rt.CallResult(ctx, symParamsNew)
	if err != nil {
		return nil, err
	}
	h := rt.Handles().Register("BinaryDescriptorParams", ffi.LiftU32(ptr), releaseVia(rt, symParamsDelete))
	if h == nil {
		return nil, errors.NotInitialized("handle table")
	}
	return &BinaryDescriptorParams{rt: rt, h: h}, nil
}

func (p *BinaryDescriptorParams) getProp(ctx context.Context, symbol string) (int32, error) {
	v, err := callValue(ctx, p.rt, symbol, uint64(p.h.Ptr()))
	return ffi.LiftI32(v), err
}

func (p *BinaryDescriptorParams) setProp(ctx context.Context, symbol string, v int32) error {
	return callNoValue(ctx, p.rt, symbol, uint64(p.h.PtrMut()), ffi.LowerI32(v))
}

func (p *BinaryDescriptorParams) NumOfOctaves(ctx context.Context) (int32, error) {
	return p.getProp(ctx, symParamsGetNumOfOctave)
}

func (p *BinaryDescriptorParams) SetNumOfOctaves(ctx context.Context, v int32) error {
	return p.setProp(ctx, symParamsSetNumOfOctave, v)
}

func (p *BinaryDescriptorParams) WidthOfBand(ctx context.Context) (int32, error) {
	return p.getProp(ctx, symParamsGetWidthOfBand)
}

func (p *BinaryDescriptorParams) SetWidthOfBand(ctx context.Context, v int32) error {
	return p.setProp(ctx, symParamsSetWidthOfBand, v)
}

func (p *BinaryDescriptorParams) ReductionRatio(ctx context.Context) (int32, error) {
	return p.getProp(ctx, symParamsGetReductionRatio)
}

func (p *BinaryDescriptorParams) SetReductionRatio(ctx context.Context, v int32) error {
	return p.setProp(ctx, symParamsSetReductionRatio, v)
}

func (p *BinaryDescriptorParams) Ksize(ctx context.Context) (int32, error) {
	return p.getProp(ctx, symParamsGetKsize)
}

func (p *BinaryDescriptorParams) SetKsize(ctx context.Context, v int32) error {
	return p.setProp(ctx, symParamsSetKsize, v)
}

// Ptr is the native pointer for borrow call sites.
func (p *BinaryDescriptorParams) Ptr() uint32 { return p.h.Ptr() }

// Close releases the native parameter object. Idempotent.
func (p *BinaryDescriptorParams) Close(ctx context.Context) { p.h.Release(ctx) }
