package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/errors"
	"github.com/wasmvis/linedesc/ffi"
	"github.com/wasmvis/linedesc/handle"
)

const (
	symBDMNew    = "cv_line_descriptor_BinaryDescriptorMatcher_BinaryDescriptorMatcher"
	symBDMCreate = "cv_line_descriptor_BinaryDescriptorMatcher_createBinaryDescriptorMatcher"
	symBDMDelete = "cv_BinaryDescriptorMatcher_delete"

	symBDMMatch       = "cv_line_descriptor_BinaryDescriptorMatcher_match_const_const_MatR_const_MatR_vector_DMatch_R_const_MatR"
	symBDMMatchQuery  = "cv_line_descriptor_BinaryDescriptorMatcher_match_const_MatR_vector_DMatch_R_const_vector_Mat_R"
	symBDMKnn         = "cv_line_descriptor_BinaryDescriptorMatcher_knnMatch_const_const_MatR_const_MatR_vector_vector_DMatch__R_int_const_MatR_bool"
	symBDMKnnQuery    = "cv_line_descriptor_BinaryDescriptorMatcher_knnMatch_const_MatR_vector_vector_DMatch__R_int_const_vector_Mat_R_bool"
	symBDMRadius      = "cv_line_descriptor_BinaryDescriptorMatcher_radiusMatch_const_const_MatR_const_MatR_vector_vector_DMatch__R_float_const_MatR_bool"
	symBDMRadiusQuery = "cv_line_descriptor_BinaryDescriptorMatcher_radiusMatch_const_MatR_vector_vector_DMatch__R_float_const_vector_Mat_R_bool"

	symBDMAdd   = "cv_line_descriptor_BinaryDescriptorMatcher_add_const_vector_Mat_R"
	symBDMTrain = "cv_line_descriptor_BinaryDescriptorMatcher_train"
	symBDMClear = "cv_line_descriptor_BinaryDescriptorMatcher_clear"
)

// BinaryDescriptorMatcher matches binary line descriptors by Hamming
// distance over a multi-index hash. The one-argument query forms run
// against the descriptors accumulated with Add and indexed with Train.
type BinaryDescriptorMatcher struct {
	rt Runtime
	h  *handle.Owned
}

// NewBinaryDescriptorMatcher creates an empty matcher.
func NewBinaryDescriptorMatcher(ctx context.Context, rt Runtime) (*BinaryDescriptorMatcher, error) {
	ptr, err := rt.CallResult(ctx, symBDMNew)
	if err != nil {
		return nil, err
	}
	return wrapMatcher(rt, ffi.LiftU32(ptr))
}

// CreateBinaryDescriptorMatcher is the factory form of
// NewBinaryDescriptorMatcher.
func CreateBinaryDescriptorMatcher(ctx context.Context, rt Runtime) (*BinaryDescriptorMatcher, error) {
	ptr, err := rt.CallResult(ctx, symBDMCreate)
	if err != nil {
		return nil, err
	}
	return wrapMatcher(rt, ffi.LiftU32(ptr))
}

func wrapMatcher(rt Runtime, ptr uint32) (*BinaryDescriptorMatcher, error) {
	h := rt.Handles().Register("BinaryDescriptorMatcher", ptr, releaseVia(rt, symBDMDelete))
	if h == nil {
		return nil, errors.NotInitialized("handle table")
	}
	return &BinaryDescriptorMatcher{rt: rt, h: h}, nil
}

// Match finds the closest train descriptor for each query descriptor. A
// nil mask means no mask.
func (m *BinaryDescriptorMatcher) Match(ctx context.Context, query, train *Mat, mask *Mat) ([]DMatch, error) {
	matches, err := NewVectorDMatch(ctx, m.rt)
	if err != nil {
		return nil, err
	}
	defer matches.Close(ctx)

	maskPtr, cleanup, err := maskOrEmpty(ctx, m.rt, mask)
	if err != nil {
		return nil, err
	}
	defer cleanup(ctx)

	if err := m.rt.CallVoid(ctx, symBDMMatch,
		uint64(m.h.Ptr()), uint64(query.Ptr()), uint64(train.Ptr()),
		uint64(matches.PtrMut()), uint64(maskPtr)); err != nil {
		return nil, err
	}
	return matches.ToSlice(ctx)
}

// MatchQuery is Match against the trained descriptor collection. masks may
// be nil or must have one entry per added descriptor set.
func (m *BinaryDescriptorMatcher) MatchQuery(ctx context.Context, query *Mat, masks []*Mat) ([]DMatch, error) {
	matches, err := NewVectorDMatch(ctx, m.rt)
	if err != nil {
		return nil, err
	}
	defer matches.Close(ctx)

	maskVec, err := NewVectorMatFrom(ctx, m.rt, masks)
	if err != nil {
		return nil, err
	}
	defer maskVec.Close(ctx)

	if err := m.rt.CallVoid(ctx, symBDMMatchQuery,
		uint64(m.h.PtrMut()), uint64(query.Ptr()), uint64(matches.PtrMut()),
		uint64(maskVec.Ptr())); err != nil {
		return nil, err
	}
	return matches.ToSlice(ctx)
}

// KnnMatch finds the k closest train descriptors per query descriptor.
// With compactResult, queries masked out entirely produce no entry instead
// of an empty one.
func (m *BinaryDescriptorMatcher) KnnMatch(ctx context.Context, query, train *Mat, k int32, mask *Mat, compactResult bool) ([][]DMatch, error) {
	matches, err := NewVectorVectorDMatch(ctx, m.rt)
	if err != nil {
		return nil, err
	}
	defer matches.Close(ctx)

	maskPtr, cleanup, err := maskOrEmpty(ctx, m.rt, mask)
	if err != nil {
		return nil, err
	}
	defer cleanup(ctx)

	if err := m.rt.CallVoid(ctx, symBDMKnn,
		uint64(m.h.Ptr()), uint64(query.Ptr()), uint64(train.Ptr()),
		uint64(matches.PtrMut()), ffi.LowerI32(k), uint64(maskPtr),
		ffi.LowerBool(compactResult)); err != nil {
		return nil, err
	}
	return matches.ToSlices(ctx)
}

// KnnMatchQuery is KnnMatch against the trained descriptor collection.
func (m *BinaryDescriptorMatcher) KnnMatchQuery(ctx context.Context, query *Mat, k int32, masks []*Mat, compactResult bool) ([][]DMatch, error) {
	matches, err := NewVectorVectorDMatch(ctx, m.rt)
	if err != nil {
		return nil, err
	}
	defer matches.Close(ctx)

	maskVec, err := NewVectorMatFrom(ctx, m.rt, masks)
	if err != nil {
		return nil, err
	}
	defer maskVec.Close(ctx)

	if err := m.rt.CallVoid(ctx, symBDMKnnQuery,
		uint64(m.h.PtrMut()), uint64(query.Ptr()), uint64(matches.PtrMut()),
		ffi.LowerI32(k), uint64(maskVec.Ptr()), ffi.LowerBool(compactResult)); err != nil {
		return nil, err
	}
	return matches.ToSlices(ctx)
}

// RadiusMatch finds every train descriptor within maxDistance of each
// query descriptor.
func (m *BinaryDescriptorMatcher) RadiusMatch(ctx context.Context, query, train *Mat, maxDistance float32, mask *Mat, compactResult bool) ([][]DMatch, error) {
	matches, err := NewVectorVectorDMatch(ctx, m.rt)
	if err != nil {
		return nil, err
	}
	defer matches.Close(ctx)

	maskPtr, cleanup, err := maskOrEmpty(ctx, m.rt, mask)
	if err != nil {
		return nil, err
	}
	defer cleanup(ctx)

	if err := m.rt.CallVoid(ctx, symBDMRadius,
		uint64(m.h.Ptr()), uint64(query.Ptr()), uint64(train.Ptr()),
		uint64(matches.PtrMut()), ffi.LowerF32(maxDistance), uint64(maskPtr),
		ffi.LowerBool(compactResult)); err != nil {
		return nil, err
	}
	return matches.ToSlices(ctx)
}

// RadiusMatchQuery is RadiusMatch against the trained descriptor
// collection.
func (m *BinaryDescriptorMatcher) RadiusMatchQuery(ctx context.Context, query *Mat, maxDistance float32, masks []*Mat, compactResult bool) ([][]DMatch, error) {
	matches, err := NewVectorVectorDMatch(ctx, m.rt)
	if err != nil {
		return nil, err
	}
	defer matches.Close(ctx)

	maskVec, err := NewVectorMatFrom(ctx, m.rt, masks)
	if err != nil {
		return nil, err
	}
	defer maskVec.Close(ctx)

	if err := m.rt.CallVoid(ctx, symBDMRadiusQuery,
		uint64(m.h.PtrMut()), uint64(query.Ptr()), uint64(matches.PtrMut()),
		ffi.LowerF32(maxDistance), uint64(maskVec.Ptr()),
		ffi.LowerBool(compactResult)); err != nil {
		return nil, err
	}
	return matches.ToSlices(ctx)
}

// Add appends descriptor sets to the train collection. It does not index
// them; call Train before the query forms.
func (m *BinaryDescriptorMatcher) Add(ctx context.Context, descriptors []*Mat) error {
	descVec, err := NewVectorMatFrom(ctx, m.rt, descriptors)
	if err != nil {
		return err
	}
	defer descVec.Close(ctx)
	return m.rt.CallVoid(ctx, symBDMAdd, uint64(m.h.PtrMut()), uint64(descVec.Ptr()))
}

// Train indexes everything added so far into the multi-index hash.
func (m *BinaryDescriptorMatcher) Train(ctx context.Context) error {
	return m.rt.CallVoid(ctx, symBDMTrain, uint64(m.h.PtrMut()))
}

// Clear drops the train collection and its index.
func (m *BinaryDescriptorMatcher) Clear(ctx context.Context) error {
	return m.rt.CallVoid(ctx, symBDMClear, uint64(m.h.PtrMut()))
}

// Close releases the native matcher. Idempotent.
func (m *BinaryDescriptorMatcher) Close(ctx context.Context) { m.h.Release(ctx) }
