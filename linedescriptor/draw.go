package linedescriptor

import (
	"context"

	"github.com/wasmvis/linedesc/ffi"
)

const (
	symDrawKeylines    = "cv_line_descriptor_drawKeylines_const_MatR_const_vector_KeyLine_R_MatR_const_ScalarR_int"
	symDrawLineMatches = "cv_line_descriptor_drawLineMatches_const_MatR_const_vector_KeyLine_R_const_MatR_const_vector_KeyLine_R_const_vector_DMatch_R_MatR_const_ScalarR_const_ScalarR_const_vector_char_R_int"
)

// DrawKeylines renders keylines over image into out. An all-negative color
// picks a random color per line. flags is a Draw* constant.
func DrawKeylines(ctx context.Context, rt Runtime, image *Mat, keylines []KeyLine, out *Mat, color Scalar, flags int32) error {
	lines, err := NewVectorKeyLineFrom(ctx, rt, keylines)
	if err != nil {
		return err
	}
	defer lines.Close(ctx)

	colorBox, err := ffi.NewPlainBox(rt, color)
	if err != nil {
		return err
	}
	defer colorBox.Free()

	return rt.CallVoid(ctx, symDrawKeylines,
		uint64(image.Ptr()), uint64(lines.Ptr()), uint64(out.PtrMut()),
		uint64(colorBox.ExternPtr()), ffi.LowerI32(flags))
}

// DrawLineMatches renders the two images side by side into out and
// connects matched lines. matchesMask may be nil to draw every match or
// must have one byte per match, zero meaning skip.
func DrawLineMatches(ctx context.Context, rt Runtime, img1 *Mat, keylines1 []KeyLine, img2 *Mat, keylines2 []KeyLine, matches []DMatch, out *Mat, matchColor, singleLineColor Scalar, matchesMask []byte, flags int32) error {
	lines1, err := NewVectorKeyLineFrom(ctx, rt, keylines1)
	if err != nil {
		return err
	}
	defer lines1.Close(ctx)

	lines2, err := NewVectorKeyLineFrom(ctx, rt, keylines2)
	if err != nil {
		return err
	}
	defer lines2.Close(ctx)

	matchVec, err := NewVectorDMatch(ctx, rt)
	if err != nil {
		return err
	}
	defer matchVec.Close(ctx)
	for _, d := range matches {
		if err := matchVec.Push(ctx, d); err != nil {
			return err
		}
	}

	matchColorBox, err := ffi.NewPlainBox(rt, matchColor)
	if err != nil {
		return err
	}
	defer matchColorBox.Free()

	singleColorBox, err := ffi.NewPlainBox(rt, singleLineColor)
	if err != nil {
		return err
	}
	defer singleColorBox.Free()

	maskVec, err := NewVectorByteFrom(ctx, rt, matchesMask)
	if err != nil {
		return err
	}
	defer maskVec.Close(ctx)

	return rt.CallVoid(ctx, symDrawLineMatches,
		uint64(img1.Ptr()), uint64(lines1.Ptr()),
		uint64(img2.Ptr()), uint64(lines2.Ptr()),
		uint64(matchVec.Ptr()), uint64(out.PtrMut()),
		uint64(matchColorBox.ExternPtr()), uint64(singleColorBox.ExternPtr()),
		uint64(maskVec.Ptr()), ffi.LowerI32(flags))
}
