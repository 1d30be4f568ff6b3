package linedescriptor

import (
	"github.com/wasmvis/linedesc/ffi"
)

// Natural logarithm of 10, used by the LSD NFA computation.
const MLN10 = 2.30258509299404568402

// RelativeErrorFactor bounds the relative error allowed when comparing
// doubles in the LSD region grower.
const RelativeErrorFactor = 100.0

// Flags for DrawKeylines and DrawLineMatches.
const (
	// DrawDefault allocates the output image and draws both matches and
	// single (unmatched) lines.
	DrawDefault int32 = 0
	// DrawOverOutImg draws on the existing output image content.
	DrawOverOutImg int32 = 1
	// DrawNotDrawSingleLines leaves unmatched lines out.
	DrawNotDrawSingleLines int32 = 2
)

// Point2f is a 2D point with float32 coordinates.
//
// wasm32 layout: 8 bytes, align 4.
type Point2f struct {
	X float32
	Y float32
}

const point2fSize = 8

func (Point2f) PlainSize() uint32  { return point2fSize }
func (Point2f) PlainAlign() uint32 { return 4 }

func (p Point2f) PlainPut(mem ffi.Memory, off ffi.Ptr) error {
	w := ffi.NewWriter(mem, off)
	w.PutF32(p.X)
	w.PutF32(p.Y)
	return w.Err()
}

func (p *Point2f) PlainGet(mem ffi.Memory, off ffi.Ptr) error {
	r := ffi.NewReader(mem, off)
	p.X = r.F32()
	p.Y = r.F32()
	return r.Err()
}

// Scalar is a 4-element double vector, used here for draw colors.
//
// wasm32 layout: 32 bytes, align 8.
type Scalar [4]float64

const scalarSize = 32

// NewScalar builds a BGR color scalar with an opaque alpha-less fourth
// element of zero.
func NewScalar(v0, v1, v2 float64) Scalar {
	return Scalar{v0, v1, v2, 0}
}

// ScalarAll returns a scalar with all four elements set to v. The drawing
// functions treat an all-negative scalar as "pick a random color".
func ScalarAll(v float64) Scalar {
	return Scalar{v, v, v, v}
}

func (Scalar) PlainSize() uint32  { return scalarSize }
func (Scalar) PlainAlign() uint32 { return 8 }

func (s Scalar) PlainPut(mem ffi.Memory, off ffi.Ptr) error {
	w := ffi.NewWriter(mem, off)
	for _, v := range s {
		w.PutF64(v)
	}
	return w.Err()
}

func (s *Scalar) PlainGet(mem ffi.Memory, off ffi.Ptr) error {
	r := ffi.NewReader(mem, off)
	for i := range s {
		s[i] = r.F64()
	}
	return r.Err()
}

// DMatch links a query descriptor to a train descriptor with the Hamming
// distance between them.
//
// wasm32 layout: 16 bytes, align 4.
type DMatch struct {
	QueryIdx int32
	TrainIdx int32
	ImgIdx   int32
	Distance float32
}

const dmatchSize = 16

func (DMatch) PlainSize() uint32  { return dmatchSize }
func (DMatch) PlainAlign() uint32 { return 4 }

func (d DMatch) PlainPut(mem ffi.Memory, off ffi.Ptr) error {
	w := ffi.NewWriter(mem, off)
	w.PutI32(d.QueryIdx)
	w.PutI32(d.TrainIdx)
	w.PutI32(d.ImgIdx)
	w.PutF32(d.Distance)
	return w.Err()
}

func (d *DMatch) PlainGet(mem ffi.Memory, off ffi.Ptr) error {
	r := ffi.NewReader(mem, off)
	d.QueryIdx = r.I32()
	d.TrainIdx = r.I32()
	d.ImgIdx = r.I32()
	d.Distance = r.F32()
	return r.Err()
}

// KeyLine describes one extracted line: its geometry in the original image,
// its geometry in the octave it was extracted from, and detector metadata.
// ClassID is the line identifier matchers refer back to.
//
// wasm32 layout: 68 bytes, align 4, field order fixed by the native struct.
type KeyLine struct {
	Angle    float32
	ClassID  int32
	Octave   int32
	Pt       Point2f
	Response float32
	Size     float32

	StartPointX float32
	StartPointY float32
	EndPointX   float32
	EndPointY   float32

	SPointInOctaveX float32
	SPointInOctaveY float32
	EPointInOctaveX float32
	EPointInOctaveY float32

	LineLength  float32
	NumOfPixels int32
}

const keyLineSize = 68

// StartPoint returns the line start in the original image.
func (k KeyLine) StartPoint() Point2f {
	return Point2f{X: k.StartPointX, Y: k.StartPointY}
}

// EndPoint returns the line end in the original image.
func (k KeyLine) EndPoint() Point2f {
	return Point2f{X: k.EndPointX, Y: k.EndPointY}
}

// StartPointInOctave returns the line start in the octave it came from.
func (k KeyLine) StartPointInOctave() Point2f {
	return Point2f{X: k.SPointInOctaveX, Y: k.SPointInOctaveY}
}

// EndPointInOctave returns the line end in the octave it came from.
func (k KeyLine) EndPointInOctave() Point2f {
	return Point2f{X: k.EPointInOctaveX, Y: k.EPointInOctaveY}
}

func (KeyLine) PlainSize() uint32  { return keyLineSize }
func (KeyLine) PlainAlign() uint32 { return 4 }

func (k KeyLine) PlainPut(mem ffi.Memory, off ffi.Ptr) error {
	w := ffi.NewWriter(mem, off)
	w.PutF32(k.Angle)
	w.PutI32(k.ClassID)
	w.PutI32(k.Octave)
	w.PutF32(k.Pt.X)
	w.PutF32(k.Pt.Y)
	w.PutF32(k.Response)
	w.PutF32(k.Size)
	w.PutF32(k.StartPointX)
	w.PutF32(k.StartPointY)
	w.PutF32(k.EndPointX)
	w.PutF32(k.EndPointY)
	w.PutF32(k.SPointInOctaveX)
	w.PutF32(k.SPointInOctaveY)
	w.PutF32(k.EPointInOctaveX)
	w.PutF32(k.EPointInOctaveY)
	w.PutF32(k.LineLength)
	w.PutI32(k.NumOfPixels)
	return w.Err()
}

func (k *KeyLine) PlainGet(mem ffi.Memory, off ffi.Ptr) error {
	r := ffi.NewReader(mem, off)
	k.Angle = r.F32()
	k.ClassID = r.I32()
	k.Octave = r.I32()
	k.Pt.X = r.F32()
	k.Pt.Y = r.F32()
	k.Response = r.F32()
	k.Size = r.F32()
	k.StartPointX = r.F32()
	k.StartPointY = r.F32()
	k.EndPointX = r.F32()
	k.EndPointY = r.F32()
	k.SPointInOctaveX = r.F32()
	k.SPointInOctaveY = r.F32()
	k.EPointInOctaveX = r.F32()
	k.EPointInOctaveY = r.F32()
	k.LineLength = r.F32()
	k.NumOfPixels = r.I32()
	return r.Err()
}

// LSDParam carries the LSD detector tuning knobs.
//
// wasm32 layout: 56 bytes, align 8, with 4 bytes of tail padding after
// NBins.
type LSDParam struct {
	Scale      float64 // image downscale applied before detection
	SigmaScale float64 // Gaussian sigma as sigma = SigmaScale / Scale
	Quant      float64 // bound on the gradient norm quantization error
	AngTh      float64 // gradient angle tolerance, degrees
	LogEps     float64 // NFA detection threshold, -log10(NFA)
	DensityTh  float64 // minimal density of aligned region points
	NBins      int32   // bins in the gradient modulus pseudo-ordering
}

const lsdParamSize = 56

// DefaultLSDParam returns the native defaults of the LSD detector.
func DefaultLSDParam() LSDParam {
	return LSDParam{
		Scale:      0.8,
		SigmaScale: 0.6,
		Quant:      2.0,
		AngTh:      22.5,
		LogEps:     0,
		DensityTh:  0.7,
		NBins:      1024,
	}
}

func (LSDParam) PlainSize() uint32  { return lsdParamSize }
func (LSDParam) PlainAlign() uint32 { return 8 }

func (p LSDParam) PlainPut(mem ffi.Memory, off ffi.Ptr) error {
	w := ffi.NewWriter(mem, off)
	w.PutF64(p.Scale)
	w.PutF64(p.SigmaScale)
	w.PutF64(p.Quant)
	w.PutF64(p.AngTh)
	w.PutF64(p.LogEps)
	w.PutF64(p.DensityTh)
	w.PutI32(p.NBins)
	w.Skip(4)
	return w.Err()
}

func (p *LSDParam) PlainGet(mem ffi.Memory, off ffi.Ptr) error {
	r := ffi.NewReader(mem, off)
	p.Scale = r.F64()
	p.SigmaScale = r.F64()
	p.Quant = r.F64()
	p.AngTh = r.F64()
	p.LogEps = r.F64()
	p.DensityTh = r.F64()
	p.NBins = r.I32()
	r.Skip(4)
	return r.Err()
}

var (
	_ ffi.PlainGetter = (*Point2f)(nil)
	_ ffi.PlainGetter = (*Scalar)(nil)
	_ ffi.PlainGetter = (*DMatch)(nil)
	_ ffi.PlainGetter = (*KeyLine)(nil)
	_ ffi.PlainGetter = (*LSDParam)(nil)
)
