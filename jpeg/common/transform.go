package common

// Transformer is the external collaborator interface spec §1/§6 carves
// out for DCT/IDCT numerics: the codec core only ever calls Forward and
// Inverse, never the fixed-point math directly, so a caller can supply a
// SIMD or floating-point implementation without touching jpeg/baseline
// or jpeg/progressive.
type Transformer interface {
	// Forward computes the 8x8 forward DCT of the spatial-domain samples
	// at in (stride-addressed, range 0..255) into the 64 natural-order
	// coefficients at coef.
	Forward(in []byte, stride int, coef []int32)
	// Inverse computes the 8x8 inverse DCT of the 64 natural-order
	// coefficients at coef into the stride-addressed spatial-domain
	// samples at out (clamped to 0..255).
	Inverse(coef []int32, out []byte, stride int)
}

// defaultTransformer wraps the package-level fast integer DCT/IDCT
// (dct.go, idct.go) behind the Transformer interface.
type defaultTransformer struct{}

func (defaultTransformer) Forward(in []byte, stride int, coef []int32) {
	DCT(in, stride, coef)
}

func (defaultTransformer) Inverse(coef []int32, out []byte, stride int) {
	IDCT(coef, out, stride)
}

// DefaultTransformer is the built-in Transformer, used whenever a caller
// does not supply one of their own.
var DefaultTransformer Transformer = defaultTransformer{}

// ColorConverter is the external collaborator interface for YCbCr<->RGB
// conversion (spec §1). Chroma upsampling is the caller's/component
// layout's responsibility; this interface only converts already
// co-sited samples.
type ColorConverter interface {
	YCbCrToRGB(y, cb, cr byte) (r, g, b byte)
	RGBToYCbCr(r, g, b byte) (y, cb, cr byte)
}

type defaultColorConverter struct{}

// YCbCrToRGB implements the ITU-R BT.601 inverse transform in 16.16
// fixed point, the same constants libjpeg's default (non-SIMD) color
// converter uses.
func (defaultColorConverter) YCbCrToRGB(yy, cb, cr byte) (byte, byte, byte) {
	y := int(yy)
	cbv := int(cb) - 128
	crv := int(cr) - 128

	r := y + (91881*crv)>>16
	g := y - ((22554*cbv + 46802*crv) >> 16)
	b := y + (116130*cbv)>>16

	return byte(Clamp(r, 0, 255)), byte(Clamp(g, 0, 255)), byte(Clamp(b, 0, 255))
}

// RGBToYCbCr implements the forward BT.601 transform in 16.16 fixed
// point, the encode-side mirror of YCbCrToRGB.
func (defaultColorConverter) RGBToYCbCr(r, g, b byte) (byte, byte, byte) {
	ri, gi, bi := int(r), int(g), int(b)

	y := (19595*ri + 38470*gi + 7471*bi + (1 << 15)) >> 16
	cb := (-11059*ri - 21709*gi + 32768*bi + (1 << 15)) >> 16
	cr := (32768*ri - 27439*gi - 5329*bi + (1 << 15)) >> 16

	return byte(Clamp(y, 0, 255)), byte(Clamp(cb+128, 0, 255)), byte(Clamp(cr+128, 0, 255))
}

// DefaultColorConverter is the built-in ColorConverter.
var DefaultColorConverter ColorConverter = defaultColorConverter{}
