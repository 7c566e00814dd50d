// Package rotate implements quadrant-fast-path and arbitrary-angle RGBA
// rotation (spec §4.10), sampling arbitrary angles with the same kernel
// functions package resize exposes for resizing.
package rotate

import (
	"math"

	"github.com/lucidpix/mediacodec/raster"
	"github.com/lucidpix/mediacodec/resize"
)

// quadrantTolerance is the floating-point tolerance spec §4.10 names
// for classifying a near-integer angle as an exact quadrant.
const quadrantTolerance = 1e-4

// Fill is the RGBA color used for destination pixels whose rotated
// source coordinate falls outside the source image (spec §4.10). The
// zero value is fully transparent, the spec's default.
type Fill struct {
	R, G, B, A byte
}

// NormalizeAngle reduces any finite degree value modulo 360 into
// [0,360). Non-finite input is rejected (spec §4.10: "accept any finite
// degree value").
func NormalizeAngle(degrees float64) (float64, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0, raster.NewError(raster.KindInputInvalid, "rotate.NormalizeAngle", "angle must be finite")
	}
	norm := math.Mod(degrees, 360)
	if norm < 0 {
		norm += 360
	}
	return norm, nil
}

// quadrant classifies a normalized [0,360) angle as one of 0/90/180/270
// within quadrantTolerance, returning ok=false for a genuinely
// arbitrary angle.
func quadrant(normalized float64) (degrees int, ok bool) {
	for _, q := range []int{0, 90, 180, 270} {
		d := normalized - float64(q)
		if d < -180 {
			d += 360
		} else if d > 180 {
			d -= 360
		}
		if math.Abs(d) <= quadrantTolerance {
			return q, true
		}
	}
	return 0, false
}

// Rotate rotates src by angleDegrees (clockwise, positive) and returns
// a new buffer. Quadrant-equivalent angles (0/90/180/270, within
// tolerance) take the lossless pixel-rearrangement fast path; any other
// angle samples via algo, with out-of-bounds source coordinates filled
// with fill.
func Rotate(src *raster.Buffer, angleDegrees float64, algo resize.Algorithm, fill Fill) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, raster.NewError(raster.KindInputInvalid, "rotate.Rotate", err.Error())
	}
	normalized, err := NormalizeAngle(angleDegrees)
	if err != nil {
		return nil, err
	}
	if q, ok := quadrant(normalized); ok {
		return rotateQuadrant(src, q), nil
	}
	return rotateArbitrary(src, normalized, algo, fill), nil
}

func rotateQuadrant(src *raster.Buffer, degrees int) *raster.Buffer {
	switch degrees {
	case 90:
		return rotate90CW(src)
	case 180:
		return rotate180(src)
	case 270:
		return rotate90CCW(src)
	default: // 0
		out := raster.New(src.Width, src.Height)
		copy(out.Pixels, src.Pixels)
		return out
	}
}

// rotate90CW rotates 90 degrees clockwise: dst(x,y) = src(y, srcH-1-x),
// with dst dimensions (srcH, srcW) (spec §8 S6).
func rotate90CW(src *raster.Buffer) *raster.Buffer {
	out := raster.New(src.Height, src.Width)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b, a := src.At(y, src.Height-1-x)
			out.Set(x, y, r, g, b, a)
		}
	}
	return out
}

// rotate90CCW rotates 90 degrees counter-clockwise: dst(x,y) =
// src(srcW-1-y, x), with dst dimensions (srcH, srcW). Chosen so that
// rotate90CW(rotate90CCW(src)) is the identity (spec §8 invariant 7).
func rotate90CCW(src *raster.Buffer) *raster.Buffer {
	out := raster.New(src.Height, src.Width)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b, a := src.At(src.Width-1-y, x)
			out.Set(x, y, r, g, b, a)
		}
	}
	return out
}

// rotate180 rotates 180 degrees: dst(x,y) = src(srcW-1-x, srcH-1-y)
// (spec §8 S6/invariant 8).
func rotate180(src *raster.Buffer) *raster.Buffer {
	out := raster.New(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			r, g, b, a := src.At(src.Width-1-x, src.Height-1-y)
			out.Set(x, y, r, g, b, a)
		}
	}
	return out
}

// rotateArbitrary implements spec §4.10's centered-coordinate rotation
// for a genuinely non-quadrant angle. Output dimensions are the
// ceiling-rounded axis-aligned bounding box of the rotated source
// rectangle.
func rotateArbitrary(src *raster.Buffer, degrees float64, algo resize.Algorithm, fill Fill) *raster.Buffer {
	theta := degrees * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)

	srcW, srcH := float64(src.Width), float64(src.Height)
	dstW := int(math.Ceil(math.Abs(srcW*cos) + math.Abs(srcH*sin)))
	dstH := int(math.Ceil(math.Abs(srcW*sin) + math.Abs(srcH*cos)))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	out := raster.New(dstW, dstH)
	halfDstW, halfDstH := float64(dstW)/2, float64(dstH)/2
	halfSrcW, halfSrcH := srcW/2, srcH/2

	for dy := 0; dy < dstH; dy++ {
		for dx := 0; dx < dstW; dx++ {
			cx := float64(dx) - halfDstW
			cy := float64(dy) - halfDstH
			srcX := cos*cx + sin*cy + halfSrcW
			srcY := -sin*cx + cos*cy + halfSrcH

			if srcX < 0 || srcX >= srcW || srcY < 0 || srcY >= srcH {
				out.Set(dx, dy, fill.R, fill.G, fill.B, fill.A)
				continue
			}
			r, g, b, a := resize.Sample(src, algo, srcX, srcY)
			out.Set(dx, dy, r, g, b, a)
		}
	}
	return out
}
