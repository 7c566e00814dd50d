// Package resize implements the RGBA8888 resampling engine (spec §4.9):
// nearest, bilinear, bicubic (Catmull-Rom), and Lanczos-3 kernels, each
// exposed in both a direct 2-D point-sample form (Sample, shared with
// package rotate) and a separable two-pass form (Resize itself).
package resize

import (
	"fmt"
	"math"

	"github.com/lucidpix/mediacodec/raster"
)

// Algorithm selects an interpolation kernel.
type Algorithm int

const (
	Nearest Algorithm = iota
	Bilinear
	Bicubic
	Lanczos
)

func (a Algorithm) String() string {
	switch a {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	case Lanczos:
		return "lanczos"
	default:
		return "unknown"
	}
}

// DefaultMaxDimension is the target-dimension ceiling spec §4.9 mandates
// when Options.MaxDimension is left at zero.
const DefaultMaxDimension = 32768

// Options configures Resize. The zero value selects Nearest with the
// default 32768 dimension ceiling.
type Options struct {
	Algorithm    Algorithm
	MaxDimension int
}

// Resize produces a dstW x dstH RGBA buffer from src using the
// requested algorithm. It rejects target dimensions above the
// configured ceiling and buffers whose length does not match their
// declared dimensions (spec §4.9 "Size limits and validation").
func Resize(src *raster.Buffer, dstW, dstH int, opts Options) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, raster.NewError(raster.KindInputInvalid, "resize.Resize", err.Error())
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, raster.NewError(raster.KindInputInvalid, "resize.Resize", fmt.Sprintf("target dimensions must be positive, got %dx%d", dstW, dstH))
	}
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	if dstW > maxDim || dstH > maxDim {
		return nil, raster.NewError(raster.KindUnsupported, "resize.Resize", fmt.Sprintf("target %dx%d exceeds max dimension %d", dstW, dstH, maxDim))
	}

	// Invariant 6: resize(p, w, h, w, h, any_algorithm) is a byte-identical
	// copy, independent of the requested algorithm.
	if dstW == src.Width && dstH == src.Height {
		out := raster.New(dstW, dstH)
		copy(out.Pixels, src.Pixels)
		return out, nil
	}

	switch opts.Algorithm {
	case Nearest:
		return resizeNearest(src, dstW, dstH), nil
	case Bilinear, Bicubic, Lanczos:
		return resizeSeparable(src, dstW, dstH, opts.Algorithm), nil
	default:
		return nil, raster.NewError(raster.KindInputInvalid, "resize.Resize", "unrecognized algorithm")
	}
}

// resizeNearest implements spec §4.9's non-centered nearest-neighbor
// mapping, with an integer-scale fast path that replicates each source
// pixel into an s x s block using only integer indexing.
func resizeNearest(src *raster.Buffer, dstW, dstH int) *raster.Buffer {
	if sx := dstW / src.Width; sx > 0 && sx*src.Width == dstW {
		if sy := dstH / src.Height; sy > 0 && sy*src.Height == dstH {
			return replicateBlocks(src, sx, sy)
		}
	}

	out := raster.New(dstW, dstH)
	scaleX := float64(src.Width) / float64(dstW)
	scaleY := float64(src.Height) / float64(dstH)
	for dy := 0; dy < dstH; dy++ {
		sy := int(math.Floor(float64(dy) * scaleY))
		if sy >= src.Height {
			sy = src.Height - 1
		}
		for dx := 0; dx < dstW; dx++ {
			sx := int(math.Floor(float64(dx) * scaleX))
			if sx >= src.Width {
				sx = src.Width - 1
			}
			r, g, b, a := src.At(sx, sy)
			out.Set(dx, dy, r, g, b, a)
		}
	}
	return out
}

func replicateBlocks(src *raster.Buffer, sx, sy int) *raster.Buffer {
	dstW, dstH := src.Width*sx, src.Height*sy
	out := raster.New(dstW, dstH)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			r, g, b, a := src.At(x, y)
			for by := 0; by < sy; by++ {
				oy := y*sy + by
				for bx := 0; bx < sx; bx++ {
					out.Set(x*sx+bx, oy, r, g, b, a)
				}
			}
		}
	}
	return out
}

// resizeSeparable runs the two-pass separable filter for the weighted
// kernels, collapsing to a single 1-D pass when only one dimension
// changes (spec §4.9 "Separable optimization").
func resizeSeparable(src *raster.Buffer, dstW, dstH int, algo Algorithm) *raster.Buffer {
	changedW := dstW != src.Width
	changedH := dstH != src.Height
	switch {
	case changedW && !changedH:
		return horizontalPass(src, dstW, algo)
	case changedH && !changedW:
		return verticalPass(src, dstH, algo)
	default:
		mid := horizontalPass(src, dstW, algo)
		return verticalPass(mid, dstH, algo)
	}
}

func horizontalPass(src *raster.Buffer, dstW int, algo Algorithm) *raster.Buffer {
	scale := float64(src.Width) / float64(dstW)
	filterScale := 1.0
	if scale > 1 {
		filterScale = scale
	}
	out := raster.New(dstW, src.Height)
	for dx := 0; dx < dstW; dx++ {
		center := (float64(dx)+0.5)*scale - 0.5
		start, weights := kernelWeights(algo, center, src.Width, filterScale)
		for y := 0; y < src.Height; y++ {
			var rs, gs, bs, as float64
			for i, w := range weights {
				r, g, b, a := src.At(start+i, y)
				rs += w * float64(r)
				gs += w * float64(g)
				bs += w * float64(b)
				as += w * float64(a)
			}
			out.Set(dx, y, clampToByte(rs), clampToByte(gs), clampToByte(bs), clampToByte(as))
		}
	}
	return out
}

func verticalPass(src *raster.Buffer, dstH int, algo Algorithm) *raster.Buffer {
	scale := float64(src.Height) / float64(dstH)
	filterScale := 1.0
	if scale > 1 {
		filterScale = scale
	}
	out := raster.New(src.Width, dstH)
	for dy := 0; dy < dstH; dy++ {
		center := (float64(dy)+0.5)*scale - 0.5
		start, weights := kernelWeights(algo, center, src.Height, filterScale)
		for x := 0; x < src.Width; x++ {
			var rs, gs, bs, as float64
			for i, w := range weights {
				r, g, b, a := src.At(x, start+i)
				rs += w * float64(r)
				gs += w * float64(g)
				bs += w * float64(b)
				as += w * float64(a)
			}
			out.Set(x, dy, clampToByte(rs), clampToByte(gs), clampToByte(bs), clampToByte(as))
		}
	}
	return out
}
