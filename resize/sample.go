package resize

import (
	"math"

	"github.com/lucidpix/mediacodec/raster"
)

// Sample is the direct 2-D point-sample form the four kernels expose
// alongside Resize's separable two-pass form (spec §4.9: "All four
// kernels expose both a direct 2-D form and a separable form"). It is
// shared with package rotate, whose arbitrary-angle sampling is not
// axis-aligned and so cannot use a row/column two-pass filter.
func Sample(src *raster.Buffer, algo Algorithm, srcX, srcY float64) (r, g, b, a byte) {
	if algo == Nearest {
		x := int(math.Round(srcX))
		y := int(math.Round(srcY))
		return src.Clamped(x, y)
	}

	startX, wx := kernelWeights(algo, srcX, src.Width, 1)
	startY, wy := kernelWeights(algo, srcY, src.Height, 1)
	var rs, gs, bs, as float64
	for j, wyv := range wy {
		for i, wxv := range wx {
			cr, cg, cb, ca := src.Clamped(startX+i, startY+j)
			weight := wxv * wyv
			rs += weight * float64(cr)
			gs += weight * float64(cg)
			bs += weight * float64(cb)
			as += weight * float64(ca)
		}
	}
	return clampToByte(rs), clampToByte(gs), clampToByte(bs), clampToByte(as)
}
