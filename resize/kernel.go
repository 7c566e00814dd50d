package resize

import "math"

// triangleKernel is the bilinear 1-D kernel: support 1, linear falloff.
func triangleKernel(t float64) float64 {
	t = math.Abs(t)
	if t < 1 {
		return 1 - t
	}
	return 0
}

// cubicKernel is the Catmull-Rom bicubic 1-D kernel (spec §4.9).
func cubicKernel(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t <= 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t <= 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	default:
		return 0
	}
}

// lanczosKernel is the windowed-sinc Lanczos-a 1-D kernel (spec §4.9).
func lanczosKernel(t, a float64) float64 {
	if t == 0 {
		return 1
	}
	if t <= -a || t >= a {
		return 0
	}
	piT := math.Pi * t
	return a * math.Sin(piT) * math.Sin(piT/a) / (piT * piT)
}

const lanczosA = 3.0

// kernelSupport returns the non-zero footprint radius of algo's 1-D
// kernel (spec GLOSSARY "Kernel support").
func kernelSupport(algo Algorithm) float64 {
	switch algo {
	case Bilinear:
		return 1
	case Bicubic:
		return 2
	case Lanczos:
		return lanczosA
	default:
		return 0
	}
}

func kernelValue(algo Algorithm, t float64) float64 {
	switch algo {
	case Bilinear:
		return triangleKernel(t)
	case Bicubic:
		return cubicKernel(t)
	case Lanczos:
		return lanczosKernel(t, lanczosA)
	default:
		return 0
	}
}

// kernelWeights computes the source index window and normalized weights
// contributing to one destination sample centered at center. filterScale
// widens the kernel support when downscaling (filterScale = scale > 1)
// so aliasing is suppressed, and is 1 for an unscaled point sample
// (resize.Sample). Weights are renormalized to sum to 1, preserving
// brightness even when the window is clipped at an image edge (spec
// §4.9: "renormalized per destination pixel to preserve brightness").
func kernelWeights(algo Algorithm, center float64, srcLen int, filterScale float64) (start int, weights []float64) {
	support := kernelSupport(algo) * filterScale
	left := int(math.Floor(center - support))
	right := int(math.Ceil(center + support))
	if left < 0 {
		left = 0
	}
	if right > srcLen-1 {
		right = srcLen - 1
	}
	if right < left {
		right = left
	}
	n := right - left + 1
	weights = make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		t := (float64(left+i) - center) / filterScale
		w := kernelValue(algo, t)
		weights[i] = w
		sum += w
	}
	if sum != 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}
	return left, weights
}

// clampToByte rounds v once (never inside the inner kernel loop, per
// spec §9's numerical precision note) and clamps to [0,255] to absorb
// the negative/>255 ringing bicubic and Lanczos can produce.
func clampToByte(v float64) byte {
	r := math.Round(v)
	switch {
	case r < 0:
		return 0
	case r > 255:
		return 255
	default:
		return byte(r)
	}
}
