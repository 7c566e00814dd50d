package resize

import "math"

// Priority is the caller's preference fed to Recommend.
type Priority int

const (
	PrioritySpeed Priority = iota
	PriorityQuality
	PriorityBalanced
)

// minimalChangeTolerance bounds how close a requested scale factor must
// be to 1.0, on both axes, to count as "minimal change" (spec §4.9:
// "minimal change → nearest", independent of priority).
const minimalChangeTolerance = 0.02

// strongDownscale and largeUpscale are the balanced-mode thresholds
// spec §4.9 names without pinning exact numbers ("bicubic large
// upscale, lanczos strong downscale").
const (
	strongDownscale = 0.5
	largeUpscale    = 2.0
)

// Recommend returns the kernel this package would pick for a resize
// from (srcW, srcH) to (dstW, dstH) under the given priority (spec
// §4.9's "Algorithm recommendation oracle").
func Recommend(srcW, srcH, dstW, dstH int, priority Priority) Algorithm {
	scaleX := float64(dstW) / float64(srcW)
	scaleY := float64(dstH) / float64(srcH)

	if math.Abs(scaleX-1) <= minimalChangeTolerance && math.Abs(scaleY-1) <= minimalChangeTolerance {
		return Nearest
	}

	downscaling := scaleX < 1 || scaleY < 1

	switch priority {
	case PrioritySpeed:
		if downscaling {
			return Nearest
		}
		return Bilinear
	case PriorityQuality:
		if downscaling {
			return Lanczos
		}
		return Bicubic
	default: // PriorityBalanced
		if downscaling && (scaleX <= strongDownscale || scaleY <= strongDownscale) {
			return Lanczos
		}
		if !downscaling && (scaleX >= largeUpscale || scaleY >= largeUpscale) {
			return Bicubic
		}
		return Bilinear
	}
}
