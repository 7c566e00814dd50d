package jpeg

import (
	"testing"

	"github.com/lucidpix/mediacodec/raster"
)

func gradientBuffer(width, height int) *raster.Buffer {
	buf := raster.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := byte(x * 4)
			g := byte(y * 4)
			b := byte((x + y) * 2)
			buf.Set(x, y, r, g, b, 255)
		}
	}
	return buf
}

func TestEncodeDecodeBaselineRoundTrip(t *testing.T) {
	src := gradientBuffer(48, 48)
	data, err := Encode(src, EncodeOptions{Mode: ModeBaseline, Quality: 85})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Width != 48 || decoded.Height != 48 {
		t.Fatalf("dimensions mismatch: got %dx%d", decoded.Width, decoded.Height)
	}
}

func TestEncodeDecodeProgressiveRoundTrip(t *testing.T) {
	src := gradientBuffer(48, 48)
	data, err := Encode(src, EncodeOptions{Mode: ModeProgressive, Quality: 85})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Width != 48 || decoded.Height != 48 {
		t.Fatalf("dimensions mismatch: got %dx%d", decoded.Width, decoded.Height)
	}
}

func TestDecodeDispatchesByFrameMarker(t *testing.T) {
	src := gradientBuffer(32, 32)
	baselineData, err := Encode(src, EncodeOptions{Mode: ModeBaseline, Quality: 80})
	if err != nil {
		t.Fatalf("baseline Encode failed: %v", err)
	}
	progressiveData, err := Encode(src, EncodeOptions{Mode: ModeProgressive, Quality: 80})
	if err != nil {
		t.Fatalf("progressive Encode failed: %v", err)
	}

	mode, err := sniffMode(baselineData)
	if err != nil || mode != ModeBaseline {
		t.Errorf("sniffMode(baseline) = %v, %v; want ModeBaseline, nil", mode, err)
	}
	mode, err = sniffMode(progressiveData)
	if err != nil || mode != ModeProgressive {
		t.Errorf("sniffMode(progressive) = %v, %v; want ModeProgressive, nil", mode, err)
	}
}

func TestGrayscaleAndFullChromaOptions(t *testing.T) {
	src := gradientBuffer(32, 32)
	if _, err := Encode(src, EncodeOptions{Mode: ModeBaseline, Quality: 80, Grayscale: true}); err != nil {
		t.Errorf("grayscale baseline encode failed: %v", err)
	}
	if _, err := Encode(src, EncodeOptions{Mode: ModeProgressive, Quality: 80, FullChroma: true}); err != nil {
		t.Errorf("full-chroma progressive encode failed: %v", err)
	}
}
