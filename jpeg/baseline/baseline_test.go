package baseline

import (
	"math"
	"testing"

	"github.com/lucidpix/mediacodec/jpeg/common"
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

// highFrequencyBuffer sums three cosines of different, non-harmonic
// periods so that within an 8x8 block the energy spreads across many
// mid- and high-frequency DCT coefficients rather than concentrating on
// DC and the coefficients a smooth gradient excites, which happen to sit
// at natural-order index 0 and 1 - two of the four positions (0, 1, 62,
// 63) the zig-zag permutation leaves fixed. A dequantizer that multiplies
// a natural-order coefficient by the quant entry for its natural index
// instead of its zig-zag index reconstructs the coefficients at the other
// positions at the wrong scale; this pattern is built to make that visible.
func highFrequencyBuffer(width, height int) *raster.Buffer {
	buf := raster.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := 128.0 +
				35*math.Cos(2*math.Pi*float64(x)/5) +
				25*math.Cos(2*math.Pi*float64(y)/3) +
				20*math.Cos(2*math.Pi*float64(x+y)/7)
			b := byte(v)
			buf.Set(x, y, b, b, b, 255)
		}
	}
	return buf
}

func TestEncodeDecodeGray(t *testing.T) {
	width, height := 64, 64
	src := raster.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := byte((x + y) % 256)
			src.Set(x, y, v, v, v, 255)
		}
	}

	jpegData, err := Encode(src, EncodeOptions{Quality: 85, Color: ColorGray})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	t.Logf("encoded size: %d bytes (ratio %.2fx)", len(jpegData), float64(len(src.Pixels))/float64(len(jpegData)))

	decoded, err := Decode(jpegData, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Width != width || decoded.Height != height {
		t.Fatalf("dimensions mismatch: got %dx%d, want %dx%d", decoded.Width, decoded.Height, width, height)
	}

	maxErr := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sr, _, _, _ := src.At(x, y)
			dr, _, _, _ := decoded.At(x, y)
			diff := int(sr) - int(dr)
			if diff < 0 {
				diff = -diff
			}
			if diff > maxErr {
				maxErr = diff
			}
		}
	}
	t.Logf("max channel error: %d", maxErr)
	if maxErr > 50 {
		t.Errorf("max error too large: %d (want <= 50)", maxErr)
	}
}

func TestEncodeDecodeHighFrequencyPattern(t *testing.T) {
	width, height := 64, 64
	src := highFrequencyBuffer(width, height)

	jpegData, err := Encode(src, EncodeOptions{Quality: 50, Color: ColorGray})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(jpegData, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Width != width || decoded.Height != height {
		t.Fatalf("dimensions mismatch: got %dx%d, want %dx%d", decoded.Width, decoded.Height, width, height)
	}

	maxErr := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sr, _, _, _ := src.At(x, y)
			dr, _, _, _ := decoded.At(x, y)
			diff := int(sr) - int(dr)
			if diff < 0 {
				diff = -diff
			}
			if diff > maxErr {
				maxErr = diff
			}
		}
	}
	t.Logf("high-frequency max channel error: %d", maxErr)
	if maxErr > 45 {
		t.Errorf("max error too large: %d (want <= 45); a natural/zig-zag quant table index mismatch in dequantization would blow well past this", maxErr)
	}
}

func TestEncodeDecodeYCbCr420(t *testing.T) {
	width, height := 64, 64
	src := gradientBuffer(width, height)

	jpegData, err := Encode(src, EncodeOptions{Quality: 90, Color: ColorYCbCr420})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(jpegData, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Width != width || decoded.Height != height {
		t.Fatalf("dimensions mismatch: got %dx%d, want %dx%d", decoded.Width, decoded.Height, width, height)
	}
	if len(decoded.Pixels) != width*height*4 {
		t.Fatalf("pixel buffer length mismatch: got %d, want %d", len(decoded.Pixels), width*height*4)
	}
}

func TestEncodeDecodeYCbCr444(t *testing.T) {
	width, height := 32, 32
	src := gradientBuffer(width, height)

	jpegData, err := Encode(src, EncodeOptions{Quality: 95, Color: ColorYCbCr444})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(jpegData, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	maxErr := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sr, sg, sb, _ := src.At(x, y)
			dr, dg, db, _ := decoded.At(x, y)
			for _, d := range []int{int(sr) - int(dr), int(sg) - int(dg), int(sb) - int(db)} {
				if d < 0 {
					d = -d
				}
				if d > maxErr {
					maxErr = d
				}
			}
		}
	}
	t.Logf("4:4:4 max channel error at q=95: %d", maxErr)
	if maxErr > 40 {
		t.Errorf("max error too large: %d (want <= 40)", maxErr)
	}
}

func TestDecodeRejectsProgressiveFrame(t *testing.T) {
	// A minimal SOF2 marker spliced after SOI should be rejected as
	// Unsupported, not silently misdecoded as baseline.
	data := []byte{0xFF, 0xD8, 0xFF, 0xC2, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00}
	_, err := Decode(data, Options{})
	if err == nil {
		t.Fatal("expected error decoding SOF2 with baseline.Decode")
	}
	ce, ok := err.(*common.Error)
	if !ok {
		t.Fatalf("expected *common.Error, got %T", err)
	}
	if ce.Kind != common.KindUnsupported {
		t.Errorf("expected KindUnsupported, got %v", ce.Kind)
	}
}

func TestDecodeRejectsMissingSOI(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x00}, Options{})
	if err == nil {
		t.Fatal("expected error for missing SOI")
	}
}

func BenchmarkEncodeYCbCr420(b *testing.B) {
	src := gradientBuffer(512, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(src, EncodeOptions{Quality: 85, Color: ColorYCbCr420}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeYCbCr420(b *testing.B) {
	src := gradientBuffer(512, 512)
	jpegData, err := Encode(src, EncodeOptions{Quality: 85, Color: ColorYCbCr420})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(jpegData, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
