package progressive

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
}

func TestEncodeDecodeYCbCr444(t *testing.T) {
	width, height := 48, 32
	src := gradientBuffer(width, height)

	jpegData, err := Encode(src, EncodeOptions{Quality: 92, Color: ColorYCbCr444})
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
	t.Logf("4:4:4 max channel error at q=92: %d", maxErr)
	if maxErr > 45 {
		t.Errorf("max error too large: %d (want <= 45)", maxErr)
	}
}

func TestEncodeDecodeWithRestartIntervals(t *testing.T) {
	width, height := 64, 64
	src := gradientBuffer(width, height)

	jpegData, err := Encode(src, EncodeOptions{Quality: 80, Color: ColorYCbCr420, RestartInterval: 2})
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
}

func TestDecodeRejectsBaselineFrame(t *testing.T) {
	// A minimal SOF0 marker spliced after SOI should be rejected as
	// Unsupported by the progressive decoder, not silently misdecoded.
	data := []byte{0xFF, 0xD8, 0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00}
	_, err := Decode(data, Options{})
	if err == nil {
		t.Fatal("expected error decoding SOF0 with progressive.Decode")
	}
	ce, ok := err.(*common.Error)
	if !ok {
		t.Fatalf("expected *common.Error, got %T", err)
	}
	if ce.Kind != common.KindUnsupported {
		t.Errorf("expected KindUnsupported, got %v", ce.Kind)
	}
}

func TestClassifyScan(t *testing.T) {
	cases := []struct {
		ss, se, ah, al int
		want           ScanClass
		wantErr        bool
	}{
		{0, 0, 0, 0, ScanDCFirst, false},
		{0, 0, 1, 0, ScanDCRefine, false},
		{1, 63, 0, 2, ScanACFirst, false},
		{1, 63, 3, 2, ScanACRefine, false},
		{1, 63, 3, 1, 0, true}, // Ah must equal Al+1
		{5, 2, 0, 0, 0, true},  // Ss > Se
		{0, 5, 0, 0, 0, true},  // DC scan must have Se=0
	}
	for _, c := range cases {
		got, err := ClassifyScan(c.ss, c.se, c.ah, c.al)
		if c.wantErr {
			if err == nil {
				t.Errorf("ClassifyScan(%d,%d,%d,%d): expected error, got none", c.ss, c.se, c.ah, c.al)
			}
			continue
		}
		if err != nil {
			t.Errorf("ClassifyScan(%d,%d,%d,%d): unexpected error: %v", c.ss, c.se, c.ah, c.al, err)
			continue
		}
		if got != c.want {
			t.Errorf("ClassifyScan(%d,%d,%d,%d) = %v, want %v", c.ss, c.se, c.ah, c.al, got, c.want)
		}
	}
}

func TestCoordinatorRejectsDuplicateScan(t *testing.T) {
	c := NewCoordinator()
	if err := c.Accept([]int{0, 1, 2}, 0, 0, 0, 0); err != nil {
		t.Fatalf("first DC scan: unexpected error: %v", err)
	}
	if err := c.Accept([]int{0}, 1, 63, 0, 0); err != nil {
		t.Fatalf("first AC scan: unexpected error: %v", err)
	}
	if err := c.Accept([]int{0}, 1, 63, 0, 0); err == nil {
		t.Fatal("expected error re-accepting an identical scan tuple for the same component")
	}
	if c.State() != StateError {
		t.Errorf("expected StateError after duplicate scan, got %v", c.State())
	}
}

func TestCoordinatorProgressMonotonic(t *testing.T) {
	c := NewCoordinator()
	if got := c.Progress(); got != 0 {
		t.Errorf("initial progress = %d, want 0", got)
	}
	if err := c.Accept([]int{0}, 0, 0, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dcProgress := c.Progress()
	if err := c.Accept([]int{0}, 1, 63, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acProgress := c.Progress()
	if acProgress <= dcProgress {
		t.Errorf("AC progress %d should exceed DC progress %d", acProgress, dcProgress)
	}
	c.Complete()
	if got := c.Progress(); got != 100 {
		t.Errorf("completed progress = %d, want 100", got)
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
