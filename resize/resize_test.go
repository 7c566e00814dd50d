package resize

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lucidpix/mediacodec/raster"
)

func allAlgorithms() []Algorithm {
	return []Algorithm{Nearest, Bilinear, Bicubic, Lanczos}
}

// S5: 2x2 all-zero RGBA resized to 4x4 stays all zero and is exactly
// 64 bytes, for both bilinear and nearest.
func TestResizeZeroBuffer(t *testing.T) {
	src := raster.New(2, 2)
	for _, algo := range []Algorithm{Nearest, Bilinear} {
		out, err := Resize(src, 4, 4, Options{Algorithm: algo})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		if len(out.Pixels) != 64 {
			t.Fatalf("%s: got %d bytes, want 64", algo, len(out.Pixels))
		}
		for _, b := range out.Pixels {
			if b != 0 {
				t.Fatalf("%s: expected all-zero output, found %d", algo, b)
			}
		}
	}
}

// Invariant 6: resize to identical dimensions is a byte-identical copy
// regardless of algorithm.
func TestResizeIdempotence(t *testing.T) {
	src := raster.New(5, 7)
	for i := range src.Pixels {
		src.Pixels[i] = byte(i * 37)
	}
	for _, algo := range allAlgorithms() {
		out, err := Resize(src, 5, 7, Options{Algorithm: algo})
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if !bytes.Equal(out.Pixels, src.Pixels) {
			t.Fatalf("%s: identity resize was not byte-identical", algo)
		}
	}
}

// Invariant 9 & 10: output length matches dstW*dstH*4 for all
// algorithms. Every channel being in [0,255] holds by the byte type
// alone; this test checks only the output length.
func TestResizeOutputShapeAndRange(t *testing.T) {
	src := raster.New(9, 6)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			src.Set(x, y, byte((x*47+y*13)%256), byte((x*91)%256), byte((y*61)%256), 255)
		}
	}
	for _, algo := range allAlgorithms() {
		out, err := Resize(src, 20, 13, Options{Algorithm: algo})
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if len(out.Pixels) != 20*13*4 {
			t.Fatalf("%s: got %d bytes, want %d", algo, len(out.Pixels), 20*13*4)
		}
	}
}

func TestResizeRejectsOversizedTarget(t *testing.T) {
	src := raster.New(4, 4)
	_, err := Resize(src, 40000, 10, Options{Algorithm: Bilinear})
	if err == nil {
		t.Fatal("expected an error for a target dimension over 32768")
	}
	var rerr *raster.Error
	if !errors.As(err, &rerr) || rerr.Kind != raster.KindUnsupported {
		t.Fatalf("expected KindUnsupported, got %v", err)
	}
}

func TestResizeRejectsBufferLengthMismatch(t *testing.T) {
	src := &raster.Buffer{Width: 4, Height: 4, Pixels: make([]byte, 10)}
	_, err := Resize(src, 8, 8, Options{Algorithm: Nearest})
	if err == nil {
		t.Fatal("expected an error for a buffer length mismatch")
	}
}

func TestResizeNearestIntegerFastPath(t *testing.T) {
	src := raster.New(2, 2)
	src.Set(0, 0, 10, 20, 30, 255)
	src.Set(1, 0, 40, 50, 60, 255)
	src.Set(0, 1, 70, 80, 90, 255)
	src.Set(1, 1, 100, 110, 120, 255)

	out, err := Resize(src, 6, 6, Options{Algorithm: Nearest})
	if err != nil {
		t.Fatal(err)
	}
	// Each source pixel should replicate into a 3x3 block.
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			wantX, wantY := x/3, y/3
			wr, wg, wb, wa := src.At(wantX, wantY)
			r, g, b, a := out.At(x, y)
			if r != wr || g != wg || b != wb || a != wa {
				t.Fatalf("at (%d,%d): got (%d,%d,%d,%d), want (%d,%d,%d,%d)", x, y, r, g, b, a, wr, wg, wb, wa)
			}
		}
	}
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		srcW, srcH, dstW, dstH int
		priority               Priority
		want                   Algorithm
	}{
		{100, 100, 101, 101, PriorityBalanced, Nearest},
		{200, 200, 50, 50, PriorityQuality, Lanczos},
		{100, 100, 300, 300, PrioritySpeed, Bilinear},
	}
	for _, c := range cases {
		got := Recommend(c.srcW, c.srcH, c.dstW, c.dstH, c.priority)
		if got != c.want {
			t.Errorf("Recommend(%dx%d->%dx%d, %v) = %v, want %v", c.srcW, c.srcH, c.dstW, c.dstH, c.priority, got, c.want)
		}
	}
}

