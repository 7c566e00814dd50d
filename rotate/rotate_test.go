package rotate

import (
	"bytes"
	"testing"

	"github.com/lucidpix/mediacodec/raster"
	"github.com/lucidpix/mediacodec/resize"
)

// pixel2x2 builds the 2x2 (R,G / B,Y) test image used by spec §8 S6.
func pixel2x2() *raster.Buffer {
	b := raster.New(2, 2)
	b.Set(0, 0, 255, 0, 0, 255) // R
	b.Set(1, 0, 0, 255, 0, 255) // G
	b.Set(0, 1, 0, 0, 255, 255) // B
	b.Set(1, 1, 255, 255, 0, 255) // Y
	return b
}

// S6: after rotate90cw, (R,G / B,Y) becomes (B,R / Y,G), byte-exact.
func TestRotate90CWQuadrant(t *testing.T) {
	src := pixel2x2()
	out, err := Rotate(src, 90, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	want := pixel2x2()
	// (B,R / Y,G)
	want.Set(0, 0, 0, 0, 255, 255)
	want.Set(1, 0, 255, 0, 0, 255)
	want.Set(0, 1, 255, 255, 0, 255)
	want.Set(1, 1, 0, 255, 0, 255)
	if !bytes.Equal(out.Pixels, want.Pixels) {
		t.Fatalf("rotate90cw mismatch: got %v want %v", out.Pixels, want.Pixels)
	}
}

// S6: after rotate180, (R,G / B,Y) becomes (Y,B / G,R), byte-exact.
func TestRotate180Quadrant(t *testing.T) {
	src := pixel2x2()
	out, err := Rotate(src, 180, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	want := pixel2x2()
	want.Set(0, 0, 255, 255, 0, 255) // Y
	want.Set(1, 0, 0, 0, 255, 255)   // B
	want.Set(0, 1, 0, 255, 0, 255)   // G
	want.Set(1, 1, 255, 0, 0, 255)   // R
	if !bytes.Equal(out.Pixels, want.Pixels) {
		t.Fatalf("rotate180 mismatch: got %v want %v", out.Pixels, want.Pixels)
	}
}

// Invariant 7: rotate90cw . rotate90ccw = identity, byte-identical.
func TestRotateQuadrantInverse(t *testing.T) {
	src := raster.New(3, 5)
	for i := range src.Pixels {
		src.Pixels[i] = byte(i * 7)
	}
	ccw, err := Rotate(src, 270, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	back, err := Rotate(ccw, 90, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	if back.Width != src.Width || back.Height != src.Height {
		t.Fatalf("dims changed: got %dx%d want %dx%d", back.Width, back.Height, src.Width, src.Height)
	}
	if !bytes.Equal(back.Pixels, src.Pixels) {
		t.Fatal("rotate90cw(rotate90ccw(x)) != x")
	}
}

// Invariant 8: rotate180 . rotate180 = identity, byte-identical.
func TestRotate180Involution(t *testing.T) {
	src := raster.New(4, 6)
	for i := range src.Pixels {
		src.Pixels[i] = byte(i * 11)
	}
	once, err := Rotate(src, 180, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Rotate(once, 180, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(twice.Pixels, src.Pixels) {
		t.Fatal("rotate180(rotate180(x)) != x")
	}
}

func TestRotateZeroIsCopy(t *testing.T) {
	src := pixel2x2()
	out, err := Rotate(src, 0, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pixels, src.Pixels) {
		t.Fatal("rotate by 0 degrees changed pixels")
	}
}

func TestRotateNearQuadrantToleranceSnaps(t *testing.T) {
	src := pixel2x2()
	exact, err := Rotate(src, 90, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	near, err := Rotate(src, 90+5e-5, resize.Nearest, Fill{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(exact.Pixels, near.Pixels) {
		t.Fatal("an angle within tolerance of a quadrant should take the quadrant fast path")
	}
}

func TestRotateArbitraryAngleFillsOutOfBounds(t *testing.T) {
	src := raster.New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, 200, 100, 50, 255)
		}
	}
	fill := Fill{R: 1, G: 2, B: 3, A: 4}
	out, err := Rotate(src, 45, resize.Bilinear, fill)
	if err != nil {
		t.Fatal(err)
	}
	// The bounding box corners fall outside the rotated source square,
	// so they must carry the fill color.
	r, g, b, a := out.At(0, 0)
	if r != fill.R || g != fill.G || b != fill.B || a != fill.A {
		t.Fatalf("corner pixel = (%d,%d,%d,%d), want fill %v", r, g, b, a, fill)
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{725, 5},
	}
	for _, c := range cases {
		got, err := NormalizeAngle(c.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeAngleRejectsNonFinite(t *testing.T) {
	if _, err := NormalizeAngle(posInf()); err == nil {
		t.Fatal("expected an error for a non-finite angle")
	}
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}
