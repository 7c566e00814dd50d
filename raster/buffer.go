// Package raster defines the RGBA8888 pixel buffer shared by the jpeg,
// resize, and rotate packages (spec §3 Pixel buffer).
package raster

import "fmt"

// Buffer is a contiguous, row-major, interleaved R,G,B,A byte buffer
// with no padding or stride: len(Pixels) == Width*Height*4 always.
type Buffer struct {
	Width  int
	Height int
	Pixels []byte
}

// New allocates a zeroed (fully transparent black) buffer of the given
// dimensions.
func New(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*4),
	}
}

// Wrap builds a Buffer over caller-owned pixels without copying. It
// returns an error if the slice length does not match width*height*4.
func Wrap(width, height int, pixels []byte) (*Buffer, error) {
	want := width * height * 4
	if len(pixels) != want {
		return nil, NewError(KindInputInvalid, "raster.Wrap", fmt.Sprintf("buffer length %d does not match %dx%dx4=%d", len(pixels), width, height, want))
	}
	return &Buffer{Width: width, Height: height, Pixels: pixels}, nil
}

// Validate reports whether b's invariants hold: non-negative dimensions
// and a pixel slice of exactly Width*Height*4 bytes.
func (b *Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return NewError(KindInputInvalid, "raster.Validate", fmt.Sprintf("negative dimension %dx%d", b.Width, b.Height))
	}
	want := b.Width * b.Height * 4
	if len(b.Pixels) != want {
		return NewError(KindInputInvalid, "raster.Validate", fmt.Sprintf("buffer length %d does not match %dx%dx4=%d", len(b.Pixels), b.Width, b.Height, want))
	}
	return nil
}

// At returns the RGBA channel values at (x, y). Callers are expected to
// have validated bounds; At does not itself clamp or wrap.
func (b *Buffer) At(x, y int) (r, g, bl, a byte) {
	i := (y*b.Width + x) * 4
	return b.Pixels[i], b.Pixels[i+1], b.Pixels[i+2], b.Pixels[i+3]
}

// Set writes the RGBA channel values at (x, y).
func (b *Buffer) Set(x, y int, r, g, bl, a byte) {
	i := (y*b.Width + x) * 4
	b.Pixels[i] = r
	b.Pixels[i+1] = g
	b.Pixels[i+2] = bl
	b.Pixels[i+3] = a
}

// InBounds reports whether (x, y) is within [0,Width) x [0,Height).
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Clamped returns the channel values at (x, y), clamping x and y
// individually to the buffer's edge. This is the "clamp to image
// bounds" behavior the nearest-neighbor resize kernel and the
// arbitrary-angle rotate sampler both rely on.
func (b *Buffer) Clamped(x, y int) (r, g, bl, a byte) {
	if x < 0 {
		x = 0
	} else if x >= b.Width {
		x = b.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= b.Height {
		y = b.Height - 1
	}
	return b.At(x, y)
}
