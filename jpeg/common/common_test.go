package common

import (
	"errors"
	"testing"
)

// S1: minimal JFIF round-trip.
func TestParseJFIFMinimal(t *testing.T) {
	payload := []byte{
		0x4A, 0x46, 0x49, 0x46, 0x00, // "JFIF\0"
		0x01, 0x02, // version 1.02
		0x01,       // units = dpi
		0x00, 0x48, // xDensity = 72
		0x00, 0x48, // yDensity = 72
		0x00, 0x00, // no thumbnail
	}

	j, err := ParseJFIF(payload)
	if err != nil {
		t.Fatalf("ParseJFIF: %v", err)
	}
	if j.VersionMajor != 1 || j.VersionMinor != 2 {
		t.Fatalf("version = %d.%02d, want 1.02", j.VersionMajor, j.VersionMinor)
	}
	if j.Units != DensityDPI {
		t.Fatalf("units = %v, want DensityDPI", j.Units)
	}
	if j.XDensity != 72 || j.YDensity != 72 {
		t.Fatalf("density = (%d,%d), want (72,72)", j.XDensity, j.YDensity)
	}
	if j.ThumbnailPixel != nil {
		t.Fatalf("expected no thumbnail, got %d bytes", len(j.ThumbnailPixel))
	}
	if ar := j.AspectRatio(); ar != 1.0 {
		t.Fatalf("aspect ratio = %v, want 1.0", ar)
	}
	x, y := j.DPI()
	if x != 72 || y != 72 {
		t.Fatalf("DPI = (%v,%v), want (72,72)", x, y)
	}
}

func TestParseJFIFRejectsUnknownIdentifier(t *testing.T) {
	payload := []byte{0x41, 0x42, 0x43, 0x44, 0x00, 1, 2, 1, 0, 48, 0, 48, 0, 0}
	if _, err := ParseJFIF(payload); err == nil {
		t.Fatal("expected error for non-JFIF/JFXX identifier")
	}
}

func TestParseJFIFThumbnailShortage(t *testing.T) {
	payload := []byte{
		0x4A, 0x46, 0x49, 0x46, 0x00,
		1, 2, 1,
		0, 48, 0, 48,
		2, 2, // 2x2 thumbnail needs 12 bytes, none supplied
	}
	if _, err := ParseJFIF(payload); err == nil {
		t.Fatal("expected truncation error for missing thumbnail bytes")
	}
}

// S2: canonical code construction, standard DC luminance table.
func TestCanonicalCodeConstruction(t *testing.T) {
	table := &HuffmanTable{
		Bits:   [16]int{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		Values: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}
	if err := table.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(table.Codes) != 12 {
		t.Fatalf("code count = %d, want 12", len(table.Codes))
	}

	var maxLen byte
	for _, c := range table.Codes {
		if c.Length > maxLen {
			maxLen = c.Length
		}
	}
	if maxLen != 9 {
		t.Fatalf("max code length = %d, want 9", maxLen)
	}

	c0, ok := table.CodeFor(0)
	if !ok || c0.Code != 0x00 || c0.Length != 2 {
		t.Fatalf("code for symbol 0 = %+v, want {0,2}", c0)
	}
	c1, ok := table.CodeFor(1)
	if !ok || c1.Code != 0x02 || c1.Length != 3 {
		t.Fatalf("code for symbol 1 = %+v, want {0b010=2,3}", c1)
	}

	// Invariant 2: codes strictly increase by (length, code).
	for i := 1; i < len(table.Codes); i++ {
		prev, cur := table.Codes[i-1], table.Codes[i]
		if cur.Length < prev.Length {
			t.Fatalf("codes not sorted by length at %d: %+v then %+v", i, prev, cur)
		}
		if cur.Length == prev.Length && cur.Code <= prev.Code {
			t.Fatalf("codes not strictly increasing within length at %d: %+v then %+v", i, prev, cur)
		}
	}
}

// S3: Kraft inequality rejection.
func TestKraftInequalityRejection(t *testing.T) {
	table := &HuffmanTable{
		Bits:   [16]int{3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		Values: []byte{0, 1, 2},
	}
	err := table.Build()
	if err == nil {
		t.Fatal("expected Kraft inequality violation")
	}
	if !errors.Is(err, ErrKraftInequality) {
		t.Fatalf("error = %v, want wrapping ErrKraftInequality", err)
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindFormatInvalid {
		t.Fatalf("error kind = %v, want KindFormatInvalid", err)
	}
}

func TestHuffmanTableRejectsDuplicateSymbol(t *testing.T) {
	table := &HuffmanTable{
		Bits:   [16]int{0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		Values: []byte{5, 5},
	}
	if err := table.Build(); err == nil || !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("error = %v, want ErrDuplicateSymbol", err)
	}
}

func TestHuffmanTableRejectsEmpty(t *testing.T) {
	table := &HuffmanTable{}
	if err := table.Build(); err == nil {
		t.Fatal("expected error building an empty table")
	}
}

// Invariant: every standard library table built in init() already
// satisfies Build's Kraft check (BuildStandardHuffmanTable would have
// panicked otherwise), so building it again here must succeed.
func TestStandardTablesBuild(t *testing.T) {
	for _, tc := range []struct {
		name   string
		bits   [16]int
		values []byte
	}{
		{"DCLuminance", StandardDCLuminanceBits, StandardDCLuminanceValues},
		{"DCChrominance", StandardDCChrominanceBits, StandardDCChrominanceValues},
		{"ACLuminance", StandardACLuminanceBits, StandardACLuminanceValues},
		{"ACChrominance", StandardACChrominanceBits, StandardACChrominanceValues},
	} {
		table := &HuffmanTable{Bits: tc.bits, Values: tc.values}
		if err := table.Build(); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
	}
}

// S4: quality scaling.
func TestQualityScalingMidpoint(t *testing.T) {
	scaled, err := ScaleQuantTable(DefaultLuminanceQuantTable, 50, QualityStandard, Precision8Bit)
	if err != nil {
		t.Fatalf("ScaleQuantTable: %v", err)
	}
	for i, v := range scaled {
		base := DefaultLuminanceQuantTable[i]
		diff := v - base
		if diff < -1 || diff > 1 {
			t.Fatalf("cell %d = %d, base %d, want within +-1", i, v, base)
		}
	}
}

func TestQualityScalingLowQualityNeverShrinksTable(t *testing.T) {
	scaled, err := ScaleQuantTable(DefaultLuminanceQuantTable, 1, QualityStandard, Precision8Bit)
	if err != nil {
		t.Fatalf("ScaleQuantTable: %v", err)
	}
	for i, v := range scaled {
		if v < DefaultLuminanceQuantTable[i] {
			t.Fatalf("cell %d = %d, want >= base %d at quality 1", i, v, DefaultLuminanceQuantTable[i])
		}
	}
}

func TestQualityScalingMaxQualityIsAllOnes(t *testing.T) {
	scaled, err := ScaleQuantTable(DefaultLuminanceQuantTable, 100, QualityStandard, Precision8Bit)
	if err != nil {
		t.Fatalf("ScaleQuantTable: %v", err)
	}
	for i, v := range scaled {
		if v != 1 {
			t.Fatalf("cell %d = %d, want 1 at quality 100", i, v)
		}
	}
}

func TestScaleQuantTableRejectsOutOfRangeQuality(t *testing.T) {
	if _, err := ScaleQuantTable(DefaultLuminanceQuantTable, 0, QualityStandard, Precision8Bit); err == nil {
		t.Fatal("expected error for quality 0")
	}
	if _, err := ScaleQuantTable(DefaultLuminanceQuantTable, 101, QualityStandard, Precision8Bit); err == nil {
		t.Fatal("expected error for quality 101")
	}
}

// Invariant 3: every entry of a scaled table lies in [1, max_for_precision].
func TestScaledTableEntriesWithinPrecisionBounds(t *testing.T) {
	for q := 1; q <= 100; q++ {
		for _, mode := range []QualityMode{QualityStandard, QualityLinear, QualityPerceptual} {
			scaled, err := ScaleQuantTable(DefaultChrominanceQuantTable, q, mode, Precision8Bit)
			if err != nil {
				t.Fatalf("quality %d mode %v: %v", q, mode, err)
			}
			for i, v := range scaled {
				if v < 1 || v > Precision8Bit.MaxValue() {
					t.Fatalf("quality %d mode %v cell %d = %d out of [1,%d]", q, mode, i, v, Precision8Bit.MaxValue())
				}
			}
		}
	}
}

// Invariant 4: zig-zag round trip.
func TestZigZagRoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		if NaturalToZigZag[ZigZag[i]] != i {
			t.Fatalf("round trip failed at %d: ZigZag=%d NaturalToZigZag=%d", i, ZigZag[i], NaturalToZigZag[ZigZag[i]])
		}
	}
}

// Invariant 5: quantize/dequantize round-trip is exact for
// integer-multiple coefficients.
func TestQuantizeDequantizeRoundTripExactOnMultiples(t *testing.T) {
	var coeffs, table [64]int32
	for i := range table {
		table[i] = int32(i%32 + 1)
		coeffs[i] = table[i] * int32(i-32)
	}
	original := coeffs
	if err := QuantizeBlock(&coeffs, &table, RoundNearest); err != nil {
		t.Fatalf("QuantizeBlock: %v", err)
	}
	DequantizeBlock(&coeffs, &table, 0, 63)
	for i := range coeffs {
		if coeffs[i] != original[i] {
			t.Fatalf("cell %d: dequantize(quantize(%d)) = %d", i, original[i], coeffs[i])
		}
	}
}
