package common

import "math"

// Precision selects 8-bit or 16-bit quantization table entries (spec §3
// Quantization table, §4.6).
type Precision int

const (
	Precision8Bit Precision = iota
	Precision16Bit
)

// MaxValue returns the largest legal table entry for this precision.
func (p Precision) MaxValue() int32 {
	if p == Precision16Bit {
		return 65535
	}
	return 255
}

// QualityMode selects the formula used to turn a 1..100 quality value
// into a per-table scale factor (spec §4.6).
type QualityMode int

const (
	QualityStandard QualityMode = iota
	QualityLinear
	QualityPerceptual
)

// DefaultLuminanceQuantTable is the ITU-T Annex K luminance base table
// (Table K.1), permuted from the spec's natural row-major presentation
// into zig-zag order: entry k is the divisor for zig-zag coefficient k,
// matching both the DQT wire format (§4.3) and QuantizeBlock/
// DequantizeBlock's indexing convention.
var DefaultLuminanceQuantTable = [64]int32{
	16, 11, 12, 14, 12, 10, 16, 14,
	13, 14, 18, 17, 16, 19, 24, 40,
	26, 24, 22, 22, 24, 49, 35, 37,
	29, 40, 58, 51, 61, 60, 57, 51,
	56, 55, 64, 72, 92, 78, 64, 68,
	87, 69, 55, 56, 80, 109, 81, 87,
	95, 98, 103, 104, 103, 62, 77, 113,
	121, 112, 100, 120, 92, 101, 103, 99,
}

// DefaultChrominanceQuantTable is the ITU-T Annex K chrominance base
// table (Table K.2), permuted into zig-zag order the same way as
// DefaultLuminanceQuantTable.
var DefaultChrominanceQuantTable = [64]int32{
	17, 18, 18, 24, 21, 24, 47, 26,
	26, 47, 99, 66, 56, 66, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// qualityScale computes the scale factor S for a client quality value
// per the formula selected by mode (spec §4.6). quality must already be
// validated to lie in [1,100].
func qualityScale(quality int, mode QualityMode) float64 {
	q := float64(quality)
	switch mode {
	case QualityLinear:
		return (100 - q) / 100
	case QualityPerceptual:
		return math.Pow(1-q/100, 1.5)
	default: // QualityStandard
		if quality >= 50 {
			return (100 - q) / 50
		}
		return 50 / q
	}
}

// ScaleQuantTable scales base by the quality factor selected by
// (quality, mode), rounds each entry to the nearest integer, and clamps
// to [1, precision.MaxValue()]. quality must be in [1,100].
func ScaleQuantTable(base [64]int32, quality int, mode QualityMode, precision Precision) ([64]int32, error) {
	if quality < 1 || quality > 100 {
		return [64]int32{}, NewError(KindInputInvalid, "ScaleQuantTable", "quality out of range [1,100]", ErrInvalidQuality)
	}
	s := qualityScale(quality, mode)
	max := precision.MaxValue()

	var result [64]int32
	for i := 0; i < 64; i++ {
		v := math.Round(float64(base[i]) * s)
		iv := int32(v)
		if iv < 1 {
			iv = 1
		}
		if iv > max {
			iv = max
		}
		result[i] = iv
	}
	return result, nil
}

// StandardDCLuminanceBits/Values is the canonical DC luminance Huffman
// table libjpeg ships for baseline JPEG (ITU-T Annex K.3 Table K.3).
var StandardDCLuminanceBits = [16]int{
	0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0,
}
var StandardDCLuminanceValues = []byte{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11,
}

// StandardDCChrominanceBits/Values is Annex K.3 Table K.4.
var StandardDCChrominanceBits = [16]int{
	0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0,
}
var StandardDCChrominanceValues = []byte{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11,
}

// StandardACLuminanceBits/Values is Annex K.3 Table K.5.
var StandardACLuminanceBits = [16]int{
	0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125,
}
var StandardACLuminanceValues = []byte{
	0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
	0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
	0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xa1, 0x08,
	0x23, 0x42, 0xb1, 0xc1, 0x15, 0x52, 0xd1, 0xf0,
	0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0a, 0x16,
	0x17, 0x18, 0x19, 0x1a, 0x25, 0x26, 0x27, 0x28,
	0x29, 0x2a, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
	0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
	0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
	0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
	0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
	0x7a, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
	0x8a, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
	0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7,
	0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6,
	0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3, 0xc4, 0xc5,
	0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2, 0xd3, 0xd4,
	0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xe1, 0xe2,
	0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea,
	0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
	0xf9, 0xfa,
}

// StandardACChrominanceBits/Values is Annex K.3 Table K.6.
var StandardACChrominanceBits = [16]int{
	0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 119,
}
var StandardACChrominanceValues = []byte{
	0x00, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21,
	0x31, 0x06, 0x12, 0x41, 0x51, 0x07, 0x61, 0x71,
	0x13, 0x22, 0x32, 0x81, 0x08, 0x14, 0x42, 0x91,
	0xa1, 0xb1, 0xc1, 0x09, 0x23, 0x33, 0x52, 0xf0,
	0x15, 0x62, 0x72, 0xd1, 0x0a, 0x16, 0x24, 0x34,
	0xe1, 0x25, 0xf1, 0x17, 0x18, 0x19, 0x1a, 0x26,
	0x27, 0x28, 0x29, 0x2a, 0x35, 0x36, 0x37, 0x38,
	0x39, 0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
	0x49, 0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
	0x59, 0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
	0x69, 0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78,
	0x79, 0x7a, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
	0x88, 0x89, 0x8a, 0x92, 0x93, 0x94, 0x95, 0x96,
	0x97, 0x98, 0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5,
	0xa6, 0xa7, 0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4,
	0xb5, 0xb6, 0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3,
	0xc4, 0xc5, 0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2,
	0xd3, 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda,
	0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9,
	0xea, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
	0xf9, 0xfa,
}

// BuildStandardHuffmanTable constructs and builds a HuffmanTable from a
// fixed BITS/HUFFVAL pair. Panics only if bits/values are internally
// inconsistent, which never happens for the tables declared in this
// file.
func BuildStandardHuffmanTable(bits [16]int, values []byte) *HuffmanTable {
	table := &HuffmanTable{Bits: bits, Values: values}
	if err := table.Build(); err != nil {
		panic("common: standard Huffman table failed to build: " + err.Error())
	}
	return table
}
