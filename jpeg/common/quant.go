package common

import "fmt"

// ValidateQuantTable enforces the DQT decoder's invariants (spec §4.3):
// no zero entries. The slot-id range check (must be < 4) is done by the
// caller, which is the one that knows the slot id being parsed.
func ValidateQuantTable(table [64]int32) error {
	for i, v := range table {
		if v == 0 {
			return NewError(KindFormatInvalid, "ValidateQuantTable", fmt.Sprintf("zero entry at zig-zag index %d", i), ErrZeroQuantValue)
		}
	}
	return nil
}

// QuantizeBlock divides each of the 64 coefficients in block (natural
// spatial-frequency order matching table's order, i.e. zig-zag) by the
// corresponding table entry, using the given rounding mode (spec §4.6
// Block quantize). table must contain no zero entries.
func QuantizeBlock(block *[64]int32, table *[64]int32, mode RoundingMode) error {
	for i := 0; i < 64; i++ {
		if table[i] == 0 {
			return NewError(KindFormatInvalid, "QuantizeBlock", "zero quantization table entry", ErrZeroQuantValue)
		}
		block[i] = RoundDiv(block[i], table[i], mode)
	}
	return nil
}

// DequantizeBlock multiplies each coefficient by the corresponding table
// entry and clamps the result to [-2048, 2047] (spec §3 Coefficient
// block, §4.6 Block dequantize). If start/end (inclusive, zig-zag
// indices) are given, only that subrange is processed — used by the
// progressive coordinator, which dequantizes coefficients band by band.
// Zero coefficients are left untouched without multiplying, a common
// fast path since most high-frequency coefficients are zero.
func DequantizeBlock(block *[64]int32, table *[64]int32, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > 63 {
		end = 63
	}
	for i := start; i <= end; i++ {
		if block[i] == 0 {
			continue
		}
		v := block[i] * table[i]
		if v > 2047 {
			v = 2047
		} else if v < -2048 {
			v = -2048
		}
		block[i] = v
	}
}
