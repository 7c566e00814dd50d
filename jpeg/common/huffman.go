package common

import "io"

// HuffmanCode is the canonical (code, length) pair assigned to one
// symbol (spec §3 Huffman table, §4.4 step 3).
type HuffmanCode struct {
	Code   uint16
	Length byte
}

// HuffmanTable represents one DC or AC Huffman table: the 16 BITS counts,
// the HUFFVAL symbols in canonical order, and the lookup structures
// derived from them by Build.
type HuffmanTable struct {
	Bits   [16]int // number of codes of each length, 1..16
	Values []byte  // HUFFVAL, in canonical order

	// Codes[i] is the canonical code assigned to Values[i], filled by
	// Build.
	Codes []HuffmanCode

	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32

	// lookupTable is a direct-mapped 8-bit fast path: entry i holds
	// (length<<8 | symbol) for the high 8 bits of the upcoming bitstream,
	// or -1 if no code of length <= 8 has that prefix.
	lookupTable [256]int16

	// symbolCode maps a HUFFVAL symbol back to its canonical code, for
	// the encoder.
	symbolCode map[byte]HuffmanCode
}

// Build validates the Kraft inequality, assigns canonical codes (ITU-T
// T.81 Annex C), and constructs both the fast 8-bit lookup table and the
// min/max/valPtr arrays used for codes longer than 8 bits.
func (h *HuffmanTable) Build() error {
	total := 0
	for l := 0; l < 16; l++ {
		total += h.Bits[l]
	}
	if total == 0 {
		return NewError(KindFormatInvalid, "HuffmanTable.Build", "empty table", ErrInvalidDHT)
	}
	if len(h.Values) != total {
		return NewError(KindFormatInvalid, "HuffmanTable.Build", "HUFFVAL length does not match BITS sum", ErrInvalidDHT)
	}

	// Kraft inequality check done precisely with 64-bit scaled integers:
	// sum of Bits[l] * 2^(16-(l+1)) must not exceed 2^16.
	var scaled int64
	for l := 0; l < 16; l++ {
		scaled += int64(h.Bits[l]) << uint(15-l)
	}
	if scaled > (1 << 16) {
		return NewError(KindFormatInvalid, "HuffmanTable.Build", "Kraft inequality violated", ErrKraftInequality)
	}

	seen := make(map[byte]bool, total)
	for _, v := range h.Values {
		if seen[v] {
			return NewError(KindFormatInvalid, "HuffmanTable.Build", "duplicate symbol in HUFFVAL", ErrDuplicateSymbol)
		}
		seen[v] = true
	}

	// Canonical code assignment: increasing length, HUFFVAL order within
	// a length; the first code of length L is (last code of L-1 + 1)<<1.
	h.Codes = make([]HuffmanCode, total)
	h.symbolCode = make(map[byte]HuffmanCode, total)
	code := uint16(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < h.Bits[l]; i++ {
			h.Codes[p] = HuffmanCode{Code: code, Length: byte(l + 1)}
			h.symbolCode[h.Values[p]] = h.Codes[p]
			code++
			p++
		}
		code <<= 1
	}

	h.buildLookup()
	return nil
}

func (h *HuffmanTable) buildLookup() {
	for i := range h.lookupTable {
		h.lookupTable[i] = -1
	}

	p := 0
	for l := 0; l < 8; l++ {
		for i := 0; i < h.Bits[l]; i++ {
			c := h.Codes[p].Code
			base := int(c) << uint(7-l)
			for j := 0; j < (1 << uint(7-l)); j++ {
				h.lookupTable[base+j] = int16((l+1)<<8 | int(h.Values[p]))
			}
			p++
		}
	}

	code := int32(0)
	p = 0
	for l := 0; l < 16; l++ {
		if h.Bits[l] == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = int32(p)
			h.minCode[l] = code
			p += h.Bits[l]
			code += int32(h.Bits[l])
			h.maxCode[l] = code - 1
		}
		code <<= 1
	}
}

// CodeFor returns the canonical code assigned to symbol, used by the
// encoder. ok is false if symbol is not in this table.
func (h *HuffmanTable) CodeFor(symbol byte) (HuffmanCode, bool) {
	c, ok := h.symbolCode[symbol]
	return c, ok
}

// HuffmanDecoder reads Huffman-coded symbols and raw bit fields from an
// entropy-coded scan, transparently stripping 0xFF00 byte stuffing.
type HuffmanDecoder struct {
	r       io.ByteReader
	bits    uint32
	nBits   int
	readErr error
}

// NewHuffmanDecoder wraps r, which must already be positioned at the
// start of entropy-coded scan data.
func NewHuffmanDecoder(r io.ByteReader) *HuffmanDecoder {
	return &HuffmanDecoder{r: r}
}

// ReadBit reads a single bit, destuffing 0xFF00 as it goes. A 0xFF
// followed by anything other than 0x00 is a marker, which ends the
// entropy segment; ReadBit reports that as an error (the two marker
// bytes have already been read from the underlying reader).
func (d *HuffmanDecoder) ReadBit() (bool, error) {
	if d.readErr != nil {
		return false, d.readErr
	}
	if d.nBits == 0 {
		b, err := d.r.ReadByte()
		if err != nil {
			d.readErr = err
			return false, err
		}
		if b == 0xFF {
			b2, err := d.r.ReadByte()
			if err != nil {
				d.readErr = err
				return false, err
			}
			if b2 != 0x00 {
				d.readErr = ErrInvalidData
				return false, NewError(KindFormatInvalid, "HuffmanDecoder.ReadBit", "marker found inside entropy data", ErrInvalidData)
			}
		}
		d.bits = uint32(b)
		d.nBits = 8
	}
	d.nBits--
	return (d.bits>>uint(d.nBits))&1 == 1, nil
}

// ReadBits reads n bits (0 <= n <= 16) as an unsigned integer, MSB first.
func (d *HuffmanDecoder) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	for d.nBits < n {
		if d.readErr != nil {
			return 0, d.readErr
		}
		b, err := d.r.ReadByte()
		if err != nil {
			d.readErr = err
			return 0, err
		}
		if b == 0xFF {
			b2, err := d.r.ReadByte()
			if err != nil {
				d.readErr = err
				return 0, err
			}
			if b2 != 0x00 {
				d.readErr = ErrInvalidData
				return 0, NewError(KindFormatInvalid, "HuffmanDecoder.ReadBits", "marker found inside entropy data", ErrInvalidData)
			}
		}
		d.bits = (d.bits << 8) | uint32(b)
		d.nBits += 8
	}
	d.nBits -= n
	return (d.bits >> uint(d.nBits)) & ((1 << uint(n)) - 1), nil
}

// Decode reads the next Huffman symbol using table: the 8-bit fast path
// first, falling back to the per-length sequential search for codes
// longer than 8 bits.
func (d *HuffmanDecoder) Decode(table *HuffmanTable) (byte, error) {
	if d.readErr != nil {
		return 0, d.readErr
	}

	if d.nBits >= 8 {
		peek := (d.bits >> uint(d.nBits-8)) & 0xFF
		entry := table.lookupTable[peek]
		if entry >= 0 {
			nbits := int(entry >> 8)
			d.nBits -= nbits
			return byte(entry & 0xFF), nil
		}
	}

	code := int32(0)
	for l := 0; l < 16; l++ {
		bit, err := d.ReadBit()
		if err != nil {
			return 0, err
		}
		code <<= 1
		if bit {
			code |= 1
		}
		if table.maxCode[l] >= 0 && code <= table.maxCode[l] {
			idx := table.valPtr[l] + code - table.minCode[l]
			if idx >= 0 && int(idx) < len(table.Values) {
				return table.Values[idx], nil
			}
		}
	}

	return 0, NewError(KindFormatInvalid, "HuffmanDecoder.Decode", "no matching Huffman code in 16 bits", ErrHuffmanDecode)
}

// ReceiveExtend performs the combined RECEIVE/EXTEND operation (ITU-T
// T.81 Table F.1): reads ssss bits and sign-extends them into a signed
// magnitude.
func (d *HuffmanDecoder) ReceiveExtend(ssss int) (int, error) {
	if ssss == 0 {
		return 0, nil
	}
	bits, err := d.ReadBits(ssss)
	if err != nil {
		return 0, err
	}
	val := int(bits)
	if val < (1 << uint(ssss-1)) {
		val += (-1 << uint(ssss)) + 1
	}
	return val, nil
}

// HuffmanEncoder writes Huffman-coded symbols and raw bit fields to an
// entropy-coded scan, stuffing a 0x00 after every literal 0xFF byte it
// emits.
type HuffmanEncoder struct {
	w      io.ByteWriter
	bits   uint32
	nBits  int
	err    error
}

// NewHuffmanEncoder returns an encoder writing to w.
func NewHuffmanEncoder(w io.ByteWriter) *HuffmanEncoder {
	return &HuffmanEncoder{w: w}
}

func (e *HuffmanEncoder) emit(b byte) {
	if e.err != nil {
		return
	}
	if err := e.w.WriteByte(b); err != nil {
		e.err = err
		return
	}
	if b == 0xFF {
		if err := e.w.WriteByte(0x00); err != nil {
			e.err = err
		}
	}
}

// WriteBits appends the low n bits of v, MSB first.
func (e *HuffmanEncoder) WriteBits(v uint32, n int) error {
	if n == 0 {
		return e.err
	}
	e.bits = (e.bits << uint(n)) | (v & ((1 << uint(n)) - 1))
	e.nBits += n
	for e.nBits >= 8 {
		e.nBits -= 8
		e.emit(byte(e.bits >> uint(e.nBits)))
	}
	return e.err
}

// WriteCode writes one canonical Huffman code.
func (e *HuffmanEncoder) WriteCode(c HuffmanCode) error {
	return e.WriteBits(uint32(c.Code), int(c.Length))
}

// WriteSymbol looks up symbol's canonical code in table and writes it.
func (e *HuffmanEncoder) WriteSymbol(table *HuffmanTable, symbol byte) error {
	c, ok := table.CodeFor(symbol)
	if !ok {
		return NewError(KindInternal, "HuffmanEncoder.WriteSymbol", "symbol not present in table", ErrHuffmanDecode)
	}
	return e.WriteCode(c)
}

// EncodeSigned returns the category (SSSS) of val and its nbits-wide
// magnitude bits using the ITU-T T.81 Table F.1 convention, the
// encode-side mirror of ReceiveExtend. It writes nothing itself.
func EncodeSigned(val int) (ssss int, bits uint32, nbits int) {
	if val == 0 {
		return 0, 0, 0
	}
	av := val
	if av < 0 {
		av = -av
	}
	ssss = 0
	for t := av; t > 0; t >>= 1 {
		ssss++
	}
	if val < 0 {
		val = val - 1 + (1 << uint(ssss))
	}
	return ssss, uint32(val) & ((1 << uint(ssss)) - 1), ssss
}

// Flush pads the final partial byte with 1 bits (the conventional JPEG
// stuffing pattern) and writes it out.
func (e *HuffmanEncoder) Flush() error {
	if e.nBits > 0 {
		pad := 8 - e.nBits
		e.bits = (e.bits << uint(pad)) | ((1 << uint(pad)) - 1)
		e.emit(byte(e.bits))
		e.nBits = 0
	}
	return e.err
}
