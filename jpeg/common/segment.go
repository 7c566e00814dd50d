package common

import (
	"bufio"
	"bytes"
	"io"
)

// Reader is the Segment Framer (spec §4.1): it scans a JPEG byte stream
// for 0xFF-prefixed markers, skips the fill bytes (0xFF repeated before a
// marker), and hands back marker/payload pairs. It does not undo the
// 0xFF00 stuffing inside entropy-coded data; HuffmanDecoder does that.
type Reader struct {
	r       *bufio.Reader
	offset  int64
	pending []byte // bytes pushed back by unreadMarker, consumed before r
}

// NewReader wraps r for segment-level reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Offset returns the number of bytes consumed so far, used to annotate
// errors with a byte position.
func (d *Reader) Offset() int64 { return d.offset }

// ReadByte reads a single raw byte with no marker interpretation, used by
// the entropy-coded scan reader.
func (d *Reader) ReadByte() (byte, error) {
	if len(d.pending) > 0 {
		b := d.pending[0]
		d.pending = d.pending[1:]
		d.offset++
		return b, nil
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.offset++
	return b, nil
}

// unreadMarker pushes the two bytes of a marker (0xFF, code) back onto the
// stream so the next ReadByte/ReadMarker call sees them again. Used by
// ReadEntropyData when it encounters a real marker while scanning for the
// end of an entropy-coded segment.
func (d *Reader) unreadMarker(b, code byte) {
	d.pending = append([]byte{b, code}, d.pending...)
	d.offset -= 2
}

// ReadMarker reads the next marker, skipping any 0xFF fill bytes that
// precede it (ITU-T T.81 allows an arbitrary number of 0xFF padding bytes
// before a marker code).
func (d *Reader) ReadMarker() (uint16, error) {
	b, err := d.ReadByte()
	if err != nil {
		return 0, NewErrorAt(KindTruncated, "ReadMarker", "expected 0xFF", d.offset, ErrUnexpectedEOF)
	}
	for b != 0xFF {
		b, err = d.ReadByte()
		if err != nil {
			return 0, NewErrorAt(KindTruncated, "ReadMarker", "expected 0xFF", d.offset, ErrUnexpectedEOF)
		}
	}
	for b == 0xFF {
		b, err = d.ReadByte()
		if err != nil {
			return 0, NewErrorAt(KindTruncated, "ReadMarker", "marker code truncated", d.offset, ErrUnexpectedEOF)
		}
	}
	if b == 0x00 {
		return 0, NewErrorAt(KindFormatInvalid, "ReadMarker", "0xFF00 stuffing outside entropy data", d.offset, ErrInvalidMarker)
	}
	return 0xFF00 | uint16(b), nil
}

// ReadSegment reads the two-byte big-endian length field that follows
// most markers and returns the length-2 payload bytes that follow it.
// Markers without a length field (SOI, EOI, RSTn) must not call this.
func (d *Reader) ReadSegment() ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return nil, NewErrorAt(KindTruncated, "ReadSegment", "segment length field", d.offset, ErrUnexpectedEOF)
	}
	d.offset += 2

	length := int(lenBuf[0])<<8 | int(lenBuf[1])
	if length < 2 {
		return nil, NewErrorAt(KindFormatInvalid, "ReadSegment", "segment length below minimum of 2", d.offset, ErrInvalidData)
	}
	payloadLen := length - 2
	payload := make([]byte, payloadLen)
	n, err := io.ReadFull(d.r, payload)
	d.offset += int64(n)
	if err != nil {
		return nil, NewErrorAt(KindTruncated, "ReadSegment", "segment payload shorter than declared length", d.offset, ErrUnexpectedEOF)
	}
	return payload, nil
}

// Writer is the encode-side counterpart of Reader: it assembles markers
// and length-prefixed segments into a byte buffer.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteMarker appends a bare two-byte marker with no payload (SOI, EOI,
// RSTn).
func (w *Writer) WriteMarker(marker uint16) error {
	w.buf.WriteByte(byte(marker >> 8))
	w.buf.WriteByte(byte(marker))
	return nil
}

// WriteSegment appends a marker followed by its two-byte big-endian
// length field and payload.
func (w *Writer) WriteSegment(marker uint16, data []byte) error {
	if len(data)+2 > 0xFFFF {
		return NewError(KindInputInvalid, "WriteSegment", "segment payload too large", ErrInvalidData)
	}
	if err := w.WriteMarker(marker); err != nil {
		return err
	}
	length := len(data) + 2
	w.buf.WriteByte(byte(length >> 8))
	w.buf.WriteByte(byte(length))
	w.buf.Write(data)
	return nil
}

// WriteBytes appends raw bytes with no framing, used for entropy-coded
// scan data the caller has already stuffed.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
