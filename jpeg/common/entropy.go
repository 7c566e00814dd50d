package common

import (
	"bytes"
	"io"
)

// ReadEntropyData reads one scan's entropy-coded segment from r, starting
// immediately after the SOS segment's header bytes, stopping at the next
// marker that is not a stuffed 0xFF00 literal or an RST restart marker.
// Restart markers are consumed and dropped here rather than surfaced to
// the Huffman decoder: both the baseline and progressive scan decoders
// track restart-interval boundaries themselves by counting MCUs or data
// units, so the marker bytes carry no information they need.
func ReadEntropyData(r *Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, WithContext(err, "ReadEntropyData", "reading entropy data")
		}
		if b != 0xFF {
			buf.WriteByte(b)
			continue
		}
		b2, err := r.ReadByte()
		if err == io.EOF {
			buf.WriteByte(b)
			break
		}
		if err != nil {
			return nil, WithContext(err, "ReadEntropyData", "reading entropy data")
		}
		switch {
		case b2 == 0x00:
			buf.WriteByte(b)
			buf.WriteByte(b2)
		case IsRST(0xFF00 | uint16(b2)):
			continue
		default:
			// Marker belongs to the caller: push both bytes back via the
			// reader's internal buffer so the caller's next ReadMarker
			// call reads the marker from its 0xFF byte.
			r.unreadMarker(b, b2)
			return buf.Bytes(), nil
		}
	}
	return buf.Bytes(), nil
}
