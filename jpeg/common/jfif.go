package common

import "bytes"

// DensityUnits classifies the JFIF density field (spec §3 JFIF record).
type DensityUnits int

const (
	DensityNone DensityUnits = iota // aspect ratio only, no absolute units
	DensityDPI                      // dots per inch
	DensityDPCM                     // dots per centimeter
)

var jfifIdentifier = []byte("JFIF\x00")
var jfxxIdentifier = []byte("JFXX\x00")

// JFIF holds the decoded fields of an APP0 JFIF/JFXX segment (spec §4.2,
// §6).
type JFIF struct {
	Extension      bool // true if the identifier was "JFXX\0" rather than "JFIF\0"
	VersionMajor   byte
	VersionMinor   byte
	Units          DensityUnits
	XDensity       uint16
	YDensity       uint16
	ThumbnailW     byte
	ThumbnailH     byte
	ThumbnailPixel []byte // ThumbnailW*ThumbnailH*3 bytes, RGB888, nil if no thumbnail
}

// ParseJFIF parses an APP0 payload (the bytes between the segment length
// field and the next marker). It accepts both the "JFIF\0" and "JFXX\0"
// identifiers; per spec an unrecognized version number is reported as-is
// rather than rejected.
func ParseJFIF(payload []byte) (*JFIF, error) {
	if len(payload) < 5 {
		return nil, NewError(KindTruncated, "ParseJFIF", "payload shorter than identifier", ErrUnexpectedEOF)
	}

	j := &JFIF{}
	switch {
	case bytes.Equal(payload[:5], jfifIdentifier):
		j.Extension = false
	case bytes.Equal(payload[:5], jfxxIdentifier):
		j.Extension = true
	default:
		return nil, NewError(KindFormatInvalid, "ParseJFIF", "identifier is neither JFIF\\0 nor JFXX\\0", ErrInvalidData)
	}

	if j.Extension {
		// JFXX extension segments carry only a thumbnail format byte and
		// format-specific data; no density fields. Expose what we can.
		return j, nil
	}

	if len(payload) < 14 {
		return nil, NewError(KindTruncated, "ParseJFIF", "JFIF payload shorter than fixed header", ErrUnexpectedEOF)
	}

	j.VersionMajor = payload[5]
	j.VersionMinor = payload[6]

	switch payload[7] {
	case 0:
		j.Units = DensityNone
	case 1:
		j.Units = DensityDPI
	case 2:
		j.Units = DensityDPCM
	default:
		return nil, NewError(KindFormatInvalid, "ParseJFIF", "density units out of range [0,2]", ErrInvalidData)
	}

	j.XDensity = uint16(payload[8])<<8 | uint16(payload[9])
	j.YDensity = uint16(payload[10])<<8 | uint16(payload[11])
	j.ThumbnailW = payload[12]
	j.ThumbnailH = payload[13]

	// Thumbnail dimensions are single bytes so they are always <= 255;
	// the invariant spec §4.2 calls out is enforced implicitly by the
	// field width. What must still be checked is that the declared byte
	// count is actually present.
	need := int(j.ThumbnailW) * int(j.ThumbnailH) * 3
	if len(payload) < 14+need {
		return nil, NewError(KindTruncated, "ParseJFIF", "thumbnail data shorter than width*height*3", ErrUnexpectedEOF)
	}
	if need > 0 {
		j.ThumbnailPixel = append([]byte(nil), payload[14:14+need]...)
	}

	return j, nil
}

// DPI converts the stored density to dots-per-inch. If Units is
// DensityNone, the X/Y density fields are a pixel aspect ratio rather
// than an absolute density; DPI returns them unconverted in that case,
// since there is no absolute unit to convert from.
func (j *JFIF) DPI() (x, y float64) {
	switch j.Units {
	case DensityDPI:
		return float64(j.XDensity), float64(j.YDensity)
	case DensityDPCM:
		const cmPerInch = 2.54
		return float64(j.XDensity) * cmPerInch, float64(j.YDensity) * cmPerInch
	default:
		return float64(j.XDensity), float64(j.YDensity)
	}
}

// AspectRatio returns XDensity/YDensity, the pixel aspect ratio
// regardless of Units (a DensityNone record stores the ratio directly in
// these two fields).
func (j *JFIF) AspectRatio() float64 {
	if j.YDensity == 0 {
		return 1.0
	}
	return float64(j.XDensity) / float64(j.YDensity)
}

// EncodeJFIF serializes j back into an APP0 payload body (everything
// after the marker and length field), the inverse of ParseJFIF for the
// non-extension case.
func EncodeJFIF(j *JFIF) []byte {
	out := make([]byte, 14+len(j.ThumbnailPixel))
	copy(out[0:5], jfifIdentifier)
	out[5] = j.VersionMajor
	out[6] = j.VersionMinor
	out[7] = byte(j.Units)
	out[8] = byte(j.XDensity >> 8)
	out[9] = byte(j.XDensity)
	out[10] = byte(j.YDensity >> 8)
	out[11] = byte(j.YDensity)
	out[12] = j.ThumbnailW
	out[13] = j.ThumbnailH
	copy(out[14:], j.ThumbnailPixel)
	return out
}
