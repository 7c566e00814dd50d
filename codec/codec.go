// Package codec provides the generic codec/registry abstraction this
// module's JPEG variants and typed option structs are exposed through.
// Adapted from the teacher's dependency-free codec.Codec/Registry
// (originally keyed by DICOM transfer syntax UID) into a plain
// format-name registry with no DICOM concept.
package codec

import (
	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/raster"
	"github.com/lucidpix/mediacodec/resize"
)

// Codec is the interface every registered image codec implements.
type Codec interface {
	// Encode encodes an RGBA buffer into this codec's bitstream format.
	Encode(src *raster.Buffer, opts EncodeParams) ([]byte, error)

	// Decode decodes a bitstream into an RGBA buffer.
	Decode(data []byte) (*raster.Buffer, error)

	// Name returns the registry key this codec is registered under,
	// e.g. "jpeg-baseline" or "jpeg-progressive".
	Name() string
}

// EncodeParams carries the options common across this module's codecs.
// Individual codecs read the fields relevant to their scan structure
// and ignore the rest, the way jpeg.EncodeOptions already does between
// baseline and progressive.
type EncodeParams struct {
	Quality         int
	QualityMode     common.QualityMode
	RoundingMode    common.RoundingMode
	Precision       common.Precision
	RestartInterval int
	Grayscale       bool
	FullChroma      bool
}

// Validate checks that EncodeParams carries a legal quality factor
// (spec §7 KindInputInvalid: "out-of-range quality").
func (p EncodeParams) Validate() error {
	if p.Quality < 1 || p.Quality > 100 {
		return raster.NewError(raster.KindInputInvalid, "codec.EncodeParams.Validate", "quality must be in [1,100]")
	}
	return nil
}

// ResizeOptions is the typed configuration record spec §9's design
// notes call for in place of a loose option bag: the recognized fields
// for a resize request, nothing else.
type ResizeOptions struct {
	Algorithm    resize.Algorithm
	MaxDimension uint32
}

// QuantOptions is the typed configuration record for quantization
// requests (spec §9 design notes).
type QuantOptions struct {
	Precision      common.Precision
	QualityMode    common.QualityMode
	RoundingMode   common.RoundingMode
	ValidateInput  bool
	ValidateOutput bool
}
