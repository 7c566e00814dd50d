package codec

import (
	"github.com/lucidpix/mediacodec/jpeg"
	"github.com/lucidpix/mediacodec/raster"
)

// jpegCodec adapts jpeg.Decode/Encode to the Codec interface for one
// jpeg.Mode, so both variants can be looked up by name through a single
// registry instead of callers importing jpeg/baseline or
// jpeg/progressive directly.
type jpegCodec struct {
	name string
	mode jpeg.Mode
}

func (c *jpegCodec) Name() string { return c.name }

func (c *jpegCodec) Decode(data []byte) (*raster.Buffer, error) {
	return jpeg.Decode(data, jpeg.Options{})
}

func (c *jpegCodec) Encode(src *raster.Buffer, opts EncodeParams) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return jpeg.Encode(src, jpeg.EncodeOptions{
		Mode:            c.mode,
		Quality:         opts.Quality,
		QualityMode:     opts.QualityMode,
		RoundingMode:    opts.RoundingMode,
		Precision:       opts.Precision,
		RestartInterval: opts.RestartInterval,
		Grayscale:       opts.Grayscale,
		FullChroma:      opts.FullChroma,
	})
}

func init() {
	Register(&jpegCodec{name: "jpeg-baseline", mode: jpeg.ModeBaseline})
	Register(&jpegCodec{name: "jpeg-progressive", mode: jpeg.ModeProgressive})
}
