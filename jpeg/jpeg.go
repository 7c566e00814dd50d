// Package jpeg is the top-level entry point of the codec subsystem: it
// inspects a bitstream's frame marker and dispatches to the baseline or
// progressive decoder, and exposes a single Encode that can target
// either mode (spec §1 Codec dispatch).
package jpeg

import (
	"bytes"

	"github.com/lucidpix/mediacodec/jpeg/baseline"
	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/jpeg/progressive"
	"github.com/lucidpix/mediacodec/raster"
)

// Mode selects the frame type an Encode call should produce.
type Mode int

const (
	ModeBaseline Mode = iota
	ModeProgressive
)

func (m Mode) String() string {
	if m == ModeProgressive {
		return "progressive"
	}
	return "baseline"
}

// Options configures Decode. A zero-value Options uses package defaults
// for both the baseline and progressive decoders.
type Options struct {
	Transformer    common.Transformer
	ColorConverter common.ColorConverter
}

// Decode reads a bitstream's SOF marker to determine whether it is a
// baseline (SOF0) or progressive (SOF2) frame and dispatches to the
// matching decoder. Any other SOF marker (extended sequential,
// lossless, hierarchical, arithmetic-coded variants) is reported as
// unsupported rather than guessed at.
func Decode(jpegData []byte, opts Options) (*raster.Buffer, error) {
	mode, err := sniffMode(jpegData)
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeProgressive:
		return progressive.Decode(jpegData, progressive.Options{Transformer: opts.Transformer, ColorConverter: opts.ColorConverter})
	default:
		return baseline.Decode(jpegData, baseline.Options{Transformer: opts.Transformer, ColorConverter: opts.ColorConverter})
	}
}

// sniffMode scans the marker sequence up to the first SOF marker without
// decoding any scan data, so Decode can pick the right implementation
// before committing to either one.
func sniffMode(jpegData []byte) (Mode, error) {
	reader := common.NewReader(bytes.NewReader(jpegData))
	marker, err := reader.ReadMarker()
	if err != nil {
		return 0, common.WithContext(err, "jpeg.sniffMode", "reading SOI")
	}
	if marker != common.MarkerSOI {
		return 0, common.NewError(common.KindFormatInvalid, "jpeg.sniffMode", "first marker is not SOI", common.ErrInvalidSOI)
	}

	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			return 0, common.WithContext(err, "jpeg.sniffMode", "reading segment marker")
		}
		switch marker {
		case common.MarkerSOF0:
			return ModeBaseline, nil
		case common.MarkerSOF2:
			return ModeProgressive, nil
		case common.MarkerSOS, common.MarkerEOI:
			return 0, common.NewError(common.KindFormatInvalid, "jpeg.sniffMode", "scan data reached before any SOF marker", common.ErrInvalidSOF)
		default:
			if !common.HasLength(marker) {
				continue
			}
			if common.IsSOF(marker) {
				return 0, common.NewError(common.KindUnsupported, "jpeg.sniffMode", "unsupported SOF variant (extended/lossless/hierarchical/arithmetic)", common.ErrUnsupportedFormat)
			}
			if _, err := reader.ReadSegment(); err != nil {
				return 0, common.WithContext(err, "jpeg.sniffMode", "skipping segment")
			}
		}
	}
}

// Encode produces a complete JPEG bitstream for src in the requested
// mode. Baseline options and progressive options share the same
// quality/rounding/precision/color knobs but are distinct types because
// the two encoders' scan structures differ; EncodeOptions picks the
// fields relevant to mode and ignores the rest.
type EncodeOptions struct {
	Mode            Mode
	Quality         int
	QualityMode     common.QualityMode
	RoundingMode    common.RoundingMode
	Precision       common.Precision
	RestartInterval int
	Transformer     common.Transformer
	ColorConverter  common.ColorConverter

	// Grayscale selects a single-component encode instead of 4:2:0 YCbCr.
	Grayscale bool
	// FullChroma selects 4:4:4 (no chroma subsampling) over 4:2:0.
	FullChroma bool
}

// Encode dispatches to the baseline or progressive encoder per
// opts.Mode.
func Encode(src *raster.Buffer, opts EncodeOptions) ([]byte, error) {
	if opts.Mode == ModeProgressive {
		return progressive.Encode(src, progressive.EncodeOptions{
			Quality:         opts.Quality,
			QualityMode:     opts.QualityMode,
			RoundingMode:    opts.RoundingMode,
			Precision:       opts.Precision,
			Color:           progressiveColorMode(opts),
			RestartInterval: opts.RestartInterval,
			Transformer:     opts.Transformer,
			ColorConverter:  opts.ColorConverter,
		})
	}
	return baseline.Encode(src, baseline.EncodeOptions{
		Quality:         opts.Quality,
		QualityMode:     opts.QualityMode,
		RoundingMode:    opts.RoundingMode,
		Precision:       opts.Precision,
		Color:           baselineColorMode(opts),
		RestartInterval: opts.RestartInterval,
		Transformer:     opts.Transformer,
		ColorConverter:  opts.ColorConverter,
	})
}

func baselineColorMode(opts EncodeOptions) baseline.ColorMode {
	switch {
	case opts.Grayscale:
		return baseline.ColorGray
	case opts.FullChroma:
		return baseline.ColorYCbCr444
	default:
		return baseline.ColorYCbCr420
	}
}

func progressiveColorMode(opts EncodeOptions) progressive.ColorMode {
	switch {
	case opts.Grayscale:
		return progressive.ColorGray
	case opts.FullChroma:
		return progressive.ColorYCbCr444
	default:
		return progressive.ColorYCbCr420
	}
}
