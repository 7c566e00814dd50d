// Package config loads the typed configuration structs spec §9's design
// notes call for using github.com/spf13/viper bound to
// github.com/spf13/pflag flags, the same pairing a3tai-mcp-pdf-reader
// uses. Only cmd/mediacodec imports this package; the codec core never
// reads configuration itself (spec §5: no process-wide state).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/resize"
)

// Config is the resolved, typed configuration for a CLI invocation. It
// has no loose option-bag fields: every field is an enumerated setting
// named in spec §9.
type Config struct {
	// Resize settings.
	ResizeAlgorithm   resize.Algorithm
	ResizeMaxDimension int

	// Quantization settings.
	QuantPrecision    common.Precision
	QuantQualityMode  common.QualityMode
	QuantRoundingMode common.RoundingMode

	// Logging settings.
	LogLevel  string
	LogFile   string
	LogMaxMB  int
}

// Defaults returns the documented default Config (spec §9: "missing
// fields take documented defaults").
func Defaults() Config {
	return Config{
		ResizeAlgorithm:    resize.Bilinear,
		ResizeMaxDimension: resize.DefaultMaxDimension,
		QuantPrecision:     common.Precision8Bit,
		QuantQualityMode:   common.QualityStandard,
		QuantRoundingMode:  common.RoundNearest,
		LogLevel:           "info",
		LogFile:            "",
		LogMaxMB:           100,
	}
}

// BindFlags registers the flags Config understands onto fs and binds
// them into v, so command-line, environment (MEDIACODEC_ prefix), and
// config-file values all resolve through one viper instance.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := Defaults()
	fs.String("resize-algorithm", d.ResizeAlgorithm.String(), "resize algorithm: nearest|bilinear|bicubic|lanczos")
	fs.Int("resize-max-dimension", d.ResizeMaxDimension, "maximum resize target dimension")
	fs.String("quant-precision", "8bit", "quantization table precision: 8bit|16bit")
	fs.String("quant-quality-mode", "standard", "quality scaling formula: standard|linear|perceptual")
	fs.String("quant-rounding-mode", "nearest", "block quantize rounding: nearest|truncate|floor|ceiling|away_from_zero")
	fs.String("log-level", d.LogLevel, "log level: debug|info|warn|error")
	fs.String("log-file", d.LogFile, "log file path; empty logs to stderr only")
	fs.Int("log-max-mb", d.LogMaxMB, "log file rotation size in megabytes")

	v.SetEnvPrefix("MEDIACODEC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return v.BindPFlags(fs)
}

// Load reads bound flag/env/file values out of v into a Config,
// rejecting any enum value it does not recognize (spec §9: "Unknown
// fields are a compile-time error" — the nearest runtime analogue here
// is rejecting unknown enum strings at load time rather than silently
// defaulting).
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()

	algo, err := parseAlgorithm(v.GetString("resize-algorithm"))
	if err != nil {
		return Config{}, err
	}
	cfg.ResizeAlgorithm = algo
	cfg.ResizeMaxDimension = v.GetInt("resize-max-dimension")

	precision, err := parsePrecision(v.GetString("quant-precision"))
	if err != nil {
		return Config{}, err
	}
	cfg.QuantPrecision = precision

	qualityMode, err := parseQualityMode(v.GetString("quant-quality-mode"))
	if err != nil {
		return Config{}, err
	}
	cfg.QuantQualityMode = qualityMode

	roundingMode, err := parseRoundingMode(v.GetString("quant-rounding-mode"))
	if err != nil {
		return Config{}, err
	}
	cfg.QuantRoundingMode = roundingMode

	cfg.LogLevel = v.GetString("log-level")
	cfg.LogFile = v.GetString("log-file")
	cfg.LogMaxMB = v.GetInt("log-max-mb")
	return cfg, nil
}

func parseAlgorithm(s string) (resize.Algorithm, error) {
	switch s {
	case "nearest":
		return resize.Nearest, nil
	case "bilinear":
		return resize.Bilinear, nil
	case "bicubic":
		return resize.Bicubic, nil
	case "lanczos":
		return resize.Lanczos, nil
	default:
		return 0, fmt.Errorf("config: unknown resize-algorithm %q", s)
	}
}

func parsePrecision(s string) (common.Precision, error) {
	switch s {
	case "8bit":
		return common.Precision8Bit, nil
	case "16bit":
		return common.Precision16Bit, nil
	default:
		return 0, fmt.Errorf("config: unknown quant-precision %q", s)
	}
}

func parseQualityMode(s string) (common.QualityMode, error) {
	switch s {
	case "standard":
		return common.QualityStandard, nil
	case "linear":
		return common.QualityLinear, nil
	case "perceptual":
		return common.QualityPerceptual, nil
	default:
		return 0, fmt.Errorf("config: unknown quant-quality-mode %q", s)
	}
}

func parseRoundingMode(s string) (common.RoundingMode, error) {
	switch s {
	case "nearest":
		return common.RoundNearest, nil
	case "truncate":
		return common.RoundTruncate, nil
	case "floor":
		return common.RoundFloor, nil
	case "ceiling":
		return common.RoundCeiling, nil
	case "away_from_zero":
		return common.RoundAwayFromZero, nil
	default:
		return 0, fmt.Errorf("config: unknown quant-rounding-mode %q", s)
	}
}
