package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidpix/mediacodec/jpeg"
	"github.com/lucidpix/mediacodec/raster"
)

func newEncodeCmd() *cobra.Command {
	var (
		width, height int
		quality       int
		progressive   bool
		grayscale     bool
		fullChroma    bool
		output        string
	)
	cmd := &cobra.Command{
		Use:   "encode <input.rgba>",
		Short: "Encode a raw RGBA8888 buffer to baseline or progressive JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := stateFrom(cmd.Context())
			if width <= 0 || height <= 0 {
				return fmt.Errorf("encode: --width and --height are required and must be positive")
			}
			pixels, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			buf, err := raster.Wrap(width, height, pixels)
			if err != nil {
				return err
			}
			mode := jpeg.ModeBaseline
			if progressive {
				mode = jpeg.ModeProgressive
			}
			out, err := jpeg.Encode(buf, jpeg.EncodeOptions{
				Mode:            mode,
				Quality:         quality,
				QualityMode:     state.cfg.QuantQualityMode,
				RoundingMode:    state.cfg.QuantRoundingMode,
				Precision:       state.cfg.QuantPrecision,
				RestartInterval: 0,
				Grayscale:       grayscale,
				FullChroma:      fullChroma,
			})
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".jpg"
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			state.logger.Info().Int("bytes", len(out)).Str("mode", mode.String()).Msg("encoded")
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", args[0], output, len(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "source buffer width (required)")
	cmd.Flags().IntVar(&height, "height", 0, "source buffer height (required)")
	cmd.Flags().IntVar(&quality, "quality", 85, "JPEG quality factor [1,100]")
	cmd.Flags().BoolVar(&progressive, "progressive", false, "emit progressive (SOF2) instead of baseline (SOF0) JPEG")
	cmd.Flags().BoolVar(&grayscale, "grayscale", false, "encode a single-component grayscale frame")
	cmd.Flags().BoolVar(&fullChroma, "full-chroma", false, "use 4:4:4 instead of 4:2:0 chroma subsampling")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JPEG file (default: <input>.jpg)")
	return cmd
}
