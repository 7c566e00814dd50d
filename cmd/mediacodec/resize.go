package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidpix/mediacodec/jpeg"
	"github.com/lucidpix/mediacodec/resize"
)

func newResizeCmd() *cobra.Command {
	var (
		width, height int
		algorithmName string
		output        string
		quality       int
	)
	cmd := &cobra.Command{
		Use:   "resize <input.jpg>",
		Short: "Decode a JPEG, resize it, and re-encode as baseline JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := stateFrom(cmd.Context())
			if width <= 0 || height <= 0 {
				return fmt.Errorf("resize: --width and --height are required and must be positive")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			src, err := jpeg.Decode(data, jpeg.Options{})
			if err != nil {
				return err
			}

			algo := state.cfg.ResizeAlgorithm
			if algorithmName != "" {
				algo, err = parseAlgorithmFlag(algorithmName)
				if err != nil {
					return err
				}
			}
			dst, err := resize.Resize(src, width, height, resize.Options{
				Algorithm:    algo,
				MaxDimension: state.cfg.ResizeMaxDimension,
			})
			if err != nil {
				return err
			}

			out, err := jpeg.Encode(dst, jpeg.EncodeOptions{
				Mode:         jpeg.ModeBaseline,
				Quality:      quality,
				QualityMode:  state.cfg.QuantQualityMode,
				RoundingMode: state.cfg.QuantRoundingMode,
				Precision:    state.cfg.QuantPrecision,
			})
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".resized.jpg"
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			state.logger.Info().Int("src_w", src.Width).Int("src_h", src.Height).
				Int("dst_w", width).Int("dst_h", height).Str("algorithm", algo.String()).Msg("resized")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d -> %dx%d (%s) -> %s\n", args[0], src.Width, src.Height, width, height, algo, output)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "target width (required)")
	cmd.Flags().IntVar(&height, "height", 0, "target height (required)")
	cmd.Flags().StringVar(&algorithmName, "algorithm", "", "nearest|bilinear|bicubic|lanczos (default: config resize-algorithm)")
	cmd.Flags().IntVar(&quality, "quality", 85, "output JPEG quality factor [1,100]")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JPEG file (default: <input>.resized.jpg)")
	return cmd
}

func parseAlgorithmFlag(s string) (resize.Algorithm, error) {
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
		return 0, fmt.Errorf("unknown --algorithm %q", s)
	}
}
