package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidpix/mediacodec/jpeg"
	"github.com/lucidpix/mediacodec/rotate"
)

func newRotateCmd() *cobra.Command {
	var (
		angle         float64
		algorithmName string
		output        string
		quality       int
	)
	cmd := &cobra.Command{
		Use:   "rotate <input.jpg>",
		Short: "Decode a JPEG, rotate it by the given angle, and re-encode as baseline JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := stateFrom(cmd.Context())
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
			dst, err := rotate.Rotate(src, angle, algo, rotate.Fill{})
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
				output = args[0] + ".rotated.jpg"
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			state.logger.Info().Float64("angle", angle).Str("algorithm", algo.String()).Msg("rotated")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: rotated %v degrees (%s) -> %s (%dx%d)\n", args[0], angle, algo, output, dst.Width, dst.Height)
			return nil
		},
	}
	cmd.Flags().Float64Var(&angle, "angle", 0, "rotation angle in degrees, clockwise")
	cmd.Flags().StringVar(&algorithmName, "algorithm", "", "nearest|bilinear|bicubic|lanczos (default: config resize-algorithm)")
	cmd.Flags().IntVar(&quality, "quality", 85, "output JPEG quality factor [1,100]")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JPEG file (default: <input>.rotated.jpg)")
	return cmd
}
