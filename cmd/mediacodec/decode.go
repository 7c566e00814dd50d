package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidpix/mediacodec/jpeg"
)

func newDecodeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "decode <input.jpg>",
		Short: "Decode a baseline or progressive JPEG to a raw RGBA8888 buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := stateFrom(cmd.Context())
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			buf, err := jpeg.Decode(data, jpeg.Options{})
			if err != nil {
				return err
			}
			state.logger.Info().Int("width", buf.Width).Int("height", buf.Height).Msg("decoded")
			if output == "" {
				output = args[0] + ".rgba"
			}
			if err := os.WriteFile(output, buf.Pixels, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d -> %s\n", args[0], buf.Width, buf.Height, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output raw RGBA8888 file (default: <input>.rgba)")
	return cmd
}
