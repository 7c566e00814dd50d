package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidpix/mediacodec/jpeg/common"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <input.jpg>",
		Short: "Print JFIF metadata and the frame descriptor without a full decode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return printInfo(cmd, data)
		},
	}
	return cmd
}

// printInfo walks the marker sequence directly rather than reaching
// into baseline/progressive.Decoder internals: info only needs JFIF and
// SOF metadata, never a full pixel decode (spec §4.1/§4.2/§3 Frame
// descriptor).
func printInfo(cmd *cobra.Command, data []byte) error {
	reader := common.NewReader(bytes.NewReader(data))
	marker, err := reader.ReadMarker()
	if err != nil {
		return err
	}
	if marker != common.MarkerSOI {
		return common.NewError(common.KindFormatInvalid, "info", "first marker is not SOI", common.ErrInvalidSOI)
	}

	out := cmd.OutOrStdout()
	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			return err
		}
		switch marker {
		case common.MarkerEOI:
			return nil
		case common.MarkerSOS:
			return nil // metadata of interest always precedes the first scan
		case common.MarkerAPP0:
			payload, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			jfif, err := common.ParseJFIF(payload)
			if err != nil {
				fmt.Fprintf(out, "APP0: not JFIF/JFXX (%v)\n", err)
				continue
			}
			x, y := jfif.DPI()
			fmt.Fprintf(out, "JFIF: version %d.%02d, units=%s, density=%dx%d, dpi=%.1fx%.1f, aspect=%.3f, thumbnail=%dx%d\n",
				jfif.VersionMajor, jfif.VersionMinor, densityUnitsName(jfif.Units), jfif.XDensity, jfif.YDensity, x, y, jfif.AspectRatio(), jfif.ThumbnailW, jfif.ThumbnailH)
		case common.MarkerSOF0, common.MarkerSOF2:
			payload, err := reader.ReadSegment()
			if err != nil {
				return err
			}
			if err := printSOF(out, marker, payload); err != nil {
				return err
			}
		default:
			if !common.HasLength(marker) {
				continue
			}
			if _, err := reader.ReadSegment(); err != nil {
				return err
			}
		}
	}
}

func densityUnitsName(u common.DensityUnits) string {
	switch u {
	case common.DensityDPI:
		return "dpi"
	case common.DensityDPCM:
		return "dpcm"
	default:
		return "none"
	}
}

func printSOF(out io.Writer, marker uint16, payload []byte) error {
	if len(payload) < 6 {
		return common.NewError(common.KindTruncated, "info.printSOF", "SOF segment shorter than fixed header", common.ErrInvalidSOF)
	}
	precision := payload[0]
	height := int(payload[1])<<8 | int(payload[2])
	width := int(payload[3])<<8 | int(payload[4])
	numComponents := int(payload[5])

	mode := "baseline (SOF0)"
	if marker == common.MarkerSOF2 {
		mode = "progressive (SOF2)"
	}
	fmt.Fprintf(out, "Frame: %s, %dx%d, precision=%d, components=%d\n", mode, width, height, precision, numComponents)

	offset := 6
	for i := 0; i < numComponents && offset+2 < len(payload); i++ {
		id := payload[offset]
		hv := payload[offset+1]
		tq := payload[offset+2]
		h, v := hv>>4, hv&0x0F
		fmt.Fprintf(out, "  component %d: id=%d H=%d V=%d quant_table=%d\n", i, id, h, v, tq)
		offset += 3
	}
	return nil
}
