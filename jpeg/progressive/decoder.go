package progressive

import (
	"bytes"
	"fmt"

	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/raster"
)

const maxComponents = 4

// Component holds one color component's frame geometry and the
// coefficient storage accumulated across every scan that touches it.
// Unlike the sequential decoder, coefficients here are not dequantized
// and inverse-transformed until every scan referencing the image has
// been processed (spec §4.8: intermediate images are a read-only view
// over coef, never this decoder's own write path).
type Component struct {
	ID     byte
	H, V   int
	Tq     int
	blocksW, blocksH         int // MCU-padded block grid (storage dimensions)
	compBlocksW, compBlocksH int // actual block grid covering the component's real samples
	dcPred int
	coef   [][64]int32 // natural (non-zig-zag) coefficient order, len blocksW*blocksH
}

// Decoder holds the frame state for one progressive decode: quant
// tables, up to four Huffman table slots per class, per-component
// geometry and accumulated coefficients, and scan sequencing state.
type Decoder struct {
	width, height int
	precision     int
	components    []*Component
	qtables       [4][64]int32
	haveQ         [4]bool
	dcTables      [4]*common.HuffmanTable
	acTables      [4]*common.HuffmanTable
	restartInt    int
	maxH, maxV    int
	mcuCols       int
	mcuRows       int
	coord         *Coordinator
	eobRun        int
	transform     common.Transformer
	color         common.ColorConverter
}

// Options configures a progressive Decode call. A zero-value Options
// uses the package's default Transformer and ColorConverter.
type Options struct {
	Transformer    common.Transformer
	ColorConverter common.ColorConverter
}

func (o Options) resolve() Options {
	if o.Transformer == nil {
		o.Transformer = common.DefaultTransformer
	}
	if o.ColorConverter == nil {
		o.ColorConverter = common.DefaultColorConverter
	}
	return o
}

// Decode decodes one progressive JPEG bitstream (everything from SOI
// onward, including every entropy-coded scan) into an RGBA buffer.
func Decode(jpegData []byte, opts Options) (*raster.Buffer, error) {
	opts = opts.resolve()
	reader := common.NewReader(bytes.NewReader(jpegData))
	d := &Decoder{transform: opts.Transformer, color: opts.ColorConverter, coord: NewCoordinator()}

	marker, err := reader.ReadMarker()
	if err != nil {
		return nil, common.WithContext(err, "progressive.Decode", "reading SOI")
	}
	if marker != common.MarkerSOI {
		return nil, common.NewError(common.KindFormatInvalid, "progressive.Decode", "first marker is not SOI", common.ErrInvalidSOI)
	}

	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			return nil, common.WithContext(err, "progressive.Decode", "reading segment marker")
		}

		switch marker {
		case common.MarkerSOF2:
			if err := d.parseSOF(reader); err != nil {
				return nil, err
			}
		case common.MarkerSOF0:
			return nil, common.NewError(common.KindUnsupported, "progressive.Decode", "sequential frame (SOF0) passed to progressive decoder", common.ErrUnsupportedFormat)
		case common.MarkerDQT:
			if err := d.parseDQT(reader); err != nil {
				return nil, err
			}
		case common.MarkerDHT:
			if err := d.parseDHT(reader); err != nil {
				return nil, err
			}
		case common.MarkerDRI:
			if err := d.parseDRI(reader); err != nil {
				return nil, err
			}
		case common.MarkerSOS:
			if err := d.parseAndDecodeScan(reader); err != nil {
				return nil, err
			}
		case common.MarkerEOI:
			d.coord.Complete()
			return d.reconstruct()
		default:
			if common.HasLength(marker) {
				if _, err := reader.ReadSegment(); err != nil {
					return nil, common.WithContext(err, "progressive.Decode", "skipping unrecognized segment")
				}
			}
		}
	}
}

func (d *Decoder) parseSOF(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return common.WithContext(err, "parseSOF", "reading segment")
	}
	if len(data) < 6 {
		return common.NewError(common.KindTruncated, "parseSOF", "segment shorter than fixed header", common.ErrInvalidSOF)
	}

	d.precision = int(data[0])
	if d.precision != 8 {
		return common.NewError(common.KindUnsupported, "parseSOF", fmt.Sprintf("precision %d (only 8-bit progressive supported)", d.precision), common.ErrInvalidPrecision)
	}

	d.height = int(data[1])<<8 | int(data[2])
	d.width = int(data[3])<<8 | int(data[4])
	if d.width <= 0 || d.height <= 0 {
		return common.NewError(common.KindFormatInvalid, "parseSOF", "zero image dimension", common.ErrInvalidDimensions)
	}

	numComponents := int(data[5])
	if numComponents < 1 || numComponents > maxComponents {
		return common.NewError(common.KindUnsupported, "parseSOF", fmt.Sprintf("%d components (max %d)", numComponents, maxComponents), common.ErrInvalidComponents)
	}
	if len(data) < 6+numComponents*3 {
		return common.NewError(common.KindTruncated, "parseSOF", "component records shorter than declared count", common.ErrInvalidSOF)
	}

	maxH, maxV := 1, 1
	d.components = make([]*Component, numComponents)
	for i := 0; i < numComponents; i++ {
		off := 6 + i*3
		c := &Component{
			ID: data[off],
			H:  int(data[off+1] >> 4),
			V:  int(data[off+1] & 0x0F),
			Tq: int(data[off+2]),
		}
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return common.NewError(common.KindUnsupported, "parseSOF", fmt.Sprintf("component %d sampling factors %dx%d out of [1,4]", i, c.H, c.V), common.ErrInvalidSOF)
		}
		if c.Tq > 3 {
			return common.NewError(common.KindFormatInvalid, "parseSOF", fmt.Sprintf("component %d quant table id %d >= 4", i, c.Tq), common.ErrInvalidSOF)
		}
		if c.H > maxH {
			maxH = c.H
		}
		if c.V > maxV {
			maxV = c.V
		}
		d.components[i] = c
	}

	d.maxH, d.maxV = maxH, maxV
	d.mcuCols = common.DivCeil(d.width, maxH*8)
	d.mcuRows = common.DivCeil(d.height, maxV*8)

	for _, c := range d.components {
		c.blocksW = d.mcuCols * c.H
		c.blocksH = d.mcuRows * c.V
		c.compBlocksW = common.DivCeil(d.width*c.H, maxH*8)
		c.compBlocksH = common.DivCeil(d.height*c.V, maxV*8)
		c.coef = make([][64]int32, c.blocksW*c.blocksH)
	}

	return nil
}

func (d *Decoder) parseDQT(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return common.WithContext(err, "parseDQT", "reading segment")
	}

	offset := 0
	for offset < len(data) {
		pqTq := data[offset]
		pq := pqTq >> 4
		tq := pqTq & 0x0F
		if tq > 3 {
			return common.NewError(common.KindFormatInvalid, "parseDQT", fmt.Sprintf("table id %d >= 4", tq), common.ErrInvalidDQT)
		}
		offset++

		var table [64]int32
		if pq == 0 {
			if offset+64 > len(data) {
				return common.NewError(common.KindTruncated, "parseDQT", "8-bit table truncated", common.ErrInvalidDQT)
			}
			for i := 0; i < 64; i++ {
				table[i] = int32(data[offset+i])
			}
			offset += 64
		} else {
			if offset+128 > len(data) {
				return common.NewError(common.KindTruncated, "parseDQT", "16-bit table truncated", common.ErrInvalidDQT)
			}
			for i := 0; i < 64; i++ {
				table[i] = int32(data[offset+i*2])<<8 | int32(data[offset+i*2+1])
			}
			offset += 128
		}

		if err := common.ValidateQuantTable(table); err != nil {
			return common.WithContext(err, "parseDQT", fmt.Sprintf("table %d", tq))
		}

		d.qtables[tq] = table
		d.haveQ[tq] = true
	}

	return nil
}

func (d *Decoder) parseDHT(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return common.WithContext(err, "parseDHT", "reading segment")
	}

	offset := 0
	for offset < len(data) {
		tcTh := data[offset]
		tc := tcTh >> 4
		th := tcTh & 0x0F
		if th > 3 {
			return common.NewError(common.KindFormatInvalid, "parseDHT", fmt.Sprintf("table id %d >= 4", th), common.ErrInvalidDHT)
		}
		offset++

		table := &common.HuffmanTable{}
		total := 0
		if offset+16 > len(data) {
			return common.NewError(common.KindTruncated, "parseDHT", "BITS array truncated", common.ErrInvalidDHT)
		}
		for i := 0; i < 16; i++ {
			table.Bits[i] = int(data[offset])
			total += table.Bits[i]
			offset++
		}

		if offset+total > len(data) {
			return common.NewError(common.KindTruncated, "parseDHT", "HUFFVAL truncated", common.ErrInvalidDHT)
		}
		table.Values = append([]byte(nil), data[offset:offset+total]...)
		offset += total

		if err := table.Build(); err != nil {
			return common.WithContext(err, "parseDHT", fmt.Sprintf("table class %d id %d", tc, th))
		}

		if tc == 0 {
			d.dcTables[th] = table
		} else {
			d.acTables[th] = table
		}
	}

	return nil
}

func (d *Decoder) parseDRI(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return common.WithContext(err, "parseDRI", "reading segment")
	}
	if len(data) != 2 {
		return common.NewError(common.KindFormatInvalid, "parseDRI", "payload is not 2 bytes", common.ErrInvalidData)
	}
	d.restartInt = int(data[0])<<8 | int(data[1])
	return nil
}

// reconstruct dequantizes and inverse-transforms every component's
// accumulated coefficients and assembles the RGBA output. It runs once,
// after the final EOI, exactly as spec §4.8 requires: intermediate
// scans only ever accumulate into Component.coef.
func (d *Decoder) reconstruct() (*raster.Buffer, error) {
	if len(d.components) == 0 {
		return nil, common.NewError(common.KindFormatInvalid, "reconstruct", "no SOF frame seen before EOI", common.ErrInvalidSOF)
	}

	planes := make([][]byte, len(d.components))
	for ci, c := range d.components {
		if !d.haveQ[c.Tq] {
			return nil, common.NewError(common.KindFormatInvalid, "reconstruct", fmt.Sprintf("component %d references unset quant table %d", ci, c.Tq), common.ErrInvalidDQT)
		}
		qtable := &d.qtables[c.Tq]
		plane := make([]byte, c.compBlocksW*8*c.compBlocksH*8)
		stride := c.compBlocksW * 8

		for by := 0; by < c.compBlocksH; by++ {
			for bx := 0; bx < c.compBlocksW; bx++ {
				coef := c.coef[by*c.blocksW+bx]
				for k := 0; k < 64; k++ {
					coef[common.ZigZag[k]] *= qtable[k]
				}
				d.transform.Inverse(coef[:], plane[(by*8)*stride+bx*8:], stride)
			}
		}
		planes[ci] = plane
	}

	buf := raster.New(d.width, d.height)
	sample := func(ci, x, y int) byte {
		c := d.components[ci]
		sx := (x * c.H) / d.maxH
		sy := (y * c.V) / d.maxV
		bx, by := sx/8, sy/8
		if bx >= c.compBlocksW || by >= c.compBlocksH {
			return 0
		}
		stride := c.compBlocksW * 8
		return planes[ci][(by*8+sy%8)*stride+bx*8+sx%8]
	}

	n := len(d.components)
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			switch n {
			case 1:
				v := sample(0, x, y)
				buf.Set(x, y, v, v, v, 255)
			case 2:
				g := sample(0, x, y)
				a := sample(1, x, y)
				buf.Set(x, y, g, g, g, a)
			case 3:
				yy := sample(0, x, y)
				cb := sample(1, x, y)
				cr := sample(2, x, y)
				r, g, b := d.color.YCbCrToRGB(yy, cb, cr)
				buf.Set(x, y, r, g, b, 255)
			default:
				r := sample(0, x, y)
				g := sample(1, x, y)
				b := sample(2, x, y)
				a := sample(3, x, y)
				buf.Set(x, y, r, g, b, a)
			}
		}
	}

	return buf, nil
}
