// Package baseline implements ITU-T T.81 baseline sequential JPEG
// decode and encode (spec §4.7 Scan Decoder, restricted to the
// sequential (Ss=0,Se=63,Ah=0,Al=0) scan shape).
package baseline

import (
	"bytes"
	"fmt"

	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/raster"
)

const maxComponents = 4

// Component holds one color component's frame and scan parameters plus
// its decoded coefficient storage, addressed block by block.
type Component struct {
	ID              byte
	H, V            int
	Tq              int
	width           int // component width in blocks
	height          int // component height in blocks
	dcTableSelector int
	acTableSelector int
	dcPred          int
	data            []byte // decoded 8x8 spatial blocks, row-major by block
}

// Decoder holds the frame state for one baseline decode: quant tables,
// Huffman table slots, and per-component geometry.
type Decoder struct {
	width, height int
	components    []*Component
	qtables       [4][64]int32
	haveQ         [4]bool
	dcTables      [4]*common.HuffmanTable
	acTables      [4]*common.HuffmanTable
	mcuWidth      int
	mcuHeight     int
	restartInt    int
	precision     int
	transform     common.Transformer
	color         common.ColorConverter
}

// Options configures a baseline Decode call. A zero-value Options uses
// the package's default Transformer and ColorConverter.
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

// Decode decodes one baseline JPEG bitstream (everything from SOI
// onward, including the entropy-coded scan) into an RGBA buffer.
func Decode(jpegData []byte, opts Options) (*raster.Buffer, error) {
	opts = opts.resolve()
	reader := common.NewReader(bytes.NewReader(jpegData))
	d := &Decoder{transform: opts.Transformer, color: opts.ColorConverter}

	marker, err := reader.ReadMarker()
	if err != nil {
		return nil, common.WithContext(err, "baseline.Decode", "reading SOI")
	}
	if marker != common.MarkerSOI {
		return nil, common.NewError(common.KindFormatInvalid, "baseline.Decode", "first marker is not SOI", common.ErrInvalidSOI)
	}

	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			return nil, common.WithContext(err, "baseline.Decode", "reading segment marker")
		}

		switch marker {
		case common.MarkerSOF0:
			if err := d.parseSOF(reader); err != nil {
				return nil, err
			}
		case common.MarkerSOF2:
			return nil, common.NewError(common.KindUnsupported, "baseline.Decode", "progressive frame (SOF2) passed to baseline decoder", common.ErrUnsupportedFormat)
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
			if err := d.parseSOS(reader); err != nil {
				return nil, err
			}
			if err := d.decodeScan(reader); err != nil {
				return nil, err
			}
			return d.convertToRGBA(), nil
		case common.MarkerEOI:
			return d.convertToRGBA(), nil
		default:
			if common.HasLength(marker) {
				if _, err := reader.ReadSegment(); err != nil {
					return nil, common.WithContext(err, "baseline.Decode", "skipping unrecognized segment")
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
		return common.NewError(common.KindUnsupported, "parseSOF", fmt.Sprintf("precision %d (only 8-bit baseline supported)", d.precision), common.ErrInvalidPrecision)
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

	d.mcuWidth = maxH * 8
	d.mcuHeight = maxV * 8
	for _, c := range d.components {
		c.width = common.DivCeil(d.width*c.H, maxH*8)
		c.height = common.DivCeil(d.height*c.V, maxV*8)
		c.data = make([]byte, c.width*c.height*64)
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

		if tc == 0 {
			for _, v := range table.Values {
				if v > 11 {
					return common.NewError(common.KindFormatInvalid, "parseDHT", fmt.Sprintf("DC symbol %d out of range [0,11]", v), common.ErrInvalidDHT)
				}
			}
		}

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

func (d *Decoder) parseSOS(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return common.WithContext(err, "parseSOS", "reading segment")
	}
	if len(data) < 1 {
		return common.NewError(common.KindTruncated, "parseSOS", "payload empty", common.ErrInvalidSOS)
	}

	ns := int(data[0])
	if ns < 1 || ns > maxComponents {
		return common.NewError(common.KindFormatInvalid, "parseSOS", fmt.Sprintf("%d components in scan", ns), common.ErrInvalidSOS)
	}
	if len(data) < 1+ns*2+3 {
		return common.NewError(common.KindTruncated, "parseSOS", "component records truncated", common.ErrInvalidSOS)
	}

	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		tdTa := data[1+i*2+1]
		td := int(tdTa >> 4)
		ta := int(tdTa & 0x0F)

		var comp *Component
		for _, c := range d.components {
			if c.ID == cs {
				comp = c
				break
			}
		}
		if comp == nil {
			return common.NewError(common.KindFormatInvalid, "parseSOS", fmt.Sprintf("scan references unknown component id %d", cs), common.ErrInvalidSOS)
		}
		comp.dcTableSelector = td
		comp.acTableSelector = ta
	}

	ss, se := data[1+ns*2], data[2+ns*2]
	if ss != 0 || se != 63 {
		return common.NewError(common.KindUnsupported, "parseSOS", fmt.Sprintf("Ss=%d Se=%d (baseline requires 0,63)", ss, se), common.ErrUnsupportedFormat)
	}
	if ahAl := data[3+ns*2]; ahAl != 0 {
		return common.NewError(common.KindUnsupported, "parseSOS", fmt.Sprintf("Ah=%d Al=%d (baseline requires 0,0)", ahAl>>4, ahAl&0x0F), common.ErrUnsupportedFormat)
	}

	return nil
}

func (d *Decoder) decodeScan(reader *common.Reader) error {
	scanData, err := common.ReadEntropyData(reader)
	if err != nil {
		return common.WithContext(err, "decodeScan", "reading entropy data")
	}

	scanReader := bytes.NewReader(scanData)
	huffDec := common.NewHuffmanDecoder(scanReader)

	mcuCols := common.DivCeil(d.width, d.mcuWidth)
	mcuRows := common.DivCeil(d.height, d.mcuHeight)

	mcusSinceRestart := 0
	for mcuY := 0; mcuY < mcuRows; mcuY++ {
		for mcuX := 0; mcuX < mcuCols; mcuX++ {
			for _, comp := range d.components {
				for v := 0; v < comp.V; v++ {
					for h := 0; h < comp.H; h++ {
						if err := d.decodeBlock(huffDec, comp, mcuX*comp.H+h, mcuY*comp.V+v); err != nil {
							return common.WithContext(err, "decodeScan", fmt.Sprintf("MCU (%d,%d)", mcuX, mcuY))
						}
					}
				}
			}

			mcusSinceRestart++
			if d.restartInt > 0 && mcusSinceRestart == d.restartInt {
				mcusSinceRestart = 0
				for _, comp := range d.components {
					comp.dcPred = 0
				}
				// Restart markers themselves were already stripped out of
				// scanData by common.ReadEntropyData. A fresh decoder on the
				// same reader drops the padding bits left in the current
				// byte, realigning to the byte boundary the interval ends on.
				huffDec = common.NewHuffmanDecoder(scanReader)
			}
		}
	}

	return nil
}

func (d *Decoder) decodeBlock(huffDec *common.HuffmanDecoder, comp *Component, blockX, blockY int) error {
	var coef [64]int32

	dcTable := d.dcTables[comp.dcTableSelector]
	if dcTable == nil {
		return common.NewError(common.KindFormatInvalid, "decodeBlock", "no DC table installed for selector", common.ErrInvalidDHT)
	}
	s, err := huffDec.Decode(dcTable)
	if err != nil {
		return common.WithContext(err, "decodeBlock", "DC symbol")
	}
	diff, err := huffDec.ReceiveExtend(int(s))
	if err != nil {
		return common.WithContext(err, "decodeBlock", "DC magnitude")
	}
	comp.dcPred += diff
	coef[0] = int32(comp.dcPred)

	acTable := d.acTables[comp.acTableSelector]
	if acTable == nil {
		return common.NewError(common.KindFormatInvalid, "decodeBlock", "no AC table installed for selector", common.ErrInvalidDHT)
	}
	k := 1
	for k < 64 {
		rs, err := huffDec.Decode(acTable)
		if err != nil {
			return common.WithContext(err, "decodeBlock", "AC symbol")
		}
		r := int(rs >> 4)
		s := int(rs & 0x0F)
		if s == 0 {
			if r == 15 {
				k += 16
			} else {
				break // EOB
			}
		} else {
			k += r
			if k >= 64 {
				return common.NewError(common.KindFormatInvalid, "decodeBlock", "AC run exceeds block", common.ErrInvalidData)
			}
			val, err := huffDec.ReceiveExtend(s)
			if err != nil {
				return common.WithContext(err, "decodeBlock", "AC magnitude")
			}
			coef[common.ZigZag[k]] = int32(val)
			k++
		}
	}

	if !d.haveQ[comp.Tq] {
		return common.NewError(common.KindFormatInvalid, "decodeBlock", "quant table not installed", common.ErrInvalidDQT)
	}
	qtable := &d.qtables[comp.Tq]
	for k := 0; k < 64; k++ {
		coef[common.ZigZag[k]] *= qtable[k]
	}

	blockOffset := (blockY*comp.width + blockX) * 64
	if blockOffset+63 >= len(comp.data) {
		return nil
	}
	d.transform.Inverse(coef[:], comp.data[blockOffset:], 8)

	return nil
}

// sample returns the decoded byte for component comp at image pixel
// (x,y), nearest-neighbor upsampling from its (possibly subsampled)
// block grid.
func (d *Decoder) sample(comp *Component, x, y, maxH, maxV int) byte {
	sx := (x * comp.H) / maxH
	sy := (y * comp.V) / maxV
	blockX, blockY := sx/8, sy/8
	inX, inY := sx%8, sy%8
	if blockX >= comp.width || blockY >= comp.height {
		return 0
	}
	off := (blockY*comp.width + blockX) * 64
	return comp.data[off+inY*8+inX]
}

func (d *Decoder) convertToRGBA() *raster.Buffer {
	buf := raster.New(d.width, d.height)
	n := len(d.components)
	maxH, maxV := d.components[0].H, d.components[0].V
	for _, c := range d.components {
		if c.H > maxH {
			maxH = c.H
		}
		if c.V > maxV {
			maxV = c.V
		}
	}

	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			switch n {
			case 1:
				v := d.sample(d.components[0], x, y, maxH, maxV)
				buf.Set(x, y, v, v, v, 255)
			case 2:
				g := d.sample(d.components[0], x, y, maxH, maxV)
				a := d.sample(d.components[1], x, y, maxH, maxV)
				buf.Set(x, y, g, g, g, a)
			case 3:
				yy := d.sample(d.components[0], x, y, maxH, maxV)
				cb := d.sample(d.components[1], x, y, maxH, maxV)
				cr := d.sample(d.components[2], x, y, maxH, maxV)
				r, g, b := d.color.YCbCrToRGB(yy, cb, cr)
				buf.Set(x, y, r, g, b, 255)
			default: // 4: direct component passthrough, no defined color model
				r := d.sample(d.components[0], x, y, maxH, maxV)
				g := d.sample(d.components[1], x, y, maxH, maxV)
				b := d.sample(d.components[2], x, y, maxH, maxV)
				a := d.sample(d.components[3], x, y, maxH, maxV)
				buf.Set(x, y, r, g, b, a)
			}
		}
	}

	return buf
}
