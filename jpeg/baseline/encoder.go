package baseline

import (
	"fmt"

	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/raster"
)

// ColorMode selects how an input RGBA buffer is split into JPEG
// components for encoding.
type ColorMode int

const (
	ColorGray ColorMode = iota // single luminance component
	ColorYCbCr420              // Y (2x2), Cb, Cr (1x1 each) — standard 4:2:0
	ColorYCbCr444              // Y, Cb, Cr, all 1x1 — no chroma subsampling
)

// EncodeOptions configures a baseline encode (spec §9's typed
// configuration record for quantization, applied here to the encoder
// entry point).
type EncodeOptions struct {
	Quality        int // 1..100
	QualityMode    common.QualityMode
	RoundingMode   common.RoundingMode
	Precision      common.Precision
	Color          ColorMode
	RestartInterval int
	Transformer    common.Transformer
	ColorConverter common.ColorConverter
}

func (o EncodeOptions) resolve() EncodeOptions {
	if o.Quality == 0 {
		o.Quality = 75
	}
	if o.Transformer == nil {
		o.Transformer = common.DefaultTransformer
	}
	if o.ColorConverter == nil {
		o.ColorConverter = common.DefaultColorConverter
	}
	return o
}

type encComponent struct {
	id       byte
	h, v     int
	tq       int
	dcSel    int
	acSel    int
	width    int // blocks
	height   int // blocks
	data     []byte
	dcPred   int
}

// Encoder holds the state for one baseline encode.
type Encoder struct {
	width, height int
	components    []*encComponent
	qtables       [4][64]int32
	dcTables      [4]*common.HuffmanTable
	acTables      [4]*common.HuffmanTable
	mcuWidth      int
	mcuHeight     int
	opts          EncodeOptions
}

// Encode produces a complete baseline JPEG bitstream (SOI..EOI) for src.
func Encode(src *raster.Buffer, opts EncodeOptions) ([]byte, error) {
	if err := src.Validate(); err != nil {
		return nil, common.NewError(common.KindInputInvalid, "baseline.Encode", err.Error(), common.ErrInvalidDimensions)
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, common.NewError(common.KindInputInvalid, "baseline.Encode", "quality out of range [1,100]", common.ErrInvalidQuality)
	}
	opts = opts.resolve()

	e := &Encoder{width: src.Width, height: src.Height, opts: opts}
	if err := e.setupComponents(); err != nil {
		return nil, err
	}
	if err := e.setupTables(); err != nil {
		return nil, err
	}
	e.loadSamples(src)

	w := common.NewWriter()
	if err := w.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if err := e.writeDQT(w); err != nil {
		return nil, err
	}
	if err := e.writeSOF0(w); err != nil {
		return nil, err
	}
	if err := e.writeDHT(w); err != nil {
		return nil, err
	}
	if e.opts.RestartInterval > 0 {
		if err := e.writeDRI(w); err != nil {
			return nil, err
		}
	}
	if err := e.writeSOS(w); err != nil {
		return nil, err
	}
	if err := e.encodeScan(w); err != nil {
		return nil, err
	}
	if err := w.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

func (e *Encoder) setupComponents() error {
	switch e.opts.Color {
	case ColorGray:
		e.components = []*encComponent{{id: 1, h: 1, v: 1, tq: 0}}
	case ColorYCbCr420:
		e.components = []*encComponent{
			{id: 1, h: 2, v: 2, tq: 0},
			{id: 2, h: 1, v: 1, tq: 1},
			{id: 3, h: 1, v: 1, tq: 1},
		}
	case ColorYCbCr444:
		e.components = []*encComponent{
			{id: 1, h: 1, v: 1, tq: 0},
			{id: 2, h: 1, v: 1, tq: 1},
			{id: 3, h: 1, v: 1, tq: 1},
		}
	default:
		return common.NewError(common.KindInputInvalid, "setupComponents", "unknown color mode", common.ErrInvalidComponents)
	}
	for i := range e.components {
		e.components[i].dcSel = 0
		e.components[i].acSel = 0
	}

	maxH, maxV := 1, 1
	for _, c := range e.components {
		if c.h > maxH {
			maxH = c.h
		}
		if c.v > maxV {
			maxV = c.v
		}
	}
	e.mcuWidth = maxH * 8
	e.mcuHeight = maxV * 8
	for _, c := range e.components {
		c.width = common.DivCeil(e.width*c.h, maxH*8)
		c.height = common.DivCeil(e.height*c.v, maxV*8)
		c.data = make([]byte, c.width*c.height*64)
	}
	return nil
}

func (e *Encoder) setupTables() error {
	lum, err := common.ScaleQuantTable(common.DefaultLuminanceQuantTable, e.opts.Quality, e.opts.QualityMode, e.opts.Precision)
	if err != nil {
		return common.WithContext(err, "setupTables", "luminance")
	}
	e.qtables[0] = lum

	if e.opts.Color != ColorGray {
		chrom, err := common.ScaleQuantTable(common.DefaultChrominanceQuantTable, e.opts.Quality, e.opts.QualityMode, e.opts.Precision)
		if err != nil {
			return common.WithContext(err, "setupTables", "chrominance")
		}
		e.qtables[1] = chrom
	}

	e.dcTables[0] = common.BuildStandardHuffmanTable(common.StandardDCLuminanceBits, common.StandardDCLuminanceValues)
	e.acTables[0] = common.BuildStandardHuffmanTable(common.StandardACLuminanceBits, common.StandardACLuminanceValues)
	if e.opts.Color != ColorGray {
		e.dcTables[1] = common.BuildStandardHuffmanTable(common.StandardDCChrominanceBits, common.StandardDCChrominanceValues)
		e.acTables[1] = common.BuildStandardHuffmanTable(common.StandardACChrominanceBits, common.StandardACChrominanceValues)
		for _, c := range e.components[1:] {
			c.dcSel = 1
			c.acSel = 1
		}
	}
	return nil
}

// loadSamples fills each component's block grid by subsampling src.
func (e *Encoder) loadSamples(src *raster.Buffer) {
	maxH, maxV := 1, 1
	for _, c := range e.components {
		if c.h > maxH {
			maxH = c.h
		}
		if c.v > maxV {
			maxV = c.v
		}
	}

	for _, c := range e.components {
		sampleW := common.DivCeil(e.width*c.h, maxH)
		sampleH := common.DivCeil(e.height*c.v, maxV)
		for by := 0; by < c.height; by++ {
			for bx := 0; bx < c.width; bx++ {
				off := (by*c.width + bx) * 64
				for iy := 0; iy < 8; iy++ {
					for ix := 0; ix < 8; ix++ {
						sx := bx*8 + ix
						sy := by*8 + iy
						if sx >= sampleW {
							sx = sampleW - 1
						}
						if sy >= sampleH {
							sy = sampleH - 1
						}
						// map this component's subsampled coordinate back
						// to the full-resolution source image
						srcX := sx * maxH / c.h
						srcY := sy * maxV / c.v
						if srcX >= e.width {
							srcX = e.width - 1
						}
						if srcY >= e.height {
							srcY = e.height - 1
						}
						r, g, b, _ := src.At(srcX, srcY)
						c.data[off+iy*8+ix] = e.sampleComponent(c, r, g, b)
					}
				}
			}
		}
	}
}

func (e *Encoder) sampleComponent(c *encComponent, r, g, b byte) byte {
	if e.opts.Color == ColorGray {
		y, _, _ := e.opts.ColorConverter.RGBToYCbCr(r, g, b)
		return y
	}
	y, cb, cr := e.opts.ColorConverter.RGBToYCbCr(r, g, b)
	switch c.id {
	case 1:
		return y
	case 2:
		return cb
	default:
		return cr
	}
}

func (e *Encoder) writeDQT(w *common.Writer) error {
	tables := map[int][64]int32{0: e.qtables[0]}
	if e.opts.Color != ColorGray {
		tables[1] = e.qtables[1]
	}
	sixteenBit := e.opts.Precision == common.Precision16Bit
	for id := 0; id <= 1; id++ {
		t, ok := tables[id]
		if !ok {
			continue
		}
		if sixteenBit {
			data := make([]byte, 1+128)
			data[0] = byte(1<<4 | id)
			for i := 0; i < 64; i++ {
				data[1+i*2] = byte(t[i] >> 8)
				data[1+i*2+1] = byte(t[i])
			}
			if err := w.WriteSegment(common.MarkerDQT, data); err != nil {
				return err
			}
			continue
		}
		data := make([]byte, 1+64)
		data[0] = byte(id) // precision nibble 0 (8-bit) << 4 | id
		for i := 0; i < 64; i++ {
			data[1+i] = byte(t[i])
		}
		if err := w.WriteSegment(common.MarkerDQT, data); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeSOF0(w *common.Writer) error {
	data := make([]byte, 6+len(e.components)*3)
	data[0] = 8
	data[1] = byte(e.height >> 8)
	data[2] = byte(e.height)
	data[3] = byte(e.width >> 8)
	data[4] = byte(e.width)
	data[5] = byte(len(e.components))
	for i, c := range e.components {
		off := 6 + i*3
		data[off] = c.id
		data[off+1] = byte(c.h<<4 | c.v)
		data[off+2] = byte(c.tq)
	}
	return w.WriteSegment(common.MarkerSOF0, data)
}

func (e *Encoder) writeDHT(w *common.Writer) error {
	if err := common.WriteHuffmanTable(w, 0, 0, e.dcTables[0]); err != nil {
		return err
	}
	if err := common.WriteHuffmanTable(w, 1, 0, e.acTables[0]); err != nil {
		return err
	}
	if e.opts.Color != ColorGray {
		if err := common.WriteHuffmanTable(w, 0, 1, e.dcTables[1]); err != nil {
			return err
		}
		if err := common.WriteHuffmanTable(w, 1, 1, e.acTables[1]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeDRI(w *common.Writer) error {
	data := []byte{byte(e.opts.RestartInterval >> 8), byte(e.opts.RestartInterval)}
	return w.WriteSegment(common.MarkerDRI, data)
}

func (e *Encoder) writeSOS(w *common.Writer) error {
	data := make([]byte, 1+len(e.components)*2+3)
	data[0] = byte(len(e.components))
	for i, c := range e.components {
		off := 1 + i*2
		data[off] = c.id
		data[off+1] = byte(c.dcSel<<4 | c.acSel)
	}
	n := len(e.components)
	data[1+n*2] = 0  // Ss
	data[2+n*2] = 63 // Se
	data[3+n*2] = 0  // Ah/Al
	return w.WriteSegment(common.MarkerSOS, data)
}

func (e *Encoder) encodeScan(w *common.Writer) error {
	var bitBuf []byte
	bw := &byteSliceWriter{buf: &bitBuf}
	huffEnc := common.NewHuffmanEncoder(bw)

	mcuCols := common.DivCeil(e.width, e.mcuWidth)
	mcuRows := common.DivCeil(e.height, e.mcuHeight)

	mcusSinceRestart := 0
	for mcuY := 0; mcuY < mcuRows; mcuY++ {
		for mcuX := 0; mcuX < mcuCols; mcuX++ {
			for _, c := range e.components {
				for v := 0; v < c.v; v++ {
					for h := 0; h < c.h; h++ {
						if err := e.encodeBlock(huffEnc, c, mcuX*c.h+h, mcuY*c.v+v); err != nil {
							return common.WithContext(err, "encodeScan", fmt.Sprintf("MCU (%d,%d)", mcuX, mcuY))
						}
					}
				}
			}
			mcusSinceRestart++
			if e.opts.RestartInterval > 0 && mcusSinceRestart == e.opts.RestartInterval &&
				!(mcuY == mcuRows-1 && mcuX == mcuCols-1) {
				mcusSinceRestart = 0
				if err := huffEnc.Flush(); err != nil {
					return err
				}
				for _, c := range e.components {
					c.dcPred = 0
				}
			}
		}
	}
	if err := huffEnc.Flush(); err != nil {
		return err
	}

	w.WriteBytes(bitBuf)
	return nil
}

func (e *Encoder) encodeBlock(huffEnc *common.HuffmanEncoder, c *encComponent, blockX, blockY int) error {
	off := (blockY*c.width + blockX) * 64
	if off+63 >= len(c.data) {
		return nil
	}

	var coef [64]int32
	e.opts.Transformer.Forward(c.data[off:], 8, coef[:])

	var zz [64]int32
	for i := 0; i < 64; i++ {
		zz[common.NaturalToZigZag[i]] = coef[i]
	}

	qtable := &e.qtables[c.tq]
	if err := common.QuantizeBlock(&zz, qtable, e.opts.RoundingMode); err != nil {
		return err
	}

	diff := int(zz[0]) - c.dcPred
	c.dcPred = int(zz[0])
	ssss, bits, nbits := common.EncodeSigned(diff)
	if err := huffEnc.WriteSymbol(e.dcTables[c.dcSel], byte(ssss)); err != nil {
		return common.WithContext(err, "encodeBlock", "DC symbol")
	}
	if err := huffEnc.WriteBits(bits, nbits); err != nil {
		return err
	}

	acTable := e.acTables[c.acSel]
	run := 0
	for k := 1; k < 64; k++ {
		v := int(zz[k])
		if v == 0 {
			run++
			continue
		}
		for run >= 16 {
			if err := huffEnc.WriteSymbol(acTable, 0xF0); err != nil {
				return err
			}
			run -= 16
		}
		s, b, nb := common.EncodeSigned(v)
		rs := byte(run<<4 | s)
		if err := huffEnc.WriteSymbol(acTable, rs); err != nil {
			return common.WithContext(err, "encodeBlock", "AC symbol")
		}
		if err := huffEnc.WriteBits(b, nb); err != nil {
			return err
		}
		run = 0
	}
	if run > 0 {
		if err := huffEnc.WriteSymbol(acTable, 0x00); err != nil {
			return err
		}
	}

	return nil
}

// byteSliceWriter adapts a *[]byte to io.ByteWriter for HuffmanEncoder.
type byteSliceWriter struct {
	buf *[]byte
}

func (w *byteSliceWriter) WriteByte(b byte) error {
	*w.buf = append(*w.buf, b)
	return nil
}
