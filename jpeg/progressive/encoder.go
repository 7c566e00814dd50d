package progressive

import (
	"fmt"

	"github.com/lucidpix/mediacodec/jpeg/common"
	"github.com/lucidpix/mediacodec/raster"
)

// ColorMode selects how an input RGBA buffer is split into JPEG
// components for encoding, mirroring the baseline package's modes.
type ColorMode int

const (
	ColorGray ColorMode = iota
	ColorYCbCr420
	ColorYCbCr444
)

// EncodeOptions configures a progressive encode. The encoder always
// emits the minimal legal progressive sequence: one interleaved DC
// scan (Ah=Al=0) followed by one non-interleaved full-spectrum AC scan
// per component (Ss=1,Se=63,Ah=Al=0) — spectral-band splitting and
// successive-approximation refinement are things this encoder's
// decoder counterpart can read (see scan.go), but are not things this
// encoder chooses to produce; see DESIGN.md.
type EncodeOptions struct {
	Quality         int
	QualityMode     common.QualityMode
	RoundingMode    common.RoundingMode
	Precision       common.Precision
	Color           ColorMode
	RestartInterval int
	Transformer     common.Transformer
	ColorConverter  common.ColorConverter
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
	h, v, tq int
	blocksW, blocksH int // MCU-padded grid, matches decoder's Component.blocksW/H
	compBlocksW, compBlocksH int
	dcSel, acSel int
	samples  []byte      // one component plane, blocksW*8 x blocksH*8
	coef     [][64]int32 // zig-zag order, one per block in the padded grid
	dcPred   int
}

// Encoder holds the state for one progressive encode.
type Encoder struct {
	width, height int
	components    []*encComponent
	qtables       [4][64]int32
	dcTables      [4]*common.HuffmanTable
	acTables      [4]*common.HuffmanTable
	maxH, maxV    int
	mcuCols       int
	mcuRows       int
	opts          EncodeOptions
}

// Encode produces a complete progressive JPEG bitstream (SOI..EOI) for src.
func Encode(src *raster.Buffer, opts EncodeOptions) ([]byte, error) {
	if err := src.Validate(); err != nil {
		return nil, common.NewError(common.KindInputInvalid, "progressive.Encode", err.Error(), common.ErrInvalidDimensions)
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, common.NewError(common.KindInputInvalid, "progressive.Encode", "quality out of range [1,100]", common.ErrInvalidQuality)
	}
	opts = opts.resolve()

	e := &Encoder{width: src.Width, height: src.Height, opts: opts}
	e.setupComponents()
	if err := e.setupTables(); err != nil {
		return nil, err
	}
	e.loadSamples(src)
	e.transformAndQuantize()

	w := common.NewWriter()
	if err := w.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if err := e.writeDQT(w); err != nil {
		return nil, err
	}
	if err := e.writeSOF2(w); err != nil {
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

	if err := e.encodeDCScan(w); err != nil {
		return nil, err
	}
	for i := range e.components {
		if err := e.encodeACScan(w, i); err != nil {
			return nil, err
		}
	}

	if err := w.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (e *Encoder) setupComponents() {
	switch e.opts.Color {
	case ColorGray:
		e.components = []*encComponent{{id: 1, h: 1, v: 1, tq: 0}}
	case ColorYCbCr420:
		e.components = []*encComponent{
			{id: 1, h: 2, v: 2, tq: 0},
			{id: 2, h: 1, v: 1, tq: 1},
			{id: 3, h: 1, v: 1, tq: 1},
		}
	default: // ColorYCbCr444
		e.components = []*encComponent{
			{id: 1, h: 1, v: 1, tq: 0},
			{id: 2, h: 1, v: 1, tq: 1},
			{id: 3, h: 1, v: 1, tq: 1},
		}
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
	e.maxH, e.maxV = maxH, maxV
	e.mcuCols = common.DivCeil(e.width, maxH*8)
	e.mcuRows = common.DivCeil(e.height, maxV*8)

	for _, c := range e.components {
		c.blocksW = e.mcuCols * c.h
		c.blocksH = e.mcuRows * c.v
		c.compBlocksW = common.DivCeil(e.width*c.h, maxH*8)
		c.compBlocksH = common.DivCeil(e.height*c.v, maxV*8)
		c.samples = make([]byte, c.blocksW*8*c.blocksH*8)
		c.coef = make([][64]int32, c.blocksW*c.blocksH)
	}
}

func (e *Encoder) setupTables() error {
	lum, err := common.ScaleQuantTable(common.DefaultLuminanceQuantTable, e.opts.Quality, e.opts.QualityMode, e.opts.Precision)
	if err != nil {
		return common.WithContext(err, "setupTables", "luminance")
	}
	e.qtables[0] = lum
	e.dcTables[0] = common.BuildStandardHuffmanTable(common.StandardDCLuminanceBits, common.StandardDCLuminanceValues)
	e.acTables[0] = common.BuildStandardHuffmanTable(common.StandardACLuminanceBits, common.StandardACLuminanceValues)

	if e.opts.Color != ColorGray {
		chrom, err := common.ScaleQuantTable(common.DefaultChrominanceQuantTable, e.opts.Quality, e.opts.QualityMode, e.opts.Precision)
		if err != nil {
			return common.WithContext(err, "setupTables", "chrominance")
		}
		e.qtables[1] = chrom
		e.dcTables[1] = common.BuildStandardHuffmanTable(common.StandardDCChrominanceBits, common.StandardDCChrominanceValues)
		e.acTables[1] = common.BuildStandardHuffmanTable(common.StandardACChrominanceBits, common.StandardACChrominanceValues)
		for _, c := range e.components[1:] {
			c.dcSel, c.acSel = 1, 1
		}
	}
	return nil
}

func (e *Encoder) loadSamples(src *raster.Buffer) {
	for _, c := range e.components {
		sampleW := common.DivCeil(e.width*c.h, e.maxH)
		sampleH := common.DivCeil(e.height*c.v, e.maxV)
		stride := c.blocksW * 8
		for y := 0; y < c.blocksH*8; y++ {
			sy := y
			if sy >= sampleH {
				sy = sampleH - 1
			}
			srcY := sy * e.maxV / c.v
			if srcY >= e.height {
				srcY = e.height - 1
			}
			for x := 0; x < c.blocksW*8; x++ {
				sx := x
				if sx >= sampleW {
					sx = sampleW - 1
				}
				srcX := sx * e.maxH / c.h
				if srcX >= e.width {
					srcX = e.width - 1
				}
				r, g, b, _ := src.At(srcX, srcY)
				c.samples[y*stride+x] = e.sampleComponent(c, r, g, b)
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

// transformAndQuantize runs the forward DCT and quantization over every
// block of every component once, ahead of any scan, since both the DC
// and AC scans read from the same quantized coefficients.
func (e *Encoder) transformAndQuantize() {
	for _, c := range e.components {
		stride := c.blocksW * 8
		qtable := &e.qtables[c.tq]
		for by := 0; by < c.blocksH; by++ {
			for bx := 0; bx < c.blocksW; bx++ {
				off := (by*8)*stride + bx*8
				var natural [64]int32
				e.opts.Transformer.Forward(c.samples[off:], stride, natural[:])

				var zz [64]int32
				for i := 0; i < 64; i++ {
					zz[common.NaturalToZigZag[i]] = natural[i]
				}
				common.QuantizeBlock(&zz, qtable, e.opts.RoundingMode)
				c.coef[by*c.blocksW+bx] = zz
			}
		}
	}
}

func (e *Encoder) writeDQT(w *common.Writer) error {
	sixteenBit := e.opts.Precision == common.Precision16Bit
	ids := []int{0}
	if e.opts.Color != ColorGray {
		ids = append(ids, 1)
	}
	for _, id := range ids {
		t := e.qtables[id]
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
		data[0] = byte(id)
		for i := 0; i < 64; i++ {
			data[1+i] = byte(t[i])
		}
		if err := w.WriteSegment(common.MarkerDQT, data); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeSOF2(w *common.Writer) error {
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
	return w.WriteSegment(common.MarkerSOF2, data)
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

func (e *Encoder) encodeDCScan(w *common.Writer) error {
	data := make([]byte, 1+len(e.components)*2+3)
	data[0] = byte(len(e.components))
	for i, c := range e.components {
		off := 1 + i*2
		data[off] = c.id
		data[off+1] = byte(c.dcSel << 4)
	}
	data[1+len(e.components)*2] = 0 // Ss
	data[2+len(e.components)*2] = 0 // Se
	data[3+len(e.components)*2] = 0 // Ah/Al
	if err := w.WriteSegment(common.MarkerSOS, data); err != nil {
		return err
	}

	var bitBuf []byte
	huffEnc := common.NewHuffmanEncoder(&byteSliceWriter{buf: &bitBuf})

	unitsSinceRestart := 0
	for mcuY := 0; mcuY < e.mcuRows; mcuY++ {
		for mcuX := 0; mcuX < e.mcuCols; mcuX++ {
			for _, c := range e.components {
				for j := 0; j < c.h*c.v; j++ {
					bx := c.h*mcuX + j%c.h
					by := c.v*mcuY + j/c.h
					dc := int(c.coef[by*c.blocksW+bx][0])
					diff := dc - c.dcPred
					c.dcPred = dc
					ssss, bits, nbits := common.EncodeSigned(diff)
					if err := huffEnc.WriteSymbol(e.dcTables[c.dcSel], byte(ssss)); err != nil {
						return common.WithContext(err, "encodeDCScan", fmt.Sprintf("MCU (%d,%d)", mcuX, mcuY))
					}
					if err := huffEnc.WriteBits(bits, nbits); err != nil {
						return err
					}
				}
			}

			unitsSinceRestart++
			if e.opts.RestartInterval > 0 && unitsSinceRestart == e.opts.RestartInterval &&
				!(mcuY == e.mcuRows-1 && mcuX == e.mcuCols-1) {
				unitsSinceRestart = 0
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

func (e *Encoder) encodeACScan(w *common.Writer, compIndex int) error {
	c := e.components[compIndex]
	data := make([]byte, 1+2+3)
	data[0] = 1
	data[1] = c.id
	data[2] = byte(c.acSel)
	data[3] = 1  // Ss
	data[4] = 63 // Se
	data[5] = 0  // Ah/Al
	if err := w.WriteSegment(common.MarkerSOS, data); err != nil {
		return err
	}

	var bitBuf []byte
	huffEnc := common.NewHuffmanEncoder(&byteSliceWriter{buf: &bitBuf})
	acTable := e.acTables[c.acSel]

	unitsSinceRestart := 0
	for by := 0; by < c.compBlocksH; by++ {
		for bx := 0; bx < c.compBlocksW; bx++ {
			zz := c.coef[by*c.blocksW+bx]
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
				s, bits, nbits := common.EncodeSigned(v)
				if err := huffEnc.WriteSymbol(acTable, byte(run<<4|s)); err != nil {
					return common.WithContext(err, "encodeACScan", fmt.Sprintf("block (%d,%d)", bx, by))
				}
				if err := huffEnc.WriteBits(bits, nbits); err != nil {
					return err
				}
				run = 0
			}
			if run > 0 {
				if err := huffEnc.WriteSymbol(acTable, 0x00); err != nil {
					return err
				}
			}

			unitsSinceRestart++
			if e.opts.RestartInterval > 0 && unitsSinceRestart == e.opts.RestartInterval &&
				!(by == c.compBlocksH-1 && bx == c.compBlocksW-1) {
				unitsSinceRestart = 0
				if err := huffEnc.Flush(); err != nil {
					return err
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

// byteSliceWriter adapts a *[]byte to io.ByteWriter for HuffmanEncoder.
type byteSliceWriter struct {
	buf *[]byte
}

func (w *byteSliceWriter) WriteByte(b byte) error {
	*w.buf = append(*w.buf, b)
	return nil
}
