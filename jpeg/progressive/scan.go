package progressive

import (
	"bytes"
	"fmt"

	"github.com/lucidpix/mediacodec/jpeg/common"
)

type scanComponent struct {
	index int // index into Decoder.components
	td    int
	ta    int
}

// parseAndDecodeScan reads one SOS header and its entropy-coded data,
// classifies it with the Coordinator, and dispatches to the appropriate
// DC/AC first/refine decode loop.
func (d *Decoder) parseAndDecodeScan(reader *common.Reader) error {
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

	scanComps := make([]scanComponent, ns)
	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		tdTa := data[1+i*2+1]

		idx := -1
		for ci, c := range d.components {
			if c.ID == cs {
				idx = ci
				break
			}
		}
		if idx < 0 {
			return common.NewError(common.KindFormatInvalid, "parseSOS", fmt.Sprintf("scan references unknown component id %d", cs), common.ErrInvalidSOS)
		}
		for j := 0; j < i; j++ {
			if scanComps[j].index == idx {
				return common.NewError(common.KindFormatInvalid, "parseSOS", "repeated component selector in scan", common.ErrInvalidSOS)
			}
		}
		scanComps[i] = scanComponent{index: idx, td: int(tdTa >> 4), ta: int(tdTa & 0x0F)}
	}

	ss := int(data[1+ns*2])
	se := int(data[2+ns*2])
	ah := int(data[3+ns*2] >> 4)
	al := int(data[3+ns*2] & 0x0F)

	indices := make([]int, ns)
	for i, sc := range scanComps {
		indices[i] = sc.index
	}
	class, err := ClassifyScan(ss, se, ah, al)
	if err != nil {
		return common.NewError(common.KindFormatInvalid, "parseSOS", err.Error(), common.ErrInvalidSOS)
	}
	if (class == ScanACFirst || class == ScanACRefine) && ns != 1 {
		return common.NewError(common.KindFormatInvalid, "parseSOS", "AC scan covers more than one component", common.ErrInvalidSOS)
	}
	if err := d.coord.Accept(indices, ss, se, ah, al); err != nil {
		return common.NewError(common.KindFormatInvalid, "parseSOS", err.Error(), common.ErrInvalidSOS)
	}

	entropy, err := common.ReadEntropyData(reader)
	if err != nil {
		return common.WithContext(err, "parseAndDecodeScan", "reading entropy data")
	}
	huffDec := common.NewHuffmanDecoder(bytes.NewReader(entropy))
	d.eobRun = 0
	for _, sc := range scanComps {
		d.components[sc.index].dcPred = 0
	}

	if ns != 1 {
		return d.decodeInterleavedScan(huffDec, scanComps, class, ss, se, uint32(al))
	}
	return d.decodeNonInterleavedScan(huffDec, scanComps[0], class, ss, se, uint32(al))
}

// decodeInterleavedScan traverses MCUs in raster order, visiting every
// scan component's H*V blocks per MCU (only valid for DC scans: AC
// scans are restricted to a single component by parseAndDecodeScan).
func (d *Decoder) decodeInterleavedScan(huffDec *common.HuffmanDecoder, scanComps []scanComponent, class ScanClass, ss, se int, al uint32) error {
	unitsSinceRestart := 0
	for my := 0; my < d.mcuRows; my++ {
		for mx := 0; mx < d.mcuCols; mx++ {
			for _, sc := range scanComps {
				comp := d.components[sc.index]
				for j := 0; j < comp.H*comp.V; j++ {
					bx := comp.H*mx + j%comp.H
					by := comp.V*my + j/comp.H
					if err := d.decodeOneBlock(huffDec, comp, sc, class, ss, se, al, bx, by); err != nil {
						return common.WithContext(err, "decodeInterleavedScan", fmt.Sprintf("MCU (%d,%d)", mx, my))
					}
				}
			}

			unitsSinceRestart++
			if d.restartInt > 0 && unitsSinceRestart == d.restartInt {
				unitsSinceRestart = 0
				for _, sc := range scanComps {
					d.components[sc.index].dcPred = 0
				}
				d.eobRun = 0
			}
		}
	}
	return nil
}

// decodeNonInterleavedScan traverses a single component's own block
// grid left to right, top to bottom, bounded by its actual (unpadded)
// sample dimensions rather than the MCU grid (ITU-T T.81 section B.2.3).
func (d *Decoder) decodeNonInterleavedScan(huffDec *common.HuffmanDecoder, sc scanComponent, class ScanClass, ss, se int, al uint32) error {
	comp := d.components[sc.index]
	unitsSinceRestart := 0
	for by := 0; by < comp.compBlocksH; by++ {
		for bx := 0; bx < comp.compBlocksW; bx++ {
			if err := d.decodeOneBlock(huffDec, comp, sc, class, ss, se, al, bx, by); err != nil {
				return common.WithContext(err, "decodeNonInterleavedScan", fmt.Sprintf("block (%d,%d)", bx, by))
			}

			unitsSinceRestart++
			if d.restartInt > 0 && unitsSinceRestart == d.restartInt {
				unitsSinceRestart = 0
				comp.dcPred = 0
				d.eobRun = 0
			}
		}
	}
	return nil
}

func (d *Decoder) decodeOneBlock(huffDec *common.HuffmanDecoder, comp *Component, sc scanComponent, class ScanClass, ss, se int, al uint32, bx, by int) error {
	idx := by*comp.blocksW + bx
	if idx < 0 || idx >= len(comp.coef) {
		return common.NewError(common.KindInternal, "decodeOneBlock", "block index out of range", common.ErrInvalidData)
	}
	b := &comp.coef[idx]

	switch class {
	case ScanDCFirst:
		dcTable := d.dcTables[sc.td]
		if dcTable == nil {
			return common.NewError(common.KindFormatInvalid, "decodeOneBlock", "no DC table installed for selector", common.ErrInvalidDHT)
		}
		s, err := huffDec.Decode(dcTable)
		if err != nil {
			return common.WithContext(err, "decodeOneBlock", "DC symbol")
		}
		diff, err := huffDec.ReceiveExtend(int(s))
		if err != nil {
			return common.WithContext(err, "decodeOneBlock", "DC magnitude")
		}
		comp.dcPred += diff
		b[0] = int32(comp.dcPred) << al

	case ScanDCRefine:
		bit, err := huffDec.ReadBit()
		if err != nil {
			return common.WithContext(err, "decodeOneBlock", "DC refinement bit")
		}
		if bit {
			b[0] |= int32(1) << al
		}

	case ScanACFirst:
		acTable := d.acTables[sc.ta]
		if acTable == nil {
			return common.NewError(common.KindFormatInvalid, "decodeOneBlock", "no AC table installed for selector", common.ErrInvalidDHT)
		}
		return d.decodeACFirst(huffDec, acTable, b, ss, se, al)

	case ScanACRefine:
		acTable := d.acTables[sc.ta]
		if acTable == nil {
			return common.NewError(common.KindFormatInvalid, "decodeOneBlock", "no AC table installed for selector", common.ErrInvalidDHT)
		}
		return d.decodeACRefine(huffDec, acTable, b, ss, se, al)
	}
	return nil
}

// decodeACFirst decodes one AC spectral-selection-first band (ITU-T
// T.81 section G.1.2.2), honoring a carried-over EOBRUN that spans
// multiple blocks.
func (d *Decoder) decodeACFirst(huffDec *common.HuffmanDecoder, acTable *common.HuffmanTable, b *[64]int32, ss, se int, al uint32) error {
	if d.eobRun > 0 {
		d.eobRun--
		return nil
	}

	zig := ss
	for zig <= se {
		rs, err := huffDec.Decode(acTable)
		if err != nil {
			return common.WithContext(err, "decodeACFirst", "AC symbol")
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)

		if size == 0 {
			if run != 0x0F {
				d.eobRun = (1 << uint(run)) - 1
				if run != 0 {
					extra, err := huffDec.ReadBits(run)
					if err != nil {
						return common.WithContext(err, "decodeACFirst", "EOBRUN extension bits")
					}
					d.eobRun += int(extra)
				}
				return nil
			}
			zig += 16
			continue
		}

		zig += run
		if zig > se {
			return common.NewError(common.KindFormatInvalid, "decodeACFirst", "AC run exceeds spectral band", common.ErrInvalidData)
		}
		val, err := huffDec.ReceiveExtend(size)
		if err != nil {
			return common.WithContext(err, "decodeACFirst", "AC magnitude")
		}
		b[common.ZigZag[zig]] = int32(val) << al
		zig++
	}
	return nil
}

// decodeACRefine decodes one AC successive-approximation refinement
// band (ITU-T T.81 section G.1.2.3): every coefficient already non-zero
// in b may gain one more bit of precision, and new coefficients may be
// introduced at run/EOB boundaries.
func (d *Decoder) decodeACRefine(huffDec *common.HuffmanDecoder, acTable *common.HuffmanTable, b *[64]int32, ss, se int, al uint32) error {
	delta := int32(1) << al
	zig := ss

	if d.eobRun == 0 {
		for zig <= se {
			rs, err := huffDec.Decode(acTable)
			if err != nil {
				return common.WithContext(err, "decodeACRefine", "AC symbol")
			}
			run := int(rs >> 4)
			size := int(rs & 0x0F)

			newVal := int32(0)
			switch size {
			case 0:
				if run != 0x0F {
					d.eobRun = 1 << uint(run)
					if run != 0 {
						extra, err := huffDec.ReadBits(run)
						if err != nil {
							return common.WithContext(err, "decodeACRefine", "EOBRUN extension bits")
						}
						d.eobRun += int(extra)
					}
					goto eob
				}
			case 1:
				bit, err := huffDec.ReadBit()
				if err != nil {
					return common.WithContext(err, "decodeACRefine", "new coefficient sign bit")
				}
				newVal = delta
				if !bit {
					newVal = -delta
				}
			default:
				return common.NewError(common.KindFormatInvalid, "decodeACRefine", "unexpected AC refinement symbol", common.ErrHuffmanDecode)
			}

			zig, err = d.refineNonZeroes(huffDec, b, zig, se, run, delta)
			if err != nil {
				return err
			}
			if zig > se {
				return common.NewError(common.KindFormatInvalid, "decodeACRefine", "too many coefficients in refinement band", common.ErrInvalidData)
			}
			if newVal != 0 {
				b[common.ZigZag[zig]] = newVal
			}
			zig++
		}
	}
eob:
	if d.eobRun > 0 {
		d.eobRun--
		if _, err := d.refineNonZeroes(huffDec, b, zig, se, -1, delta); err != nil {
			return err
		}
	}
	return nil
}

// refineNonZeroes walks zig..se refining every already-nonzero
// coefficient with one more bit; when skipCount >= 0, it additionally
// skips over that many zero coefficients before returning (the "new
// coefficient slot" the caller is about to fill), mirroring the run
// count attached to the just-decoded symbol.
func (d *Decoder) refineNonZeroes(huffDec *common.HuffmanDecoder, b *[64]int32, zig, se, skipCount int, delta int32) (int, error) {
	for ; zig <= se; zig++ {
		u := common.ZigZag[zig]
		if b[u] == 0 {
			if skipCount == 0 {
				break
			}
			if skipCount > 0 {
				skipCount--
			}
			continue
		}
		bit, err := huffDec.ReadBit()
		if err != nil {
			return 0, common.WithContext(err, "refineNonZeroes", "refinement bit")
		}
		if !bit {
			continue
		}
		if b[u] >= 0 {
			b[u] += delta
		} else {
			b[u] -= delta
		}
	}
	return zig, nil
}
