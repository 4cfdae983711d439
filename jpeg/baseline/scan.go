package baseline

import (
	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/jpeg/common"
)

type blockFunc func(br *common.BitReader, c *component, blk []int32) error

// decodeScan decodes one entropy-coded scan and leaves the marker reader
// positioned after the scan data.
func (d *decoderState) decodeScan(s *scanHeader) error {
	br := common.NewBitReader(d.data, d.r.Offset())
	d.eobrun = 0
	for _, c := range s.comps {
		c.pred = 0
	}

	var fn blockFunc
	switch {
	case !d.progressive:
		fn = d.sequentialBlock
	case s.ss == 0 && s.ah == 0:
		fn = func(br *common.BitReader, c *component, blk []int32) error {
			return d.dcFirst(br, c, blk, s.al)
		}
	case s.ss == 0:
		fn = func(br *common.BitReader, c *component, blk []int32) error {
			if br.ReadBit() != 0 {
				blk[0] |= 1 << uint(s.al)
			}
			return nil
		}
	case s.ah == 0:
		fn = func(br *common.BitReader, c *component, blk []int32) error {
			return d.acFirst(br, c, blk, s.ss, s.se, s.al)
		}
	default:
		fn = func(br *common.BitReader, c *component, blk []int32) error {
			return d.acRefine(br, c, blk, s.ss, s.se, s.al)
		}
	}

	var err error
	if len(s.comps) == 1 {
		err = d.scanSingle(br, s.comps[0], fn)
	} else {
		err = d.scanInterleaved(br, s.comps, fn)
	}
	if err != nil {
		return err
	}

	d.r.Seek(br.Offset())
	return nil
}

// scanSingle walks the blocks of one component in raster order. A
// non-interleaved MCU is a single block and only covers the component's
// own sample area.
func (d *decoderState) scanSingle(br *common.BitReader, c *component, fn blockFunc) error {
	bw := divCeil(c.width, 8)
	bh := divCeil(c.height, 8)
	total := bw * bh

	mcu := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			if err := fn(br, c, c.block(bx, by)); err != nil {
				return err
			}
			mcu++
			if err := d.restart(br, mcu, total, []*component{c}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *decoderState) scanInterleaved(br *common.BitReader, comps []*component, fn blockFunc) error {
	total := d.mcusX * d.mcusY

	mcu := 0
	for my := 0; my < d.mcusY; my++ {
		for mx := 0; mx < d.mcusX; mx++ {
			for _, c := range comps {
				for v := 0; v < c.v; v++ {
					for h := 0; h < c.h; h++ {
						if err := fn(br, c, c.block(mx*c.h+h, my*c.v+v)); err != nil {
							return err
						}
					}
				}
			}
			mcu++
			if err := d.restart(br, mcu, total, comps); err != nil {
				return err
			}
		}
	}
	return nil
}

// restart consumes the RSTn marker closing a restart interval and resets the
// DC predictors and the end-of-band run.
func (d *decoderState) restart(br *common.BitReader, mcu, total int, comps []*component) error {
	if d.restartInterval == 0 || mcu%d.restartInterval != 0 || mcu >= total {
		return nil
	}
	if err := br.Restart(); err != nil {
		return err
	}
	for _, c := range comps {
		c.pred = 0
	}
	d.eobrun = 0
	return nil
}

func (d *decoderState) decodeDC(br *common.BitReader, c *component) (int32, error) {
	t, err := br.Decode(c.dcTable)
	if err != nil {
		return 0, err
	}
	if t > 16 {
		return 0, codec.Malformed("DC magnitude category %d", t)
	}
	c.pred += br.ReceiveExtend(int(t))
	return c.pred, nil
}

func (d *decoderState) sequentialBlock(br *common.BitReader, c *component, blk []int32) error {
	dc, err := d.decodeDC(br, c)
	if err != nil {
		return err
	}
	blk[0] = dc

	for k := 1; k < 64; {
		rs, err := br.Decode(c.acTable)
		if err != nil {
			return err
		}
		r, s := int(rs>>4), int(rs&0x0F)
		if s == 0 {
			if r != 15 {
				break // EOB
			}
			k += 16
			continue
		}
		k += r
		if k > 63 {
			return codec.Malformed("AC coefficient index %d", k)
		}
		blk[common.ZigZag[k]] = br.ReceiveExtend(s)
		k++
	}
	return nil
}

func (d *decoderState) dcFirst(br *common.BitReader, c *component, blk []int32, al int) error {
	dc, err := d.decodeDC(br, c)
	if err != nil {
		return err
	}
	blk[0] = dc << uint(al)
	return nil
}

func (d *decoderState) acFirst(br *common.BitReader, c *component, blk []int32, ss, se, al int) error {
	if d.eobrun > 0 {
		d.eobrun--
		return nil
	}

	for k := ss; k <= se; {
		rs, err := br.Decode(c.acTable)
		if err != nil {
			return err
		}
		r, s := int(rs>>4), int(rs&0x0F)
		if s == 0 {
			if r != 15 {
				// EOBr: this block plus 2^r-1+bits following blocks are done
				d.eobrun = 1<<uint(r) - 1
				if r > 0 {
					d.eobrun += int(br.ReadBits(r))
				}
				return nil
			}
			k += 16
			continue
		}
		k += r
		if k > se {
			return codec.Malformed("AC coefficient index %d beyond band end %d", k, se)
		}
		blk[common.ZigZag[k]] = br.ReceiveExtend(s) * (1 << uint(al))
		k++
	}
	return nil
}

func (d *decoderState) acRefine(br *common.BitReader, c *component, blk []int32, ss, se, al int) error {
	delta := int32(1) << uint(al)
	k := ss

	if d.eobrun == 0 {
	loop:
		for ; k <= se; k++ {
			rs, err := br.Decode(c.acTable)
			if err != nil {
				return err
			}
			r, s := int(rs>>4), int(rs&0x0F)

			var z int32
			switch s {
			case 0:
				if r != 15 {
					d.eobrun = 1 << uint(r)
					if r > 0 {
						d.eobrun += int(br.ReadBits(r))
					}
					break loop
				}
			case 1:
				z = delta
				if br.ReadBit() == 0 {
					z = -z
				}
			default:
				return codec.Malformed("refinement magnitude %d", s)
			}

			k = refineNonZeroes(br, blk, k, se, r, delta)
			if k > se {
				return codec.Malformed("AC refinement index %d beyond band end %d", k, se)
			}
			if z != 0 {
				blk[common.ZigZag[k]] = z
			}
		}
	}

	if d.eobrun > 0 {
		d.eobrun--
		refineNonZeroes(br, blk, k, se, -1, delta)
	}
	return nil
}

// refineNonZeroes reads a correction bit for every nonzero coefficient from
// k onwards, stopping at the (nz+1)th zero coefficient. nz < 0 refines to the
// end of the band.
func refineNonZeroes(br *common.BitReader, blk []int32, k, se, nz int, delta int32) int {
	for ; k <= se; k++ {
		u := common.ZigZag[k]
		if blk[u] == 0 {
			if nz == 0 {
				break
			}
			nz--
			continue
		}
		if br.ReadBit() == 0 {
			continue
		}
		if blk[u] >= 0 {
			blk[u] += delta
		} else {
			blk[u] -= delta
		}
	}
	return k
}
