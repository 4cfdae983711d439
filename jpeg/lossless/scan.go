package lossless

import (
	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/jpeg/common"
)

// decodeScan decodes one scan. An interleaved scan fills every component of
// a pixel before moving on; a single-component scan walks that component
// alone in raster order. Either way one MCU is one pixel.
func (d *decoderState) decodeScan(s *scanHeader) error {
	br := common.NewBitReader(d.data, d.r.Offset())
	nc := len(d.comps)
	total := d.width * d.height
	half := int32(1) << uint(d.precision-s.pt-1)
	mask := int32(1)<<uint(d.precision-s.pt) - 1

	start := 0 // First pixel of the current restart interval
	for i := 0; i < total; i++ {
		if d.restartInterval > 0 && i > 0 && i%d.restartInterval == 0 {
			if err := br.Restart(); err != nil {
				return err
			}
			start = i
		}

		for _, sc := range s.comps {
			t, err := br.Decode(sc.table)
			if err != nil {
				return err
			}

			var diff int32
			switch {
			case t == 16:
				// No additional bits follow category 16
				diff = 32768
			case t > 16:
				return codec.Malformed("difference category %d", t)
			default:
				diff = br.ReceiveExtend(int(t))
			}

			pred := d.predict(sc.index, i, start, s.selection, half)
			d.samples[i*nc+sc.index] = (pred + diff) & mask
		}

		// Padding past the end of the scan may only feed the final sample
		if br.Overrun() && i < total-1 {
			return codec.Malformed("lossless scan data ends at pixel %d of %d", i, total)
		}
	}

	for _, sc := range s.comps {
		sc.done = true
	}
	d.selection = s.selection
	d.pt = s.pt
	d.r.Seek(br.Offset())
	return nil
}

// predict computes the prediction for component c of pixel i. Neighbours
// decoded before the start of the current restart interval are unavailable.
func (d *decoderState) predict(c, i, start, selection int, half int32) int32 {
	nc := len(d.comps)
	x, y := i%d.width, i/d.width

	leftOK := x > 0 && i-1 >= start
	aboveOK := y > 0 && i-d.width >= start
	diagOK := x > 0 && y > 0 && i-d.width-1 >= start

	at := func(j int) int32 { return d.samples[j*nc+c] }

	if d.opts.T81Boundaries {
		switch {
		case i == start:
			return half
		case !aboveOK && leftOK:
			return at(i - 1)
		case x == 0 && aboveOK:
			return at(i - d.width)
		}
	}

	ra, rb, rc := half, half, half
	if leftOK {
		ra = at(i - 1)
	}
	if aboveOK {
		rb = at(i - d.width)
	}
	if diagOK {
		rc = at(i - d.width - 1)
	}
	return Predictor(selection, ra, rb, rc)
}
