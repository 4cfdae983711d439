package jpegtest

import "github.com/cocosip/go-dicom-imageloader/jpeg/common"

// LosslessParams configures EncodeLossless
type LosslessParams struct {
	Width, Height int
	Components    int // 1 or 3, always one interleaved scan
	Precision     int
	Selection     int // Predictor 1-7
	Restart       int // Restart interval in samples per component, 0 for none
	// T81 selects the first-line/first-column rules of ITU-T T.81 H.1.2.1.
	// Otherwise unavailable neighbours are replaced by 1<<(Precision-1).
	T81 bool
}

// EncodeLossless encodes interleaved samples as a process 14 stream using
// ExtendedDCTable, which covers every difference category.
func EncodeLossless(samples []int, p LosslessParams) []byte {
	table := common.ExtendedDCTable.Build()
	codes := table.Codes()
	half := 1 << uint(p.Precision-1)
	nc := p.Components

	at := func(c, x, y int) int { return samples[(y*p.Width+x)*nc+c] }

	var s Stream
	s.Marker(common.MarkerSOI)
	comps := make([]Component, nc)
	scan := make([]ScanComponent, nc)
	for c := 0; c < nc; c++ {
		comps[c] = Component{ID: c + 1, H: 1, V: 1}
		scan[c] = ScanComponent{ID: c + 1}
	}
	s.SOF(common.MarkerSOF3, p.Precision, p.Width, p.Height, comps...)
	s.DHT(0, 0, common.ExtendedDCTable)
	if p.Restart > 0 {
		s.DRI(p.Restart)
	}
	s.SOS(p.Selection, 0, 0, 0, scan...)

	var w BitWriter
	start := 0 // first pixel index of the current restart interval
	rst := 0
	for i := 0; i < p.Width*p.Height; i++ {
		if p.Restart > 0 && i > 0 && i%p.Restart == 0 {
			s.Raw(w.Flush())
			s.Marker(common.MarkerRST0 + common.Marker(rst))
			rst = (rst + 1) & 7
			start = i
		}
		x, y := i%p.Width, i/p.Width
		for c := 0; c < nc; c++ {
			pred := predict(p, at, c, x, y, i, start, half)
			diff := (at(c, x, y) - pred) & 0xFFFF
			if diff >= 0x8000 {
				diff -= 0x10000
			}
			if diff == -0x8000 {
				w.WriteCode(codes[16])
				continue
			}
			w.WriteValue(codes, int32(diff))
		}
	}
	s.Raw(w.Flush())
	s.Marker(common.MarkerEOI)
	return s.Bytes()
}

func predict(p LosslessParams, at func(c, x, y int) int, c, x, y, i, start, half int) int {
	leftOK := x > 0 && i-1 >= start
	aboveOK := y > 0 && i-p.Width >= start
	diagOK := x > 0 && y > 0 && i-p.Width-1 >= start

	if p.T81 {
		switch {
		case i == start:
			return half
		case !aboveOK && leftOK:
			return at(c, x-1, y)
		case x == 0 && aboveOK:
			return at(c, x, y-1)
		}
	}

	ra, rb, rc := half, half, half
	if leftOK {
		ra = at(c, x-1, y)
	}
	if aboveOK {
		rb = at(c, x, y-1)
	}
	if diagOK {
		rc = at(c, x-1, y-1)
	}

	switch p.Selection {
	case 1:
		return ra
	case 2:
		return rb
	case 3:
		return rc
	case 4:
		return ra + rb - rc
	case 5:
		return ra + (rb-rc)>>1
	case 6:
		return rb + (ra-rc)>>1
	default:
		return (ra + rb) >> 1
	}
}
