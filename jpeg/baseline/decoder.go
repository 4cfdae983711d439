// Package baseline decodes DCT-based JPEG streams: baseline sequential
// (process 1), extended sequential with 12-bit precision (process 4) and
// progressive (process 10), all Huffman coded.
package baseline

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/jpeg/common"
)

// component holds the frame-header description of one component and its
// coefficient storage. Blocks are stored row-major over a grid padded to
// whole MCUs.
type component struct {
	id     byte
	h, v   int
	tq     int
	width  int // Samples per line after subsampling
	height int
	bx, by int // Blocks per line/column, padded to the MCU grid

	coeffs []int32 // 64 natural-order coefficients per block, not dequantized
	pred   int32   // DC predictor

	dcTable *common.HuffmanTable // Tables selected by the current scan
	acTable *common.HuffmanTable
}

func (c *component) block(x, y int) []int32 {
	i := (y*c.bx + x) * 64
	return c.coeffs[i : i+64 : i+64]
}

// scanHeader is a parsed SOS segment
type scanHeader struct {
	comps  []*component
	ss, se int // Spectral selection
	ah, al int // Successive approximation
}

// decoderState is the per-call decoder state. It is never shared between calls.
type decoderState struct {
	data []byte
	r    *common.Reader
	opts Options

	sof         common.Marker // Frame header marker, 0 until one is read
	progressive bool
	precision   int
	width       int
	height      int
	comps       []*component
	hmax, vmax  int
	mcusX       int
	mcusY       int

	quant    [4][64]int32
	quantSet [4]bool
	dc, ac   [4]*common.HuffmanTable

	restartInterval int
	eobrun          int
	scans           int

	adobe          bool
	adobeTransform byte
}

// Decode decodes a complete JPEG stream. opts may be nil.
func Decode(data []byte, opts *Options) (*Image, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	d := &decoderState{data: data, r: common.NewReader(data), opts: o}
	return d.decode()
}

func (d *decoderState) decode() (*Image, error) {
	m, err := d.r.ReadMarker()
	if err != nil || m != common.MarkerSOI {
		return nil, common.ErrInvalidSOI
	}

	afterScan := false
	for {
		if afterScan {
			m, err = d.r.NextMarker()
		} else {
			m, err = d.r.ReadMarker()
		}
		if err != nil {
			// Tolerate a missing EOI once image data has been read
			if errors.Is(err, common.ErrUnexpectedEOF) && d.scans > 0 {
				return d.finish()
			}
			return nil, err
		}
		afterScan = false

		switch {
		case m == common.MarkerEOI:
			return d.finish()

		case m == common.MarkerSOF0 || m == common.MarkerSOF1 || m == common.MarkerSOF2:
			if d.sof != 0 {
				return nil, fmt.Errorf("%w: %s after %s", codec.ErrMultiFrameUnsupported, m, d.sof)
			}
			if err := d.parseSOF(m); err != nil {
				return nil, err
			}

		case m.IsSOF():
			return nil, fmt.Errorf("%w: %s frames are not DCT Huffman coded", codec.ErrUnsupportedFormat, m)

		case m == common.MarkerDHT:
			seg, err := d.r.ReadSegment()
			if err != nil {
				return nil, err
			}
			err = common.ParseDHT(seg, func(class, id int, t *common.HuffmanTable) error {
				if class == 0 {
					d.dc[id] = t
				} else {
					d.ac[id] = t
				}
				return nil
			})
			if err != nil {
				return nil, err
			}

		case m == common.MarkerDQT:
			if err := d.parseDQT(); err != nil {
				return nil, err
			}

		case m == common.MarkerDRI:
			if err := d.parseDRI(); err != nil {
				return nil, err
			}

		case m == common.MarkerSOS:
			scan, err := d.parseSOS()
			if err != nil {
				return nil, err
			}
			if err := d.decodeScan(scan); err != nil {
				return nil, err
			}
			d.scans++
			afterScan = true

		case m == common.MarkerAPP14:
			if err := d.parseAdobe(); err != nil {
				return nil, err
			}

		case m.IsAPP() || m == common.MarkerCOM || m == common.MarkerDNL:
			if _, err := d.r.ReadSegment(); err != nil {
				return nil, err
			}

		case m.IsRST():
			// Stray restart marker between scans

		default:
			return nil, common.UnexpectedMarker(m)
		}
	}
}

func (d *decoderState) parseSOF(m common.Marker) error {
	seg, err := d.r.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) < 6 {
		return common.ErrInvalidSOF
	}

	d.sof = m
	d.progressive = m == common.MarkerSOF2
	d.precision = int(seg[0])
	d.height = int(seg[1])<<8 | int(seg[2])
	d.width = int(seg[3])<<8 | int(seg[4])
	nc := int(seg[5])

	switch {
	case d.precision != 8 && d.precision != 12:
		return fmt.Errorf("%w: precision %d", common.ErrInvalidSOF, d.precision)
	case m == common.MarkerSOF0 && d.precision != 8:
		return fmt.Errorf("%w: baseline precision %d", common.ErrInvalidSOF, d.precision)
	case d.width == 0:
		return fmt.Errorf("%w: zero width", common.ErrInvalidSOF)
	case d.height == 0:
		return fmt.Errorf("%w: height defined by DNL", codec.ErrUnsupportedFormat)
	case nc < 1 || nc > 4:
		return fmt.Errorf("%w: %d components in JPEG frame", codec.ErrUnsupportedComponentCount, nc)
	case len(seg) != 6+3*nc:
		return common.ErrInvalidSOF
	}

	d.comps = make([]*component, nc)
	d.hmax, d.vmax = 1, 1
	for i := 0; i < nc; i++ {
		p := seg[6+3*i:]
		c := &component{
			id: p[0],
			h:  int(p[1] >> 4),
			v:  int(p[1] & 0x0F),
			tq: int(p[2]),
		}
		if c.h < 1 || c.h > 4 || c.v < 1 || c.v > 4 || c.tq > 3 {
			return fmt.Errorf("%w: component %d sampling %dx%d table %d", common.ErrInvalidSOF, c.id, c.h, c.v, c.tq)
		}
		d.hmax = max(d.hmax, c.h)
		d.vmax = max(d.vmax, c.v)
		d.comps[i] = c
	}

	d.mcusX = divCeil(d.width, 8*d.hmax)
	d.mcusY = divCeil(d.height, 8*d.vmax)
	for _, c := range d.comps {
		c.width = divCeil(d.width*c.h, d.hmax)
		c.height = divCeil(d.height*c.v, d.vmax)
		c.bx = d.mcusX * c.h
		c.by = d.mcusY * c.v
		c.coeffs = make([]int32, c.bx*c.by*64)
	}
	return nil
}

func (d *decoderState) parseDQT() error {
	seg, err := d.r.ReadSegment()
	if err != nil {
		return err
	}
	for len(seg) > 0 {
		pq := seg[0] >> 4
		tq := int(seg[0] & 0x0F)
		if tq > 3 || pq > 1 {
			return fmt.Errorf("%w: table %d precision %d", common.ErrInvalidDQT, tq, pq)
		}
		seg = seg[1:]

		size := 64 * (int(pq) + 1)
		if len(seg) < size {
			return common.ErrInvalidDQT
		}
		for k := 0; k < 64; k++ {
			var q int32
			if pq == 0 {
				q = int32(seg[k])
			} else {
				q = int32(seg[2*k])<<8 | int32(seg[2*k+1])
			}
			d.quant[tq][common.ZigZag[k]] = q
		}
		d.quantSet[tq] = true
		seg = seg[size:]
	}
	return nil
}

func (d *decoderState) parseDRI() error {
	seg, err := d.r.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) != 2 {
		return common.ErrInvalidDRI
	}
	d.restartInterval = int(seg[0])<<8 | int(seg[1])
	return nil
}

// parseAdobe reads the APP14 transform flag: 0 = no transform (RGB or
// CMYK), 1 = YCbCr, 2 = YCCK
func (d *decoderState) parseAdobe() error {
	seg, err := d.r.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) >= 12 && string(seg[:5]) == "Adobe" {
		d.adobe = true
		d.adobeTransform = seg[11]
	}
	return nil
}

func (d *decoderState) parseSOS() (*scanHeader, error) {
	if d.sof == 0 {
		return nil, common.UnexpectedMarker(common.MarkerSOS)
	}
	seg, err := d.r.ReadSegment()
	if err != nil {
		return nil, err
	}
	if len(seg) < 1 {
		return nil, common.ErrInvalidSOS
	}
	ns := int(seg[0])
	if ns < 1 || ns > len(d.comps) || len(seg) != 1+2*ns+3 {
		return nil, fmt.Errorf("%w: %d components", common.ErrInvalidSOS, ns)
	}

	s := &scanHeader{comps: make([]*component, ns)}
	p := seg[1+2*ns:]
	s.ss, s.se = int(p[0]), int(p[1])
	s.ah, s.al = int(p[2]>>4), int(p[2]&0x0F)

	blocksPerMCU := 0
	for i := 0; i < ns; i++ {
		id := seg[1+2*i]
		sel := seg[2+2*i]
		var c *component
		for _, fc := range d.comps {
			if fc.id == id {
				c = fc
				break
			}
		}
		if c == nil {
			return nil, fmt.Errorf("%w: unknown component %d", common.ErrInvalidSOS, id)
		}
		blocksPerMCU += c.h * c.v

		td, ta := int(sel>>4), int(sel&0x0F)
		if td > 3 || ta > 3 {
			return nil, fmt.Errorf("%w: table selector %#x", common.ErrInvalidSOS, sel)
		}
		needDC := !d.progressive || (s.ss == 0 && s.ah == 0)
		needAC := !d.progressive || s.ss > 0
		if needDC {
			if c.dcTable, err = d.table(0, td); err != nil {
				return nil, err
			}
		}
		if needAC {
			if c.acTable, err = d.table(1, ta); err != nil {
				return nil, err
			}
		}
		s.comps[i] = c
	}
	if ns > 1 && blocksPerMCU > 10 {
		return nil, fmt.Errorf("%w: %d blocks per MCU", common.ErrInvalidSOS, blocksPerMCU)
	}

	if d.progressive {
		switch {
		case s.ss == 0 && s.se != 0:
			return nil, fmt.Errorf("%w: DC scan with spectral end %d", common.ErrInvalidSOS, s.se)
		case s.ss > 0 && (ns != 1 || s.se < s.ss || s.se > 63):
			return nil, fmt.Errorf("%w: AC scan %d..%d over %d components", common.ErrInvalidSOS, s.ss, s.se, ns)
		case s.ah != 0 && s.ah != s.al+1:
			return nil, fmt.Errorf("%w: successive approximation %d/%d", common.ErrInvalidSOS, s.ah, s.al)
		}
	}
	return s, nil
}

// table returns the Huffman table selected by a scan. Streams that omit DHT
// (Motion JPEG) fall back to the T.81 Annex K tables for ids 0 and 1.
func (d *decoderState) table(class, id int) (*common.HuffmanTable, error) {
	tables := &d.dc
	if class == 1 {
		tables = &d.ac
	}
	if t := tables[id]; t != nil {
		return t, nil
	}

	var spec common.TableSpec
	switch {
	case class == 0 && id == 0:
		spec = common.StandardDCLuminance
	case class == 0 && id == 1:
		spec = common.StandardDCChrominance
	case class == 1 && id == 0:
		spec = common.StandardACLuminance
	case class == 1 && id == 1:
		spec = common.StandardACChrominance
	default:
		return nil, fmt.Errorf("%w: class %d id %d", common.ErrMissingTable, class, id)
	}
	tables[id] = spec.Build()
	return tables[id], nil
}

func divCeil(a, b int) int {
	return (a + b - 1) / b
}
