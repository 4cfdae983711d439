// Package lossless decodes JPEG Lossless (process 14, SOF3) streams,
// including the selection value 1 form used by the DICOM default lossless
// transfer syntax.
package lossless

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/jpeg/common"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

type component struct {
	id    byte
	index int // Position in the interleaved output
	done  bool
}

type scanComponent struct {
	*component
	table *common.HuffmanTable
}

type scanHeader struct {
	comps     []scanComponent
	selection int
	pt        int
}

// decoderState is the per-call decoder state
type decoderState struct {
	data []byte
	r    *common.Reader
	opts Options

	sof       bool
	precision int
	width     int
	height    int
	comps     []*component

	dc              [4]*common.HuffmanTable
	restartInterval int

	samples   []int32 // Interleaved, before the point transform shift
	selection int
	pt        int
	scans     int
}

// Decode decodes a complete lossless JPEG stream. opts may be nil.
func Decode(data []byte, opts *Options) (*Image, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
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
			if errors.Is(err, common.ErrUnexpectedEOF) && d.scans > 0 {
				return d.finish()
			}
			return nil, err
		}
		afterScan = false

		switch {
		case m == common.MarkerEOI:
			return d.finish()

		case m == common.MarkerSOF3:
			if d.sof {
				return nil, fmt.Errorf("%w: second frame header", codec.ErrMultiFrameUnsupported)
			}
			if err := d.parseSOF(); err != nil {
				return nil, err
			}

		case m.IsSOF():
			return nil, fmt.Errorf("%w: %s is not a lossless frame", codec.ErrUnsupportedFormat, m)

		case m == common.MarkerDHT:
			seg, err := d.r.ReadSegment()
			if err != nil {
				return nil, err
			}
			err = common.ParseDHT(seg, func(class, id int, t *common.HuffmanTable) error {
				// AC tables have no meaning in a lossless stream
				if class == 0 {
					d.dc[id] = t
				}
				return nil
			})
			if err != nil {
				return nil, err
			}

		case m == common.MarkerDRI:
			seg, err := d.r.ReadSegment()
			if err != nil {
				return nil, err
			}
			if len(seg) != 2 {
				return nil, common.ErrInvalidDRI
			}
			d.restartInterval = int(seg[0])<<8 | int(seg[1])

		case m == common.MarkerSOS:
			s, err := d.parseSOS()
			if err != nil {
				return nil, err
			}
			if err := d.decodeScan(s); err != nil {
				return nil, err
			}
			d.scans++
			afterScan = true

		case m == common.MarkerDQT || m.IsAPP() || m == common.MarkerCOM || m == common.MarkerDNL:
			if _, err := d.r.ReadSegment(); err != nil {
				return nil, err
			}

		case m.IsRST():

		default:
			return nil, common.UnexpectedMarker(m)
		}
	}
}

func (d *decoderState) parseSOF() error {
	seg, err := d.r.ReadSegment()
	if err != nil {
		return err
	}
	if len(seg) < 6 {
		return common.ErrInvalidSOF
	}

	d.sof = true
	d.precision = int(seg[0])
	d.height = int(seg[1])<<8 | int(seg[2])
	d.width = int(seg[3])<<8 | int(seg[4])
	nc := int(seg[5])

	switch {
	case d.precision < 2 || d.precision > 16:
		return fmt.Errorf("%w: precision %d", common.ErrInvalidSOF, d.precision)
	case d.width == 0:
		return fmt.Errorf("%w: zero width", common.ErrInvalidSOF)
	case d.height == 0:
		return fmt.Errorf("%w: height defined by DNL", codec.ErrUnsupportedFormat)
	case nc != 1 && nc != 3:
		return fmt.Errorf("%w: %d components in lossless frame", codec.ErrUnsupportedComponentCount, nc)
	case len(seg) != 6+3*nc:
		return common.ErrInvalidSOF
	}

	d.comps = make([]*component, nc)
	for i := range d.comps {
		p := seg[6+3*i:]
		if p[1] != 0x11 {
			return fmt.Errorf("%w: subsampled lossless component %d", codec.ErrUnsupportedFormat, p[0])
		}
		d.comps[i] = &component{id: p[0], index: i}
	}
	d.samples = make([]int32, d.width*d.height*nc)
	return nil
}

func (d *decoderState) parseSOS() (*scanHeader, error) {
	if !d.sof {
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

	s := &scanHeader{comps: make([]scanComponent, ns)}
	for i := 0; i < ns; i++ {
		id, sel := seg[1+2*i], seg[2+2*i]
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
		td := int(sel >> 4)
		if td > 3 {
			return nil, fmt.Errorf("%w: table selector %#x", common.ErrInvalidSOS, sel)
		}
		if d.dc[td] == nil {
			return nil, fmt.Errorf("%w: DC table %d", common.ErrMissingTable, td)
		}
		s.comps[i] = scanComponent{component: c, table: d.dc[td]}
	}

	p := seg[1+2*ns:]
	s.selection = int(p[0])
	s.pt = int(p[2] & 0x0F)
	if s.selection < 1 || s.selection > 7 {
		return nil, fmt.Errorf("%w: selection value %d", common.ErrInvalidSOS, s.selection)
	}
	if s.pt >= d.precision {
		return nil, fmt.Errorf("%w: point transform %d at precision %d", common.ErrInvalidSOS, s.pt, d.precision)
	}
	return s, nil
}

func (d *decoderState) finish() (*Image, error) {
	if d.scans == 0 {
		return nil, codec.Malformed("no scan before end of stream")
	}
	for _, c := range d.comps {
		if !c.done {
			return nil, codec.Malformed("component %d has no scan", c.id)
		}
	}

	format := pixel.Uint8
	if d.precision > 8 {
		format = pixel.Uint16
	}
	out := pixel.NewBuffer(format, len(d.samples))
	for i, v := range d.samples {
		out.Set(i, v<<uint(d.pt))
	}

	return &Image{
		Width:          d.width,
		Height:         d.height,
		Components:     len(d.comps),
		Precision:      d.precision,
		Selection:      d.selection,
		PointTransform: d.pt,
		Samples:        out,
	}, nil
}
