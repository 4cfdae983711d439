package baseline

import (
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/colorspace"
	"github.com/cocosip/go-dicom-imageloader/jpeg/common"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

type transform int

const (
	transformNone transform = iota
	transformYCbCr
	transformYCCK
)

// finish dequantizes and inverse transforms every block, upsamples
// subsampled components and interleaves the result.
func (d *decoderState) finish() (*Image, error) {
	if d.sof == 0 || d.scans == 0 {
		return nil, codec.Malformed("no image data before end of stream")
	}

	planes := make([][]uint16, len(d.comps))
	for i, c := range d.comps {
		if !d.quantSet[c.tq] {
			return nil, fmt.Errorf("%w: quantization table %d", common.ErrMissingTable, c.tq)
		}
		planes[i] = d.reconstruct(c)
	}

	nc := len(d.comps)
	format := pixel.Uint8
	if d.precision > 8 {
		format = pixel.Uint16
	}
	out := pixel.NewBuffer(format, d.width*d.height*nc)

	for i, c := range d.comps {
		plane := planes[i]
		stride := c.bx * 8
		for y := 0; y < d.height; y++ {
			row := (y * c.v / d.vmax) * stride
			dst := y * d.width * nc
			for x := 0; x < d.width; x++ {
				out.Set(dst+x*nc+i, int32(plane[row+x*c.h/d.hmax]))
			}
		}
	}

	t := d.colorTransform()
	if t != transformNone {
		applyTransform(out, t, int32(1)<<uint(d.precision)-1)
	}

	return &Image{
		Width:       d.width,
		Height:      d.height,
		Components:  nc,
		Precision:   d.precision,
		Samples:     out,
		Transformed: t != transformNone,
		Progressive: d.progressive,
	}, nil
}

// reconstruct returns the component's sample plane at block-grid size
func (d *decoderState) reconstruct(c *component) []uint16 {
	stride := c.bx * 8
	plane := make([]uint16, stride*c.by*8)
	q := &d.quant[c.tq]

	var blk [64]int32
	for by := 0; by < c.by; by++ {
		for bx := 0; bx < c.bx; bx++ {
			coef := c.block(bx, by)
			for i := range blk {
				blk[i] = coef[i] * q[i]
			}
			common.IDCT(&blk, plane[by*8*stride+bx*8:], stride, d.precision)
		}
	}
	return plane
}

func (d *decoderState) colorTransform() transform {
	nc := len(d.comps)

	switch d.opts.ColorTransform {
	case TransformNever:
		return transformNone
	case TransformAlways:
		switch nc {
		case 3:
			return transformYCbCr
		case 4:
			return transformYCCK
		}
		return transformNone
	}

	if d.adobe {
		switch {
		case d.adobeTransform == 1 && nc == 3:
			return transformYCbCr
		case d.adobeTransform == 2 && nc == 4:
			return transformYCCK
		}
		return transformNone
	}

	if nc == 3 {
		if d.comps[0].id == 'R' && d.comps[1].id == 'G' && d.comps[2].id == 'B' {
			return transformNone
		}
		return transformYCbCr
	}
	return transformNone
}

// applyTransform converts interleaved YCbCr to RGB, or YCCK to CMYK
func applyTransform(buf pixel.Buffer, t transform, maxVal int32) {
	nc := 3
	if t == transformYCCK {
		nc = 4
	}
	for i := 0; i+nc <= buf.Len(); i += nc {
		r, g, b := colorspace.YCbCrToRGB(buf.At(i), buf.At(i+1), buf.At(i+2), maxVal)
		if t == transformYCCK {
			r, g, b = maxVal-r, maxVal-g, maxVal-b
		}
		buf.Set(i, r)
		buf.Set(i+1, g)
		buf.Set(i+2, b)
	}
}
