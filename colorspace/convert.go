package colorspace

import (
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

// Convert turns a frame of color samples into interleaved RGBA bytes with
// alpha 255. planar selects plane-interleaved (R...G...B...) input.
// YBR_FULL_422 input holding 2 samples per pixel is read in the
// Y1 Y2 Cb Cr layout shared by each horizontal pixel pair.
func Convert(p Photometric, planar bool, samples pixel.Buffer, width, height int, palette *Palette) ([]byte, error) {
	n := width * height
	if !p.IsColor() {
		return nil, fmt.Errorf("%w: %s is not a color interpretation", codec.ErrUnsupportedColorSpace, p)
	}
	if _, ok := photometricNames[p]; !ok {
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedColorSpace, p)
	}

	out := make([]byte, n*4)

	if p == PaletteColor {
		if palette == nil {
			return nil, fmt.Errorf("%w: palette color frame without lookup tables", codec.ErrUnsupportedColorSpace)
		}
		if samples.Len() < n {
			return nil, sampleCountError(p, samples.Len(), n)
		}
		for i := 0; i < n; i++ {
			v := samples.At(i)
			out[i*4] = palette.Red.Lookup(v)
			out[i*4+1] = palette.Green.Lookup(v)
			out[i*4+2] = palette.Blue.Lookup(v)
			out[i*4+3] = 255
		}
		return out, nil
	}

	if p == YBRFull422 && samples.Len() < n*3 {
		if samples.Len() < n*2 || width%2 != 0 {
			return nil, sampleCountError(p, samples.Len(), n*2)
		}
		convert422(samples, out, n)
		return out, nil
	}

	if samples.Len() < n*3 {
		return nil, sampleCountError(p, samples.Len(), n*3)
	}

	// Offsets of the three components of pixel i: base + i*step
	step, c1, c2 := 3, 1, 2
	if planar {
		step, c1, c2 = 1, n, 2*n
	}
	transform := p.IsYBR()
	for i := 0; i < n; i++ {
		j := i * step
		a, b, c := samples.At(j), samples.At(j+c1), samples.At(j+c2)
		if transform {
			a, b, c = YCbCrToRGB(a, b, c, 255)
		}
		out[i*4] = clamp8(a)
		out[i*4+1] = clamp8(b)
		out[i*4+2] = clamp8(c)
		out[i*4+3] = 255
	}
	return out, nil
}

// convert422 expands Y1 Y2 Cb Cr groups, each covering two pixels
func convert422(samples pixel.Buffer, out []byte, n int) {
	for i := 0; i+1 < n; i += 2 {
		j := i * 2
		y1, y2 := samples.At(j), samples.At(j+1)
		cb, cr := samples.At(j+2), samples.At(j+3)

		r, g, b := YCbCrToRGB(y1, cb, cr, 255)
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = clamp8(r), clamp8(g), clamp8(b), 255
		r, g, b = YCbCrToRGB(y2, cb, cr, 255)
		out[i*4+4], out[i*4+5], out[i*4+6], out[i*4+7] = clamp8(r), clamp8(g), clamp8(b), 255
	}
}

func clamp8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func sampleCountError(p Photometric, got, want int) error {
	return codec.Malformed("%s frame has %d samples, want %d", p, got, want)
}
