package main

import (
	"fmt"
	"image"

	"github.com/cocosip/go-dicom-imageloader/colorspace"
	"github.com/cocosip/go-dicom-imageloader/pixel"
	"github.com/cocosip/go-dicom-imageloader/pixeldata"
)

// frameImage converts a decoded frame to an image. Color frames use their
// RGBA buffer. 8-bit monochrome is copied as is; deeper monochrome is
// stretched from [Min, Max] to the 16-bit range. MONOCHROME1 is inverted.
func frameImage(f *pixeldata.ImageFrame) (image.Image, error) {
	rect := image.Rect(0, 0, f.Columns, f.Rows)
	n := f.Columns * f.Rows

	if f.RGBA != nil {
		if len(f.RGBA) < n*4 {
			return nil, fmt.Errorf("RGBA buffer holds %d bytes, want %d", len(f.RGBA), n*4)
		}
		return &image.RGBA{Pix: f.RGBA[:n*4], Stride: f.Columns * 4, Rect: rect}, nil
	}
	if f.Samples.Len() < n {
		return nil, fmt.Errorf("frame holds %d samples, want %d", f.Samples.Len(), n)
	}
	invert := f.Photometric == colorspace.Monochrome1

	if f.Samples.Format == pixel.Uint8 {
		img := image.NewGray(rect)
		for i := 0; i < n; i++ {
			v := f.Samples.U8[i]
			if invert {
				v = 255 - v
			}
			img.Pix[i] = v
		}
		return img, nil
	}

	img := image.NewGray16(rect)
	span := int64(f.Max) - int64(f.Min)
	if span == 0 {
		span = 1
	}
	for i := 0; i < n; i++ {
		v := uint16((int64(f.Samples.At(i)) - int64(f.Min)) * 0xFFFF / span)
		if invert {
			v = 0xFFFF - v
		}
		img.Pix[i*2] = uint8(v >> 8)
		img.Pix[i*2+1] = uint8(v)
	}
	return img, nil
}
