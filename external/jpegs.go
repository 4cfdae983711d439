// Package external registers JPEG-LS and JPEG 2000 decoders backed by
// github.com/jpfielding/jpegs as external codecs.
package external

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixel"
	"github.com/jpfielding/jpegs/pkg/compress/jpeg2k"
	"github.com/jpfielding/jpegs/pkg/compress/jpegls"
)

// Register adds the JPEG-LS and JPEG 2000 decoders to r
func Register(r *codec.Registry) {
	r.Register(codec.JPEGLSLossless, JPEGLS)
	r.Register(codec.JPEGLSNearLossless, JPEGLS)
	r.Register(codec.JPEG2000Lossless, JPEG2000)
	r.Register(codec.JPEG2000, JPEG2000)
}

var (
	// JPEGLS decodes JPEG-LS lossless and near-lossless frames
	JPEGLS = imageDecoder(jpegls.Decode)
	// JPEG2000 decodes JPEG 2000 code streams
	JPEG2000 = imageDecoder(jpeg2k.Decode)
)

func imageDecoder(decode func(io.Reader) (image.Image, error)) codec.DecoderFunc {
	return func(encoded []byte, width, height, bitsPerSample int, signed bool) (*codec.DecodeResult, error) {
		img, err := decode(bytes.NewReader(encoded))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", codec.ErrMalformedBitstream, err)
		}
		return FromImage(img, bitsPerSample)
	}
}

// FromImage copies a decoded image into interleaved samples. Gray images
// give one sample per pixel, everything else three (RGB). 16-bit images
// holding at most 8 significant bits are narrowed to bytes.
func FromImage(img image.Image, bitsPerSample int) (*codec.DecodeResult, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	res := &codec.DecodeResult{Width: w, Height: h}
	n := w * h
	narrow := bitsPerSample > 0 && bitsPerSample <= 8

	switch m := img.(type) {
	case *image.Gray:
		res.Samples = pixel.NewBuffer(pixel.Uint8, n)
		for y := 0; y < h; y++ {
			copy(res.Samples.U8[y*w:(y+1)*w], m.Pix[y*m.Stride:])
		}

	case *image.Gray16:
		format := pixel.Uint16
		if narrow {
			format = pixel.Uint8
		}
		res.Samples = pixel.NewBuffer(format, n)
		for y := 0; y < h; y++ {
			row := m.Pix[y*m.Stride:]
			for x := 0; x < w; x++ {
				v := uint16(row[x*2])<<8 | uint16(row[x*2+1])
				res.Samples.Set(y*w+x, int32(v))
			}
		}

	case *image.RGBA64, *image.NRGBA64:
		format := pixel.Uint16
		if narrow {
			format = pixel.Uint8
		}
		res.Samples = pixel.NewBuffer(format, n*3)
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				if narrow {
					r, g, bl = r>>8, g>>8, bl>>8
				}
				res.Samples.Set(i, int32(r))
				res.Samples.Set(i+1, int32(g))
				res.Samples.Set(i+2, int32(bl))
				i += 3
			}
		}

	default:
		res.Samples = pixel.NewBuffer(pixel.Uint8, n*3)
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				res.Samples.U8[i] = uint8(r >> 8)
				res.Samples.U8[i+1] = uint8(g >> 8)
				res.Samples.U8[i+2] = uint8(bl >> 8)
				i += 3
			}
		}
	}
	return res, nil
}
