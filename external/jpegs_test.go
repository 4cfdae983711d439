package external

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixel"
	"github.com/google/go-cmp/cmp"
)

func TestRegister(t *testing.T) {
	r := codec.NewRegistry()
	Register(r)

	want := []string{codec.JPEGLSLossless, codec.JPEGLSNearLossless, codec.JPEG2000Lossless, codec.JPEG2000}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Errorf("registered syntaxes mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for name, d := range map[string]codec.DecoderFunc{"jpeg-ls": JPEGLS, "jpeg2000": JPEG2000} {
		t.Run(name, func(t *testing.T) {
			_, err := d.Decode([]byte{0x00, 0x01, 0x02, 0x03}, 1, 1, 8, false)
			if !errors.Is(err, codec.ErrMalformedBitstream) {
				t.Errorf("error = %v, want ErrMalformedBitstream", err)
			}
		})
	}
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(gray.Pix, []uint8{1, 2, 3, 4})

	gray16 := image.NewGray16(image.Rect(0, 0, 2, 1))
	gray16.SetGray16(0, 0, color.Gray16{Y: 0x0FFF})
	gray16.SetGray16(1, 0, color.Gray16{Y: 0x0102})

	small16 := image.NewGray16(image.Rect(0, 0, 2, 1))
	small16.SetGray16(0, 0, color.Gray16{Y: 200})
	small16.SetGray16(1, 0, color.Gray16{Y: 7})

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	rgba.SetRGBA(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	// Sub-images start away from the origin and carry a wider stride
	sub := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(sub.Pix, []uint8{1, 2, 3, 4, 5, 6})

	tests := []struct {
		name   string
		img    image.Image
		bits   int
		want   pixel.Buffer
		width  int
		height int
	}{
		{"gray", gray, 8, pixel.Buffer{Format: pixel.Uint8, U8: []uint8{1, 2, 3, 4}}, 2, 2},
		{"gray16", gray16, 12, pixel.Buffer{Format: pixel.Uint16, U16: []uint16{0x0FFF, 0x0102}}, 2, 1},
		{"gray16 narrowed", small16, 8, pixel.Buffer{Format: pixel.Uint8, U8: []uint8{200, 7}}, 2, 1},
		{"rgba", rgba, 8, pixel.Buffer{Format: pixel.Uint8, U8: []uint8{10, 20, 30, 40, 50, 60}}, 2, 1},
		{"sub image", sub.SubImage(image.Rect(1, 0, 3, 2)), 8, pixel.Buffer{Format: pixel.Uint8, U8: []uint8{2, 3, 5, 6}}, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FromImage(tt.img, tt.bits)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if res.Width != tt.width || res.Height != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", res.Width, res.Height, tt.width, tt.height)
			}
			if diff := cmp.Diff(tt.want, res.Samples); diff != "" {
				t.Errorf("samples mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
