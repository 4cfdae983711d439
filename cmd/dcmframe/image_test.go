package main

import (
	"bytes"
	"image"
	"testing"

	"github.com/cocosip/go-dicom-imageloader/colorspace"
	"github.com/cocosip/go-dicom-imageloader/pixel"
	"github.com/cocosip/go-dicom-imageloader/pixeldata"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/tiff"
)

func TestFrameImage(t *testing.T) {
	t.Run("gray8", func(t *testing.T) {
		f := &pixeldata.ImageFrame{
			Rows: 1, Columns: 2,
			Photometric: colorspace.Monochrome2,
			Samples:     pixel.Buffer{Format: pixel.Uint8, U8: []uint8{10, 200}},
		}
		img, err := frameImage(f)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]uint8{10, 200}, img.(*image.Gray).Pix); diff != "" {
			t.Errorf("pixels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("monochrome1 inverted", func(t *testing.T) {
		f := &pixeldata.ImageFrame{
			Rows: 1, Columns: 2,
			Photometric: colorspace.Monochrome1,
			Samples:     pixel.Buffer{Format: pixel.Uint8, U8: []uint8{0, 255}},
		}
		img, err := frameImage(f)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]uint8{255, 0}, img.(*image.Gray).Pix); diff != "" {
			t.Errorf("pixels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("signed 16-bit stretched", func(t *testing.T) {
		f := &pixeldata.ImageFrame{
			Rows: 1, Columns: 3,
			Photometric: colorspace.Monochrome2,
			Samples:     pixel.Buffer{Format: pixel.Int16, I16: []int16{-1000, 0, 1000}},
			Min:         -1000,
			Max:         1000,
		}
		img, err := frameImage(f)
		if err != nil {
			t.Fatal(err)
		}
		g := img.(*image.Gray16)
		want := []uint16{0, 0x7FFF, 0xFFFF}
		for i, w := range want {
			if got := g.Gray16At(i, 0).Y; got != w {
				t.Errorf("pixel %d = %#x, want %#x", i, got, w)
			}
		}
	})

	t.Run("color", func(t *testing.T) {
		rgba := []byte{1, 2, 3, 255, 4, 5, 6, 255}
		f := &pixeldata.ImageFrame{Rows: 1, Columns: 2, Photometric: colorspace.RGB, RGBA: rgba}
		img, err := frameImage(f)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(rgba, img.(*image.RGBA).Pix); diff != "" {
			t.Errorf("pixels mismatch (-want +got):\n%s", diff)
		}

		// The TIFF encoder accepts the result
		var buf bytes.Buffer
		if err := tiff.Encode(&buf, img, nil); err != nil {
			t.Fatalf("tiff.Encode: %v", err)
		}
		back, err := tiff.Decode(&buf)
		if err != nil {
			t.Fatalf("tiff.Decode: %v", err)
		}
		if got := back.Bounds(); got != img.Bounds() {
			t.Errorf("bounds = %v, want %v", got, img.Bounds())
		}
	})

	t.Run("short buffer", func(t *testing.T) {
		f := &pixeldata.ImageFrame{Rows: 2, Columns: 2, Samples: pixel.Buffer{Format: pixel.Uint8, U8: []uint8{1}}}
		if _, err := frameImage(f); err == nil {
			t.Error("expected an error for a short sample buffer")
		}
	})
}
