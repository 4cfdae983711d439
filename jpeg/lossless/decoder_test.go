package lossless

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/jpeg/common"
	"github.com/cocosip/go-dicom-imageloader/jpeg/jpegtest"
	"github.com/cocosip/go-dicom-imageloader/pixel"
	"github.com/google/go-cmp/cmp"
)

func randomSamples(seed int64, n, precision int) []int {
	rng := rand.New(rand.NewSource(seed))
	out := make([]int, n)
	for i := range out {
		out[i] = rng.Intn(1 << uint(precision))
	}
	return out
}

func gradientSamples(w, h, nc, precision int) []int {
	out := make([]int, w*h*nc)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < nc; c++ {
				out[(y*w+x)*nc+c] = (x*37 + y*91 + c*1000) % (1 << uint(precision))
			}
		}
	}
	return out
}

func asInts(b pixel.Buffer) []int {
	out := make([]int, b.Len())
	for i := range out {
		out[i] = int(b.At(i))
	}
	return out
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		params  jpegtest.LosslessParams
		samples []int
	}{
		{
			name:    "8-bit gradient",
			params:  jpegtest.LosslessParams{Width: 9, Height: 7, Components: 1, Precision: 8},
			samples: gradientSamples(9, 7, 1, 8),
		},
		{
			name:    "12-bit random",
			params:  jpegtest.LosslessParams{Width: 11, Height: 5, Components: 1, Precision: 12},
			samples: randomSamples(1, 55, 12),
		},
		{
			name:    "16-bit random",
			params:  jpegtest.LosslessParams{Width: 6, Height: 6, Components: 1, Precision: 16},
			samples: randomSamples(2, 36, 16),
		},
		{
			name:    "3 component 8-bit",
			params:  jpegtest.LosslessParams{Width: 5, Height: 4, Components: 3, Precision: 8},
			samples: randomSamples(3, 60, 8),
		},
		{
			name:    "restart interval inside a row",
			params:  jpegtest.LosslessParams{Width: 7, Height: 6, Components: 1, Precision: 10, Restart: 5},
			samples: randomSamples(4, 42, 10),
		},
		{
			name:    "restart interval per row 3 component",
			params:  jpegtest.LosslessParams{Width: 4, Height: 5, Components: 3, Precision: 16, Restart: 4},
			samples: gradientSamples(4, 5, 3, 16),
		},
	}

	for _, tt := range tests {
		for _, t81 := range []bool{false, true} {
			for sel := 1; sel <= 7; sel++ {
				p := tt.params
				p.Selection = sel
				p.T81 = t81
				name := tt.name + "/" + PredictorName(sel)
				if t81 {
					name += "/T.81 boundaries"
				}

				t.Run(name, func(t *testing.T) {
					data := jpegtest.EncodeLossless(tt.samples, p)
					img, err := Decode(data, &Options{T81Boundaries: t81})
					if err != nil {
						t.Fatalf("Decode failed: %v", err)
					}
					if img.Width != p.Width || img.Height != p.Height || img.Components != p.Components {
						t.Fatalf("unexpected header: %+v", img)
					}
					if img.Selection != sel || img.Precision != p.Precision {
						t.Errorf("selection/precision = %d/%d", img.Selection, img.Precision)
					}
					if diff := cmp.Diff(tt.samples, asInts(img.Samples)); diff != "" {
						t.Errorf("samples mismatch (-want +got):\n%s", diff)
					}
				})
			}
		}
	}
}

func TestDecodeCategory16(t *testing.T) {
	// Alternating 0 and 32768 makes every left-predicted difference -32768
	samples := make([]int, 16)
	for i := range samples {
		if i%2 == 1 {
			samples[i] = 32768
		}
	}
	p := jpegtest.LosslessParams{Width: 4, Height: 4, Components: 1, Precision: 16, Selection: 1}

	img, err := Decode(jpegtest.EncodeLossless(samples, p), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Samples.Format != pixel.Uint16 {
		t.Errorf("format = %v, want uint16", img.Samples.Format)
	}
	if diff := cmp.Diff(samples, asInts(img.Samples)); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

// handStream builds an 8-bit single component stream whose DC table has
// two codes: "0" for category 0 and "10" for category 4.
func handStream(width, selection, pt int, scan []byte) []byte {
	s := &jpegtest.Stream{}
	return s.Marker(common.MarkerSOI).
		SOF(common.MarkerSOF3, 8, width, 1, jpegtest.Component{ID: 1, H: 1, V: 1}).
		DHT(0, 0, common.TableSpec{Bits: [16]int{1, 1}, Values: []byte{0, 4}}).
		SOS(selection, 0, 0, pt, jpegtest.ScanComponent{ID: 1}).
		Raw(scan).
		Marker(common.MarkerEOI).
		Bytes()
}

// First difference +10 ("10" "1010"), then two zero differences: 0xA8
var handScan = []byte{0xA8}

func TestDecodeSelection2FirstRowUsesHalfRange(t *testing.T) {
	img, err := Decode(handStream(3, 2, 0, handScan), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// Above is unavailable on row 0, so every prediction is 128
	if diff := cmp.Diff([]int{138, 128, 128}, asInts(img.Samples)); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}

	img, err = Decode(handStream(3, 1, 0, handScan), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([]int{138, 138, 138}, asInts(img.Samples)); diff != "" {
		t.Errorf("selection 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePointTransform(t *testing.T) {
	img, err := Decode(handStream(3, 1, 2, handScan), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// Half range is 1<<5 at Pt=2: (32+10)<<2
	if diff := cmp.Diff([]int{168, 168, 168}, asInts(img.Samples)); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	if img.PointTransform != 2 {
		t.Errorf("PointTransform = %d, want 2", img.PointTransform)
	}
}

func TestDecodeTail(t *testing.T) {
	// The data covers three samples. A fourth, final sample decodes from
	// padding and is accepted; a fifth sample would not be.
	img, err := Decode(handStream(4, 1, 0, handScan), nil)
	if err != nil {
		t.Fatalf("final sample: %v", err)
	}
	if diff := cmp.Diff([]int{138, 138, 138, 138}, asInts(img.Samples)); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}

	if _, err := Decode(handStream(5, 1, 0, handScan), nil); !errors.Is(err, codec.ErrMalformedBitstream) {
		t.Errorf("non-final sample error = %v, want ErrMalformedBitstream", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	twoComponents := (&jpegtest.Stream{}).Marker(common.MarkerSOI).
		SOF(common.MarkerSOF3, 8, 4, 4,
			jpegtest.Component{ID: 1, H: 1, V: 1},
			jpegtest.Component{ID: 2, H: 1, V: 1}).
		Bytes()

	baseline := (&jpegtest.Stream{}).Marker(common.MarkerSOI).
		SOF(common.MarkerSOF0, 8, 4, 4, jpegtest.Component{ID: 1, H: 1, V: 1}).
		Bytes()

	noTable := (&jpegtest.Stream{}).Marker(common.MarkerSOI).
		SOF(common.MarkerSOF3, 8, 4, 4, jpegtest.Component{ID: 1, H: 1, V: 1}).
		SOS(1, 0, 0, 0, jpegtest.ScanComponent{ID: 1}).
		Bytes()

	badSelection := handStream(3, 0, 0, handScan)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"no SOI", []byte{0xFF, 0xD9}, codec.ErrMalformedBitstream},
		{"two components", twoComponents, codec.ErrUnsupportedComponentCount},
		{"DCT frame", baseline, codec.ErrUnsupportedFormat},
		{"missing table", noTable, codec.ErrMalformedBitstream},
		{"selection 0", badSelection, codec.ErrMalformedBitstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, nil); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPredictor(t *testing.T) {
	ra, rb, rc := int32(100), int32(60), int32(40)
	want := []int32{100, 60, 40, 120, 110, 90, 80}
	for sel := 1; sel <= 7; sel++ {
		if got := Predictor(sel, ra, rb, rc); got != want[sel-1] {
			t.Errorf("%s = %d, want %d", PredictorName(sel), got, want[sel-1])
		}
	}
}
