package pixeldata

import (
	"strings"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/colorspace"
	"github.com/cocosip/go-dicom-imageloader/jpeg/baseline"
	"github.com/cocosip/go-dicom-imageloader/jpeg/lossless"
	"github.com/cocosip/go-dicom-imageloader/native"
	"github.com/cocosip/go-dicom-imageloader/pixel"
	"github.com/cocosip/go-dicom-imageloader/rle"
	"github.com/rs/zerolog"
)

// Decoder decodes frames of any supported transfer syntax. It holds no
// per-frame state and is safe for concurrent use.
type Decoder struct {
	registry *codec.Registry
	logger   zerolog.Logger
	baseline baseline.Options
	lossless lossless.Options
}

// Option configures a Decoder
type Option func(*Decoder)

// WithRegistry sets the registry of external decoders (JPEG-LS, JPEG 2000).
// Defaults to codec.Default().
func WithRegistry(r *codec.Registry) Option {
	return func(d *Decoder) {
		d.registry = r
	}
}

// WithLogger sets the logger for dispatch events
func WithLogger(l zerolog.Logger) Option {
	return func(d *Decoder) {
		d.logger = l
	}
}

// WithBaselineOptions sets the options passed to the DCT JPEG decoder
func WithBaselineOptions(o baseline.Options) Option {
	return func(d *Decoder) {
		d.baseline = o
	}
}

// WithLosslessOptions sets the options passed to the lossless JPEG decoder
func WithLosslessOptions(o lossless.Options) Option {
	return func(d *Decoder) {
		d.lossless = o
	}
}

// NewDecoder creates a Decoder
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		registry: codec.Default(),
		logger:   zerolog.Nop(),
		baseline: baseline.DefaultOptions(),
		lossless: lossless.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFrame decodes frame frameIndex of the dataset e
func (d *Decoder) DecodeFrame(e ElementMap, frameIndex int) (*ImageFrame, error) {
	ts, _ := e.String(TagTransferSyntaxUID)
	ts = strings.TrimRight(strings.TrimSpace(ts), "\x00")
	if !codec.IsKnownSyntax(ts) {
		return nil, &codec.UnsupportedTransferSyntaxError{UID: ts}
	}

	f, err := readFrameInfo(e)
	if err != nil {
		return nil, err
	}
	f.TransferSyntaxUID = ts

	format, err := pixel.Resolve(f.BitsAllocated, f.PixelRepresentation)
	if err != nil {
		return nil, err
	}

	pd, ok := e.PixelData()
	if !ok {
		return nil, codec.Malformed("dataset has no pixel data")
	}

	log := d.logger.With().
		Str("transferSyntax", ts).
		Str("syntax", codec.SyntaxName(ts)).
		Int("frame", frameIndex).
		Logger()
	log.Debug().
		Int("rows", f.Rows).
		Int("columns", f.Columns).
		Int("bitsAllocated", f.BitsAllocated).
		Stringer("photometric", f.Photometric).
		Msg("decoding frame")

	samples, err := d.decodeSamples(ts, pd, f, format, frameIndex)
	if err != nil {
		log.Debug().Err(err).Msg("frame decode failed")
		return nil, err
	}

	want := f.Rows * f.Columns * f.SamplesPerPixel
	if f.Photometric == colorspace.YBRFull422 {
		// Chroma may still be subsampled (Y1 Y2 Cb Cr per pixel pair)
		want = f.Rows * f.Columns * 2
	}
	if samples.Len() < want {
		return nil, codec.Malformed("decoded %d samples, want %d", samples.Len(), want)
	}
	f.Samples = samples
	f.Min, f.Max = samples.MinMax()

	if f.Photometric.IsColor() {
		var palette *colorspace.Palette
		if f.Photometric == colorspace.PaletteColor {
			if palette, err = readPalette(e, f.Signed()); err != nil {
				return nil, err
			}
		}
		f.RGBA, err = colorspace.Convert(f.Photometric, f.PlanarConfiguration == 1, samples, f.Columns, f.Rows, palette)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (d *Decoder) decodeSamples(ts string, pd *PixelDataElement, f *ImageFrame, format pixel.Format, index int) (pixel.Buffer, error) {
	switch ts {
	case codec.ImplicitVRLittleEndian, codec.ExplicitVRLittleEndian, codec.DeflatedExplicitVRLittleEndian:
		return d.decodeNative(pd, f, format, index, false)

	case codec.ExplicitVRBigEndian:
		return d.decodeNative(pd, f, format, index, true)

	case codec.RLELossless:
		frame, err := compressedFrame(pd, f, index)
		if err != nil {
			return pixel.Buffer{}, err
		}
		return rle.Decode(frame, rle.Info{
			Width:           f.Columns,
			Height:          f.Rows,
			SamplesPerPixel: f.SamplesPerPixel,
			Format:          format,
			Planar:          f.PlanarConfiguration == 1,
		})

	case codec.JPEGBaseline8Bit, codec.JPEGExtended12Bit, codec.JPEGProgressive:
		frame, err := compressedFrame(pd, f, index)
		if err != nil {
			return pixel.Buffer{}, err
		}
		return d.decodeDCT(frame, f, format)

	case codec.JPEGLossless, codec.JPEGLosslessSV1:
		frame, err := compressedFrame(pd, f, index)
		if err != nil {
			return pixel.Buffer{}, err
		}
		img, err := lossless.Decode(frame, &d.lossless)
		if err != nil {
			return pixel.Buffer{}, err
		}
		if err := checkSize(img.Width, img.Height, f); err != nil {
			return pixel.Buffer{}, err
		}
		// Lossless output is always pixel interleaved
		f.PlanarConfiguration = 0
		return img.Samples.Convert(format, f.BitsStored)

	case codec.JPEGLSLossless, codec.JPEGLSNearLossless, codec.JPEG2000Lossless, codec.JPEG2000:
		frame, err := compressedFrame(pd, f, index)
		if err != nil {
			return pixel.Buffer{}, err
		}
		return d.decodeExternal(ts, frame, f, format)

	default:
		return pixel.Buffer{}, &codec.UnsupportedTransferSyntaxError{UID: ts}
	}
}

// compressedFrame returns the encoded bytes of frame index
func compressedFrame(pd *PixelDataElement, f *ImageFrame, index int) ([]byte, error) {
	if !pd.Encapsulated() {
		return nil, codec.Malformed("compressed transfer syntax with native pixel data")
	}
	return pd.EncapsulatedFrame(index, f.NumberOfFrames)
}

func (d *Decoder) decodeNative(pd *PixelDataElement, f *ImageFrame, format pixel.Format, index int, bigEndian bool) (pixel.Buffer, error) {
	if pd.Native == nil {
		return pixel.Buffer{}, codec.Malformed("native transfer syntax with encapsulated pixel data")
	}
	info := native.Info{
		Rows:            f.Rows,
		Columns:         f.Columns,
		SamplesPerPixel: f.SamplesPerPixel,
		BitsAllocated:   f.BitsAllocated,
		Format:          format,
		BigEndian:       bigEndian,
	}
	if f.Photometric == colorspace.YBRFull422 && f.SamplesPerPixel == 3 {
		// Native 4:2:2 frames store two samples per pixel
		info.SamplesPerPixel = 2
	}
	return native.Decode(pd.Native, info, index)
}

// decodeDCT decodes baseline, extended and progressive JPEG. YBR frames
// keep their samples untransformed so the color converter applies the
// transform once; a transform done by the decoder turns the frame into RGB.
func (d *Decoder) decodeDCT(frame []byte, f *ImageFrame, format pixel.Format) (pixel.Buffer, error) {
	opts := d.baseline
	if opts.ColorTransform == baseline.TransformAuto && f.Photometric.IsYBR() {
		opts.ColorTransform = baseline.TransformNever
	}

	img, err := baseline.Decode(frame, &opts)
	if err != nil {
		return pixel.Buffer{}, err
	}
	if err := checkSize(img.Width, img.Height, f); err != nil {
		return pixel.Buffer{}, err
	}
	if img.Transformed && img.Components == 3 {
		f.Photometric = colorspace.RGB
	}
	f.PlanarConfiguration = 0
	return img.Samples.Convert(format, f.BitsStored)
}

func (d *Decoder) decodeExternal(ts string, frame []byte, f *ImageFrame, format pixel.Format) (pixel.Buffer, error) {
	dec, err := d.registry.Get(ts)
	if err != nil {
		return pixel.Buffer{}, err
	}
	res, err := dec.Decode(frame, f.Columns, f.Rows, f.BitsStored, f.Signed())
	if err != nil {
		return pixel.Buffer{}, err
	}
	if err := codec.CheckDimensions(res, f.Columns, f.Rows); err != nil {
		return pixel.Buffer{}, err
	}
	return res.Samples.Convert(format, f.BitsStored)
}

func checkSize(width, height int, f *ImageFrame) error {
	if width != f.Columns || height != f.Rows {
		return &codec.DimensionMismatchError{
			WantWidth:  f.Columns,
			WantHeight: f.Rows,
			GotWidth:   width,
			GotHeight:  height,
		}
	}
	return nil
}
