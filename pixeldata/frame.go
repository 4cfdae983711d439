package pixeldata

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/colorspace"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

// ImageFrame is one decoded frame with the attributes needed to display it
type ImageFrame struct {
	TransferSyntaxUID   string
	Rows                int
	Columns             int
	SamplesPerPixel     int
	BitsAllocated       int
	BitsStored          int
	PixelRepresentation int
	PlanarConfiguration int
	Photometric         colorspace.Photometric
	NumberOfFrames      int
	RescaleSlope        float64
	RescaleIntercept    float64

	Samples  pixel.Buffer
	Min, Max int32
	// RGBA is the display buffer of color frames, nil for monochrome
	RGBA []byte
}

// Signed reports whether the samples are two's complement
func (f *ImageFrame) Signed() bool {
	return f.PixelRepresentation == 1
}

// readFrameInfo fills the image attributes of a frame. Missing optional
// attributes take their DICOM defaults.
func readFrameInfo(e ElementMap) (*ImageFrame, error) {
	f := &ImageFrame{
		SamplesPerPixel:  1,
		NumberOfFrames:   1,
		RescaleSlope:     1,
		Photometric:      colorspace.Monochrome2,
		RescaleIntercept: 0,
	}

	rows, okRows := e.Uint16(TagRows)
	cols, okCols := e.Uint16(TagColumns)
	bits, okBits := e.Uint16(TagBitsAllocated)
	if !okRows || !okCols || !okBits || rows == 0 || cols == 0 || bits == 0 {
		return nil, codec.Malformed("missing image dimensions (rows %d, columns %d, bits allocated %d)", rows, cols, bits)
	}
	f.Rows, f.Columns, f.BitsAllocated = int(rows), int(cols), int(bits)
	f.BitsStored = f.BitsAllocated

	if v, ok := e.Uint16(TagBitsStored); ok && v > 0 {
		f.BitsStored = int(v)
	}
	if v, ok := e.Uint16(TagPixelRepresentation); ok {
		f.PixelRepresentation = int(v)
	}
	if v, ok := e.Uint16(TagPlanarConfiguration); ok {
		f.PlanarConfiguration = int(v)
	}
	if v, ok := e.FloatString(TagNumberOfFrames); ok && v >= 1 {
		f.NumberOfFrames = int(v)
	}
	if v, ok := e.FloatString(TagRescaleSlope); ok {
		f.RescaleSlope = v
	}
	if v, ok := e.FloatString(TagRescaleIntercept); ok {
		f.RescaleIntercept = v
	}
	if s, ok := e.String(TagPhotometricInterpretation); ok && strings.TrimSpace(s) != "" {
		p, err := colorspace.ParsePhotometric(s)
		if err != nil {
			return nil, err
		}
		f.Photometric = p
	}
	// Without the attribute the interpretation decides
	f.SamplesPerPixel = f.Photometric.SamplesPerPixel()
	if v, ok := e.Uint16(TagSamplesPerPixel); ok && v > 0 {
		f.SamplesPerPixel = int(v)
	}
	return f, nil
}

// readPalette builds the palette color lookup tables. Descriptor values
// are read through Int16 so the first mapped value keeps its sign.
func readPalette(e ElementMap, signed bool) (*colorspace.Palette, error) {
	lut := func(descriptor, data Tag) (*colorspace.LUT, error) {
		var d [3]int
		for i := range d {
			v, ok := e.Int16(descriptor, i)
			if !ok {
				return nil, codec.Malformed("palette descriptor %s has no value %d", descriptor, i)
			}
			d[i] = int(uint16(v))
		}
		raw, ok := e.Bytes(data)
		if !ok {
			return nil, codec.Malformed("palette data %s missing", data)
		}
		words := make([]uint16, len(raw)/2)
		for i := range words {
			words[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		return colorspace.NewLUT(d, words, signed)
	}

	var p colorspace.Palette
	var err error
	if p.Red, err = lut(TagRedPaletteDescriptor, TagRedPaletteData); err != nil {
		return nil, err
	}
	if p.Green, err = lut(TagGreenPaletteDescriptor, TagGreenPaletteData); err != nil {
		return nil, err
	}
	if p.Blue, err = lut(TagBluePaletteDescriptor, TagBluePaletteData); err != nil {
		return nil, err
	}
	return &p, nil
}

// parseValues splits a backslash separated multi-value string of integers
func parseValues(s string) []uint16 {
	var out []uint16
	for _, part := range strings.Split(s, `\`) {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, uint16(v))
	}
	return out
}
