package baseline

import (
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

// ColorTransform selects whether multi-component output is converted
type ColorTransform int

const (
	// TransformAuto follows the Adobe APP14 transform flag. Without one,
	// 3-component streams are treated as YCbCr unless their component ids
	// spell R, G, B.
	TransformAuto ColorTransform = iota
	// TransformNever returns the decoded components untouched
	TransformNever
	// TransformAlways converts 3-component (YCbCr) and 4-component (YCCK) output
	TransformAlways
)

// Options configures Decode
type Options struct {
	ColorTransform ColorTransform
}

// DefaultOptions returns the options used when Decode is passed nil
func DefaultOptions() Options {
	return Options{ColorTransform: TransformAuto}
}

// Validate checks if the options are valid
func (o *Options) Validate() error {
	if o.ColorTransform < TransformAuto || o.ColorTransform > TransformAlways {
		return fmt.Errorf("%w: color transform %d", codec.ErrUnsupportedFormat, o.ColorTransform)
	}
	return nil
}

// Image is a decoded frame
type Image struct {
	Width      int
	Height     int
	Components int
	Precision  int // 8 or 12
	// Samples holds pixel-interleaved output: Uint8 for 8-bit streams,
	// Uint16 for 12-bit streams
	Samples pixel.Buffer
	// Transformed reports that YCbCr (or YCCK) output was converted to RGB (or CMYK)
	Transformed bool
	Progressive bool
}
