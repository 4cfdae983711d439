package codec

import "github.com/cocosip/go-dicom-imageloader/pixel"

// ExternalDecoder decodes a transfer syntax whose algorithm lives outside
// this module (JPEG-LS, JPEG 2000). Implementations receive one encoded
// frame and the dimensions the dataset declares for it.
type ExternalDecoder interface {
	Decode(encoded []byte, width, height, bitsPerSample int, signed bool) (*DecodeResult, error)
}

// DecoderFunc adapts a function to ExternalDecoder
type DecoderFunc func(encoded []byte, width, height, bitsPerSample int, signed bool) (*DecodeResult, error)

// Decode calls f
func (f DecoderFunc) Decode(encoded []byte, width, height, bitsPerSample int, signed bool) (*DecodeResult, error) {
	return f(encoded, width, height, bitsPerSample, signed)
}

// DecodeResult contains the result of an external decode
type DecodeResult struct {
	Samples pixel.Buffer // Interleaved samples
	Width   int          // Decoded image width
	Height  int          // Decoded image height
}

// CheckDimensions verifies an external decoder produced the expected frame size
func CheckDimensions(result *DecodeResult, width, height int) error {
	if result.Width != width || result.Height != height {
		return &DimensionMismatchError{
			WantWidth:  width,
			WantHeight: height,
			GotWidth:   result.Width,
			GotHeight:  result.Height,
		}
	}
	return nil
}
