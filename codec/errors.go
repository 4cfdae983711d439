package codec

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/pixel"
)

var (
	// ErrCodecNotFound is returned when no external decoder is registered for a transfer syntax
	ErrCodecNotFound = errors.New("codec not found")

	// ErrUnsupportedTransferSyntax is returned for transfer syntax UIDs outside the dispatch table
	ErrUnsupportedTransferSyntax = errors.New("unsupported transfer syntax")

	// ErrUnsupportedColorSpace is returned for unknown photometric interpretations
	ErrUnsupportedColorSpace = errors.New("unsupported color space")

	// ErrUnsupportedComponentCount is returned when a codec cannot handle the frame's component count
	ErrUnsupportedComponentCount = errors.New("unsupported component count")

	// ErrMalformedBitstream covers marker sequence and Huffman code violations
	ErrMalformedBitstream = errors.New("malformed bitstream")

	// ErrCodecDimensionMismatch is returned when an external decoder's output size differs from the dataset
	ErrCodecDimensionMismatch = errors.New("codec dimension mismatch")

	// ErrFrameOutOfRange is returned when the frame index exceeds the available frames
	ErrFrameOutOfRange = errors.New("frame out of range")

	// ErrUnderlyingFetchFailed wraps errors returned by a fetch function
	ErrUnderlyingFetchFailed = errors.New("underlying fetch failed")

	// ErrMultiFrameUnsupported is returned when a JPEG stream carries more than one frame header
	ErrMultiFrameUnsupported = errors.New("multiple frame headers unsupported")

	// ErrUnsupportedFormat is returned for codec features outside the supported subset
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedPixelFormat is returned when bit depth metadata maps to no sample format
	ErrUnsupportedPixelFormat = pixel.ErrUnsupportedFormat
)

// UnsupportedTransferSyntaxError carries the unrecognized transfer syntax UID
type UnsupportedTransferSyntaxError struct {
	UID string
}

func (e *UnsupportedTransferSyntaxError) Error() string {
	return fmt.Sprintf("unsupported transfer syntax %q", e.UID)
}

// Is matches ErrUnsupportedTransferSyntax
func (e *UnsupportedTransferSyntaxError) Is(target error) bool {
	return target == ErrUnsupportedTransferSyntax
}

// DimensionMismatchError reports the expected and decoded frame size
type DimensionMismatchError struct {
	WantWidth, WantHeight int
	GotWidth, GotHeight   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("codec dimension mismatch: decoded %dx%d, expected %dx%d",
		e.GotWidth, e.GotHeight, e.WantWidth, e.WantHeight)
}

// Is matches ErrCodecDimensionMismatch
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrCodecDimensionMismatch
}

// FrameOutOfRangeError reports a frame index beyond the frame count
type FrameOutOfRangeError struct {
	Index int
	Count int
}

func (e *FrameOutOfRangeError) Error() string {
	return fmt.Sprintf("frame %d out of range (%d frames)", e.Index, e.Count)
}

// Is matches ErrFrameOutOfRange
func (e *FrameOutOfRangeError) Is(target error) bool {
	return target == ErrFrameOutOfRange
}

// FetchError wraps the error returned by a fetch function. It matches both
// ErrUnderlyingFetchFailed and the original error.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrUnderlyingFetchFailed
func (e *FetchError) Is(target error) bool {
	return target == ErrUnderlyingFetchFailed
}

// Malformed wraps a detail message into ErrMalformedBitstream
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedBitstream, fmt.Sprintf(format, args...))
}
