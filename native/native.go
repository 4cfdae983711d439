// Package native extracts frames from uncompressed (native) pixel data.
package native

import (
	"encoding/binary"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

// Info describes the layout of native pixel data
type Info struct {
	Rows            int
	Columns         int
	SamplesPerPixel int
	BitsAllocated   int
	Format          pixel.Format
	BigEndian       bool
}

// SamplesPerFrame returns the number of samples in one frame
func (i Info) SamplesPerFrame() int {
	return i.Rows * i.Columns * i.SamplesPerPixel
}

// FrameBits returns the size of one frame in bits
func (i Info) FrameBits() int {
	return i.SamplesPerFrame() * i.BitsAllocated
}

// NumberOfFrames returns how many whole frames data holds
func (i Info) NumberOfFrames(data []byte) int {
	if i.FrameBits() == 0 {
		return 0
	}
	return len(data) * 8 / i.FrameBits()
}

// Frame returns the bytes of frame index without copying. For 1-bit data
// the frame may start mid-byte, so use Decode instead.
func Frame(data []byte, info Info, index int) ([]byte, error) {
	size := info.FrameBits() / 8
	count := info.NumberOfFrames(data)
	if index < 0 || index >= count || size == 0 {
		return nil, &codec.FrameOutOfRangeError{Index: index, Count: count}
	}
	return data[index*size : (index+1)*size], nil
}

// Decode extracts frame index as a freshly allocated sample buffer.
// Big-endian 16-bit samples are swapped; 8-bit samples never are.
func Decode(data []byte, info Info, index int) (pixel.Buffer, error) {
	if info.BitsAllocated == 1 {
		count := info.NumberOfFrames(data)
		if index < 0 || index >= count {
			return pixel.Buffer{}, &codec.FrameOutOfRangeError{Index: index, Count: count}
		}
		n := info.SamplesPerFrame()
		return pixel.Buffer{Format: pixel.Uint8, U8: UnpackBits(data, index*n, n)}, nil
	}

	raw, err := Frame(data, info, index)
	if err != nil {
		return pixel.Buffer{}, err
	}

	if info.Format == pixel.Uint8 {
		if info.BitsAllocated != 8 {
			return pixel.Buffer{}, codec.ErrUnsupportedPixelFormat
		}
		return pixel.FromBytes(pixel.Uint8, raw, binary.LittleEndian), nil
	}
	if info.BitsAllocated != 16 {
		return pixel.Buffer{}, codec.ErrUnsupportedPixelFormat
	}

	if info.BigEndian {
		swapped := make([]byte, len(raw))
		copy(swapped, raw)
		SwapBytes16(swapped)
		raw = swapped
	}
	return pixel.FromBytes(info.Format, raw, binary.LittleEndian), nil
}

// SwapBytes16 reverses the byte order of each 16-bit word in place
func SwapBytes16(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}

// UnpackBits expands n single-bit samples starting at bit offset into one
// byte (0 or 1) per sample. Bits are packed least significant first.
func UnpackBits(data []byte, offset, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		bit := offset + i
		out[i] = (data[bit>>3] >> uint(bit&7)) & 1
	}
	return out
}
