package colorspace

import (
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
)

// LUT is one channel of a palette color lookup table
type LUT struct {
	// FirstMapped is the pixel value mapped to Data[0]
	FirstMapped int32
	// Bits is the number of bits per entry, 8 or 16
	Bits int
	Data []uint16
}

// NewLUT builds a lookup table from its three-value descriptor
// (entries, first mapped value, bits per entry). An entry count of 0 means
// 65536. When signed, the first mapped value is read as a signed 16-bit value.
func NewLUT(descriptor [3]int, data []uint16, signed bool) (*LUT, error) {
	entries := descriptor[0]
	if entries == 0 {
		entries = 65536
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: palette lookup table has no data", codec.ErrUnsupportedColorSpace)
	}
	if len(data) > entries {
		data = data[:entries]
	}

	first := int32(descriptor[1])
	if signed {
		first = int32(int16(uint16(descriptor[1])))
	}
	return &LUT{FirstMapped: first, Bits: descriptor[2], Data: data}, nil
}

// Lookup maps a pixel value to an 8-bit intensity. Values outside the table
// map to its first or last entry.
func (l *LUT) Lookup(v int32) byte {
	i := v - l.FirstMapped
	if i < 0 {
		i = 0
	} else if last := int32(len(l.Data) - 1); i > last {
		i = last
	}
	e := l.Data[i]
	if l.Bits > 8 {
		return byte(e >> 8)
	}
	return byte(e)
}

// Palette holds the red, green and blue lookup tables
type Palette struct {
	Red, Green, Blue *LUT
}
