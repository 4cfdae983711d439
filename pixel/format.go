package pixel

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when bit depth metadata maps to no sample format
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// Format is the fixed-width integer type of decoded samples
type Format int

const (
	// Uint8 holds 1-8 bit unsigned samples (1-bit data is unpacked to one byte per sample)
	Uint8 Format = iota
	// Uint16 holds 9-16 bit unsigned samples
	Uint16
	// Int16 holds 9-16 bit signed samples
	Int16
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// BytesPerSample returns the storage size of one sample
func (f Format) BytesPerSample() int {
	if f == Uint8 {
		return 1
	}
	return 2
}

// Signed reports whether samples are two's complement
func (f Format) Signed() bool {
	return f == Int16
}

// Resolve derives the sample format from Bits Allocated and Pixel Representation.
// Signed 8-bit data is decoded as unsigned bytes.
func Resolve(bitsAllocated, pixelRepresentation int) (Format, error) {
	switch {
	case bitsAllocated <= 0:
		return 0, fmt.Errorf("%w: bits allocated %d", ErrUnsupportedFormat, bitsAllocated)
	case bitsAllocated <= 8:
		return Uint8, nil
	case bitsAllocated <= 16:
		if pixelRepresentation != 0 {
			return Int16, nil
		}
		return Uint16, nil
	default:
		return 0, fmt.Errorf("%w: bits allocated %d", ErrUnsupportedFormat, bitsAllocated)
	}
}
