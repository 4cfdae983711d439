package pixel

import (
	"encoding/binary"
	"fmt"
)

// Buffer is a decoded sample buffer. Exactly one of U8, U16 or I16 is
// populated, selected by Format.
type Buffer struct {
	Format Format
	U8     []uint8
	U16    []uint16
	I16    []int16
}

// NewBuffer allocates a zeroed buffer of n samples
func NewBuffer(format Format, n int) Buffer {
	b := Buffer{Format: format}
	switch format {
	case Uint8:
		b.U8 = make([]uint8, n)
	case Uint16:
		b.U16 = make([]uint16, n)
	case Int16:
		b.I16 = make([]int16, n)
	}
	return b
}

// FromBytes copies raw sample bytes into a new buffer.
// Trailing bytes that do not form a whole sample are ignored.
func FromBytes(format Format, raw []byte, order binary.ByteOrder) Buffer {
	if format == Uint8 {
		b := NewBuffer(Uint8, len(raw))
		copy(b.U8, raw)
		return b
	}

	n := len(raw) / 2
	b := NewBuffer(format, n)
	for i := 0; i < n; i++ {
		v := order.Uint16(raw[i*2:])
		if format == Int16 {
			b.I16[i] = int16(v)
		} else {
			b.U16[i] = v
		}
	}
	return b
}

// Len returns the number of samples
func (b Buffer) Len() int {
	switch b.Format {
	case Uint8:
		return len(b.U8)
	case Uint16:
		return len(b.U16)
	case Int16:
		return len(b.I16)
	}
	return 0
}

// At returns sample i widened to int32
func (b Buffer) At(i int) int32 {
	switch b.Format {
	case Uint8:
		return int32(b.U8[i])
	case Uint16:
		return int32(b.U16[i])
	default:
		return int32(b.I16[i])
	}
}

// Set stores v at sample i, truncating to the buffer's width
func (b Buffer) Set(i int, v int32) {
	switch b.Format {
	case Uint8:
		b.U8[i] = uint8(v)
	case Uint16:
		b.U16[i] = uint16(v)
	default:
		b.I16[i] = int16(v)
	}
}

// MinMax scans the buffer once and returns the smallest and largest sample.
// An empty buffer yields (0, 0).
func (b Buffer) MinMax() (lo, hi int32) {
	switch b.Format {
	case Uint8:
		return minMax(b.U8)
	case Uint16:
		return minMax(b.U16)
	default:
		return minMax(b.I16)
	}
}

func minMax[T uint8 | uint16 | int16](s []T) (int32, int32) {
	if len(s) == 0 {
		return 0, 0
	}
	lo, hi := s[0], s[0]
	for _, v := range s[1:] {
		if v < lo {
			lo = v
		} else if v > hi {
			hi = v
		}
	}
	return int32(lo), int32(hi)
}

// Convert returns the samples re-typed to format. 16-bit unsigned samples
// converted to Int16 are sign-extended from bitsStored, so a 12-bit two's
// complement value stored in a uint16 becomes a negative int16.
func (b Buffer) Convert(format Format, bitsStored int) (Buffer, error) {
	if b.Format == format {
		return b, nil
	}
	n := b.Len()
	out := NewBuffer(format, n)

	switch {
	case format == Int16:
		if bitsStored <= 0 || bitsStored > 16 {
			bitsStored = 16
		}
		shift := 32 - bitsStored
		for i := 0; i < n; i++ {
			out.I16[i] = int16((b.At(i) << shift) >> shift)
		}
	case format == Uint8 && b.Format != Uint8:
		return Buffer{}, fmt.Errorf("%w: cannot narrow %s to %s", ErrUnsupportedFormat, b.Format, format)
	default:
		for i := 0; i < n; i++ {
			out.Set(i, b.At(i))
		}
	}
	return out, nil
}
