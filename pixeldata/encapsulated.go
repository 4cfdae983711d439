package pixeldata

import (
	"bytes"

	"github.com/cocosip/go-dicom-imageloader/codec"
)

// itemHeaderSize is the tag and length preceding every fragment item
const itemHeaderSize = 8

// PixelDataElement is the value of (7FE0,0010). Native pixel data is a
// single byte range; encapsulated pixel data is a list of fragments, with
// the basic offset table split off.
type PixelDataElement struct {
	Native      []byte
	Fragments   [][]byte
	OffsetTable []uint32 // Byte offsets of each frame's first fragment item
}

// Encapsulated reports whether the element holds fragments
func (p *PixelDataElement) Encapsulated() bool {
	return p.Native == nil && len(p.Fragments) > 0
}

// EncapsulatedFrame returns the compressed bytes of frame index. With one
// fragment per frame the fragment is the frame. Otherwise frames are
// located by the basic offset table when it holds one entry per frame, by
// joining all fragments of a single-frame object, and finally by splitting
// the fragments after each one ending in a JPEG EOI marker. Tables with any
// other number of entries (some writers emit one per fragment) are ignored.
func (p *PixelDataElement) EncapsulatedFrame(index, numberOfFrames int) ([]byte, error) {
	if numberOfFrames < 1 {
		numberOfFrames = 1
	}
	if index < 0 || index >= numberOfFrames {
		return nil, &codec.FrameOutOfRangeError{Index: index, Count: numberOfFrames}
	}
	if len(p.Fragments) == 0 {
		return nil, codec.Malformed("pixel data has no fragments")
	}

	switch {
	case numberOfFrames == len(p.Fragments):
		return p.Fragments[index], nil
	case len(p.OffsetTable) == numberOfFrames:
		return p.frameFromOffsetTable(index)
	case numberOfFrames == 1:
		return bytes.Join(p.Fragments, nil), nil
	default:
		return p.frameFromEOI(index)
	}
}

func (p *PixelDataElement) frameFromOffsetTable(index int) ([]byte, error) {
	if index >= len(p.OffsetTable) {
		return nil, &codec.FrameOutOfRangeError{Index: index, Count: len(p.OffsetTable)}
	}
	start := p.OffsetTable[index]
	end := ^uint32(0)
	if index+1 < len(p.OffsetTable) {
		end = p.OffsetTable[index+1]
	}

	var parts [][]byte
	pos := uint32(0)
	for _, f := range p.Fragments {
		if pos >= start && pos < end {
			parts = append(parts, f)
		}
		pos += itemHeaderSize + uint32(len(f))
	}
	if len(parts) == 0 {
		return nil, codec.Malformed("offset table entry %d (%d) matches no fragment", index, start)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return bytes.Join(parts, nil), nil
}

func (p *PixelDataElement) frameFromEOI(index int) ([]byte, error) {
	frame := 0
	first := 0
	for i, f := range p.Fragments {
		if !endsWithEOI(f) && i < len(p.Fragments)-1 {
			continue
		}
		if frame == index {
			return bytes.Join(p.Fragments[first:i+1], nil), nil
		}
		frame++
		first = i + 1
	}
	return nil, &codec.FrameOutOfRangeError{Index: index, Count: frame}
}

// endsWithEOI reports whether a fragment ends with FFD9, allowing for one
// trailing pad byte
func endsWithEOI(f []byte) bool {
	n := len(f)
	if n > 0 && f[n-1] == 0x00 {
		n--
	}
	return n >= 2 && f[n-2] == 0xFF && f[n-1] == 0xD9
}
