// Package rle decodes DICOM RLE Lossless frames (PS3.5 Annex G).
package rle

import (
	"encoding/binary"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/pixel"
)

const (
	headerSize  = 64
	maxSegments = 15
)

// Info describes the frame being decoded
type Info struct {
	Width           int
	Height          int
	SamplesPerPixel int
	Format          pixel.Format
	// Planar requests plane-by-plane output (Planar Configuration 1)
	// instead of pixel-interleaved samples
	Planar bool
}

// Decode reconstructs the samples of one RLE frame. Each segment holds one
// byte plane: for 8-bit data segment s is component s, for 16-bit data
// segments 2c and 2c+1 are the high and low bytes of component c. Runs that
// extend past the end of the frame are truncated.
func Decode(frame []byte, info Info) (pixel.Buffer, error) {
	if len(frame) < headerSize {
		return pixel.Buffer{}, codec.Malformed("RLE frame shorter than header (%d bytes)", len(frame))
	}

	bytesPerSample := info.Format.BytesPerSample()
	numSegments := int(binary.LittleEndian.Uint32(frame))
	if numSegments < 1 || numSegments > maxSegments {
		return pixel.Buffer{}, codec.Malformed("RLE segment count %d", numSegments)
	}
	if want := info.SamplesPerPixel * bytesPerSample; numSegments != want {
		return pixel.Buffer{}, codec.Malformed("RLE segment count %d, want %d for %d samples of %d bytes",
			numSegments, want, info.SamplesPerPixel, bytesPerSample)
	}

	var offsets [maxSegments + 1]int
	for i := 0; i < numSegments; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(frame[4+i*4:]))
	}

	numPixels := info.Width * info.Height
	out := make([]byte, numPixels*numSegments)

	for seg := 0; seg < numSegments; seg++ {
		start := offsets[seg]
		end := len(frame)
		if seg+1 < numSegments && offsets[seg+1] != 0 {
			end = offsets[seg+1]
		}
		if start < headerSize || start > end || end > len(frame) {
			return pixel.Buffer{}, codec.Malformed("RLE segment %d spans [%d, %d) of %d bytes", seg, start, end, len(frame))
		}

		pos, step := placement(seg, numPixels, info, bytesPerSample)
		if n := unpackSegment(frame[start:end], out, pos, step, numPixels); n < numPixels {
			return pixel.Buffer{}, codec.Malformed("RLE segment %d holds %d of %d bytes", seg, n, numPixels)
		}
	}

	return toBuffer(out, info.Format), nil
}

// placement returns where a segment's first byte lands in the little-endian
// output and the distance between consecutive bytes of the segment
func placement(seg, numPixels int, info Info, bytesPerSample int) (pos, step int) {
	component := seg / bytesPerSample
	// Segment order is most significant byte first
	byteInSample := bytesPerSample - 1 - seg%bytesPerSample

	if info.Planar {
		return component*numPixels*bytesPerSample + byteInSample, bytesPerSample
	}
	return component*bytesPerSample + byteInSample, info.SamplesPerPixel * bytesPerSample
}

// unpackSegment expands one PackBits segment into out and returns the
// number of bytes written. Output past n bytes is dropped.
func unpackSegment(src, out []byte, pos, step, n int) int {
	written := 0
	i := 0
	for i < len(src) && written < n {
		h := int8(src[i])
		i++
		switch {
		case h >= 0:
			count := int(h) + 1
			for j := 0; j < count && i < len(src) && written < n; j++ {
				out[pos] = src[i]
				pos += step
				i++
				written++
			}
		case h != -128:
			if i >= len(src) {
				return written
			}
			b := src[i]
			i++
			for j := 0; j < 1-int(h) && written < n; j++ {
				out[pos] = b
				pos += step
				written++
			}
		}
	}
	return written
}

func toBuffer(raw []byte, format pixel.Format) pixel.Buffer {
	if format == pixel.Uint8 {
		return pixel.Buffer{Format: format, U8: raw}
	}
	return pixel.FromBytes(format, raw, binary.LittleEndian)
}
