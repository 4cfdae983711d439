// Package jpegtest builds JPEG streams for decoder tests.
package jpegtest

import "github.com/cocosip/go-dicom-imageloader/jpeg/common"

// BitWriter accumulates entropy-coded bits, stuffing a zero byte after
// every 0xFF it emits
type BitWriter struct {
	buf []byte
	acc uint32
	n   int
}

// WriteBits appends the low n bits of v, MSB first
func (w *BitWriter) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (v>>uint(i))&1
		w.n++
		if w.n == 8 {
			w.emit(byte(w.acc))
			w.acc, w.n = 0, 0
		}
	}
}

func (w *BitWriter) emit(b byte) {
	w.buf = append(w.buf, b)
	if b == 0xFF {
		w.buf = append(w.buf, 0x00)
	}
}

// WriteCode appends a Huffman code
func (w *BitWriter) WriteCode(c common.HuffmanCode) {
	w.WriteBits(uint32(c.Code), c.Length)
}

// WriteValue appends the Huffman code for the category of v followed by its magnitude bits
func (w *BitWriter) WriteValue(codes map[byte]common.HuffmanCode, v int32) {
	s, bits := Magnitude(v)
	w.WriteCode(codes[byte(s)])
	w.WriteBits(bits, s)
}

// Flush pads the last byte with one bits and returns the segment
func (w *BitWriter) Flush() []byte {
	if w.n > 0 {
		pad := 8 - w.n
		w.WriteBits(1<<uint(pad)-1, pad)
	}
	out := w.buf
	w.buf = nil
	return out
}

// Magnitude returns the JPEG size category of v and its additional bits
func Magnitude(v int32) (int, uint32) {
	a := v
	if a < 0 {
		a = -a
	}
	s := 0
	for a > 0 {
		s++
		a >>= 1
	}
	if v < 0 {
		v += 1<<uint(s) - 1
	}
	return s, uint32(v) & (1<<uint(s) - 1)
}
