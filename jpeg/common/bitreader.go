package common

// BitReader reads an entropy-coded segment MSB first. A stuffed 0xFF 0x00
// pair yields a literal 0xFF. Any other byte after 0xFF is a marker: the
// reader stops in front of it and supplies zero bits from then on, as it
// does at the end of the buffer.
type BitReader struct {
	data []byte
	pos  int

	acc   uint32 // Bit buffer, valid bits are the low nBits
	nBits int
	pad   int // Zero bits appended past the end of real data

	marker Marker // Marker that terminated the segment, 0 if none seen yet
}

// NewBitReader starts reading data at offset
func NewBitReader(data []byte, offset int) *BitReader {
	return &BitReader{data: data, pos: offset}
}

// Offset returns the position of the first byte not loaded into the bit
// buffer. Once a marker has been reached this is the position of its 0xFF.
func (b *BitReader) Offset() int {
	return b.pos
}

// Marker returns the marker that ended the segment, or 0
func (b *BitReader) Marker() Marker {
	return b.marker
}

// Overrun reports whether padding bits beyond the segment have been consumed
func (b *BitReader) Overrun() bool {
	return b.pad > b.nBits
}

func (b *BitReader) nextByte() (byte, bool) {
	if b.marker != 0 || b.pos >= len(b.data) {
		return 0, false
	}
	c := b.data[b.pos]
	if c != 0xFF {
		b.pos++
		return c, true
	}
	if b.pos+1 >= len(b.data) {
		b.pos = len(b.data)
		return 0, false
	}
	switch next := b.data[b.pos+1]; next {
	case 0x00:
		b.pos += 2
		return 0xFF, true
	case 0xFF:
		// Fill byte before a marker
		b.pos++
		return b.nextByte()
	default:
		b.marker = Marker(0xFF00 | uint16(next))
		return 0, false
	}
}

// fill loads bytes until at least 25 bits are buffered
func (b *BitReader) fill() {
	for b.nBits <= 24 {
		c, ok := b.nextByte()
		if !ok {
			b.pad += 8
		}
		b.acc = b.acc<<8 | uint32(c)
		b.nBits += 8
	}
}

// peek16 returns the next 16 bits without consuming them
func (b *BitReader) peek16() uint32 {
	if b.nBits < 16 {
		b.fill()
	}
	return (b.acc >> uint(b.nBits-16)) & 0xFFFF
}

func (b *BitReader) consume(n int) {
	b.nBits -= n
	b.acc &= (1 << uint(b.nBits)) - 1
}

// ReadBit reads a single bit
func (b *BitReader) ReadBit() uint32 {
	if b.nBits == 0 {
		b.fill()
	}
	b.nBits--
	bit := (b.acc >> uint(b.nBits)) & 1
	b.acc &= (1 << uint(b.nBits)) - 1
	return bit
}

// ReadBits reads n bits (n <= 16) as an unsigned integer
func (b *BitReader) ReadBits(n int) uint32 {
	if n == 0 {
		return 0
	}
	if b.nBits < n {
		b.fill()
	}
	b.nBits -= n
	v := (b.acc >> uint(b.nBits)) & ((1 << uint(n)) - 1)
	b.acc &= (1 << uint(b.nBits)) - 1
	return v
}

// ReceiveExtend reads s bits and sign-extends them (JPEG RECEIVE + EXTEND)
func (b *BitReader) ReceiveExtend(s int) int32 {
	if s == 0 {
		return 0
	}
	v := int32(b.ReadBits(s))
	if v < 1<<uint(s-1) {
		v += -1<<uint(s) + 1
	}
	return v
}

// Decode reads one Huffman symbol
func (b *BitReader) Decode(t *HuffmanTable) (byte, error) {
	code := b.peek16()
	e := t.first[code>>8]
	if e.length > 0 {
		b.consume(int(e.length))
		return e.value, nil
	}
	if e.sub == 0 {
		return 0, ErrHuffmanDecode
	}
	e = t.second[e.sub-1][code&0xFF]
	if e.length == 0 {
		return 0, ErrHuffmanDecode
	}
	b.consume(8 + int(e.length))
	return e.value, nil
}

// Restart discards buffered bits and consumes the RSTn marker that must
// follow the current restart interval.
func (b *BitReader) Restart() error {
	b.acc, b.nBits, b.pad = 0, 0, 0
	if b.marker == 0 {
		// The interval ended on a byte boundary before the marker was loaded
		for b.pos+1 < len(b.data) {
			if b.data[b.pos] == 0xFF && b.data[b.pos+1] != 0x00 && b.data[b.pos+1] != 0xFF {
				b.marker = Marker(0xFF00 | uint16(b.data[b.pos+1]))
				break
			}
			b.pos++
		}
	}
	if !b.marker.IsRST() {
		return ErrMissingRestart
	}
	b.pos += 2
	b.marker = 0
	return nil
}
