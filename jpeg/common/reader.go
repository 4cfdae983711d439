package common

// Reader reads marker segments from an in-memory JPEG stream
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader positioned at the start of data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Data returns the underlying stream
func (r *Reader) Data() []byte {
	return r.data
}

// Offset returns the position of the next unread byte
func (r *Reader) Offset() int {
	return r.pos
}

// Seek moves to an absolute position
func (r *Reader) Seek(pos int) {
	r.pos = min(max(pos, 0), len(r.data))
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a big-endian 16-bit value
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v, nil
}

// ReadMarker reads the next marker, skipping 0xFF fill bytes
func (r *Reader) ReadMarker() (Marker, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, UnexpectedMarker(Marker(b))
	}
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			return Marker(0xFF00 | uint16(b)), nil
		}
	}
}

// NextMarker skips any bytes up to the next marker and reads it. Used after
// an entropy-coded segment, where trailing pad bytes may precede the marker.
func (r *Reader) NextMarker() (Marker, error) {
	for r.pos < len(r.data) {
		if r.data[r.pos] == 0xFF && r.pos+1 < len(r.data) {
			next := r.data[r.pos+1]
			if next != 0x00 && next != 0xFF {
				r.pos += 2
				return Marker(0xFF00 | uint16(next)), nil
			}
		}
		r.pos++
	}
	return 0, ErrUnexpectedEOF
}

// ReadSegment reads a length-prefixed segment and returns its payload
func (r *Reader) ReadSegment() ([]byte, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, ErrUnexpectedEOF
	}
	end := r.pos + int(n) - 2
	if end > len(r.data) {
		return nil, ErrUnexpectedEOF
	}
	seg := r.data[r.pos:end]
	r.pos = end
	return seg, nil
}
