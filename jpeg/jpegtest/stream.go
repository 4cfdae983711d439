package jpegtest

import "github.com/cocosip/go-dicom-imageloader/jpeg/common"

// Stream assembles markers and segments
type Stream struct {
	buf []byte
}

// Marker appends a bare marker
func (s *Stream) Marker(m common.Marker) *Stream {
	s.buf = append(s.buf, byte(m>>8), byte(m))
	return s
}

// Segment appends a marker with a length-prefixed payload
func (s *Stream) Segment(m common.Marker, payload ...byte) *Stream {
	n := len(payload) + 2
	s.buf = append(s.buf, byte(m>>8), byte(m), byte(n>>8), byte(n))
	s.buf = append(s.buf, payload...)
	return s
}

// Raw appends bytes verbatim
func (s *Stream) Raw(p []byte) *Stream {
	s.buf = append(s.buf, p...)
	return s
}

// DHT appends a Huffman table definition
func (s *Stream) DHT(class, id int, spec common.TableSpec) *Stream {
	payload := []byte{byte(class<<4 | id)}
	for _, n := range spec.Bits {
		payload = append(payload, byte(n))
	}
	payload = append(payload, spec.Values...)
	return s.Segment(common.MarkerDHT, payload...)
}

// DQT appends an 8-bit quantization table given in natural order
func (s *Stream) DQT(id int, table [64]uint8) *Stream {
	payload := []byte{byte(id)}
	for k := 0; k < 64; k++ {
		payload = append(payload, table[common.ZigZag[k]])
	}
	return s.Segment(common.MarkerDQT, payload...)
}

// Component is a frame component definition
type Component struct {
	ID, H, V, Tq int
}

// SOF appends a frame header
func (s *Stream) SOF(m common.Marker, precision, width, height int, comps ...Component) *Stream {
	payload := []byte{byte(precision), byte(height >> 8), byte(height), byte(width >> 8), byte(width), byte(len(comps))}
	for _, c := range comps {
		payload = append(payload, byte(c.ID), byte(c.H<<4|c.V), byte(c.Tq))
	}
	return s.Segment(m, payload...)
}

// ScanComponent selects a component and its DC/AC tables for a scan
type ScanComponent struct {
	ID, Td, Ta int
}

// SOS appends a scan header
func (s *Stream) SOS(ss, se, ah, al int, comps ...ScanComponent) *Stream {
	payload := []byte{byte(len(comps))}
	for _, c := range comps {
		payload = append(payload, byte(c.ID), byte(c.Td<<4|c.Ta))
	}
	payload = append(payload, byte(ss), byte(se), byte(ah<<4|al))
	return s.Segment(common.MarkerSOS, payload...)
}

// DRI appends a restart interval definition
func (s *Stream) DRI(interval int) *Stream {
	return s.Segment(common.MarkerDRI, byte(interval>>8), byte(interval))
}

// Bytes returns the assembled stream
func (s *Stream) Bytes() []byte {
	return s.buf
}
