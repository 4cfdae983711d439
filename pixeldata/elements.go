// Package pixeldata turns the pixel data of a parsed DICOM dataset into
// decoded frames. It reads image attributes through ElementMap, extracts
// one frame from native or encapsulated pixel data and dispatches it to the
// decoder registered for the transfer syntax.
package pixeldata

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is a DICOM attribute tag, group in the high 16 bits
type Tag uint32

// Attributes read by the decoder
const (
	TagTransferSyntaxUID         Tag = 0x00020010
	TagSamplesPerPixel           Tag = 0x00280002
	TagPhotometricInterpretation Tag = 0x00280004
	TagPlanarConfiguration       Tag = 0x00280006
	TagNumberOfFrames            Tag = 0x00280008
	TagRows                      Tag = 0x00280010
	TagColumns                   Tag = 0x00280011
	TagBitsAllocated             Tag = 0x00280100
	TagBitsStored                Tag = 0x00280101
	TagPixelRepresentation       Tag = 0x00280103
	TagRescaleIntercept          Tag = 0x00281052
	TagRescaleSlope              Tag = 0x00281053
	TagRedPaletteDescriptor      Tag = 0x00281101
	TagGreenPaletteDescriptor    Tag = 0x00281102
	TagBluePaletteDescriptor     Tag = 0x00281103
	TagRedPaletteData            Tag = 0x00281201
	TagGreenPaletteData          Tag = 0x00281202
	TagBluePaletteData           Tag = 0x00281203
	TagPixelData                 Tag = 0x7FE00010
)

func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", uint16(t>>16), uint16(t))
}

// ElementMap is the read access the decoder needs to a parsed dataset
type ElementMap interface {
	// Uint16 returns the first value of a US attribute
	Uint16(t Tag) (uint16, bool)
	// Int16 returns value index of a multi-valued US/SS attribute as signed
	Int16(t Tag, index int) (int16, bool)
	String(t Tag) (string, bool)
	// FloatString parses the first value of a DS or IS attribute
	FloatString(t Tag) (float64, bool)
	// Bytes returns the raw value of an OB/OW attribute
	Bytes(t Tag) ([]byte, bool)
	PixelData() (*PixelDataElement, bool)
}

// Elements is an in-memory ElementMap
type Elements struct {
	words     map[Tag][]uint16
	strings   map[Tag]string
	bytes     map[Tag][]byte
	pixelData *PixelDataElement
}

var _ ElementMap = (*Elements)(nil)

// NewElements creates an empty element map
func NewElements() *Elements {
	return &Elements{
		words:   make(map[Tag][]uint16),
		strings: make(map[Tag]string),
		bytes:   make(map[Tag][]byte),
	}
}

// SetUint16 stores the values of a US or SS attribute
func (e *Elements) SetUint16(t Tag, values ...uint16) *Elements {
	e.words[t] = values
	return e
}

// SetString stores a string attribute; multiple values are separated by a backslash
func (e *Elements) SetString(t Tag, s string) *Elements {
	e.strings[t] = s
	return e
}

// SetBytes stores an OB/OW attribute
func (e *Elements) SetBytes(t Tag, b []byte) *Elements {
	e.bytes[t] = b
	return e
}

// SetPixelData stores the pixel data element
func (e *Elements) SetPixelData(p *PixelDataElement) *Elements {
	e.pixelData = p
	return e
}

func (e *Elements) Uint16(t Tag) (uint16, bool) {
	v, ok := e.words[t]
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

func (e *Elements) Int16(t Tag, index int) (int16, bool) {
	v, ok := e.words[t]
	if !ok || index < 0 || index >= len(v) {
		return 0, false
	}
	return int16(v[index]), true
}

func (e *Elements) String(t Tag) (string, bool) {
	s, ok := e.strings[t]
	return s, ok
}

func (e *Elements) FloatString(t Tag) (float64, bool) {
	s, ok := e.strings[t]
	if !ok {
		return 0, false
	}
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (e *Elements) Bytes(t Tag) ([]byte, bool) {
	b, ok := e.bytes[t]
	return b, ok
}

func (e *Elements) PixelData() (*PixelDataElement, bool) {
	return e.pixelData, e.pixelData != nil
}
