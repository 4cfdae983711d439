package common

import "fmt"

// Marker is a two-byte JPEG marker code (0xFFxx)
type Marker uint16

// JPEG marker constants
const (
	MarkerSOI Marker = 0xFFD8 // Start of Image
	MarkerEOI Marker = 0xFFD9 // End of Image

	MarkerSOF0  Marker = 0xFFC0 // Baseline DCT
	MarkerSOF1  Marker = 0xFFC1 // Extended Sequential DCT
	MarkerSOF2  Marker = 0xFFC2 // Progressive DCT
	MarkerSOF3  Marker = 0xFFC3 // Lossless (Sequential)
	MarkerSOF5  Marker = 0xFFC5 // Differential Sequential DCT
	MarkerSOF7  Marker = 0xFFC7 // Differential Lossless
	MarkerSOF9  Marker = 0xFFC9 // Extended Sequential DCT, Arithmetic coding
	MarkerSOF15 Marker = 0xFFCF // Differential Lossless, Arithmetic coding

	MarkerDHT Marker = 0xFFC4 // Define Huffman Table
	MarkerDAC Marker = 0xFFCC // Define Arithmetic Coding conditioning
	MarkerDQT Marker = 0xFFDB // Define Quantization Table
	MarkerDRI Marker = 0xFFDD // Define Restart Interval
	MarkerDNL Marker = 0xFFDC // Define Number of Lines
	MarkerSOS Marker = 0xFFDA // Start of Scan

	MarkerAPP0  Marker = 0xFFE0
	MarkerAPP14 Marker = 0xFFEE // Adobe
	MarkerAPP15 Marker = 0xFFEF
	MarkerCOM   Marker = 0xFFFE

	MarkerRST0 Marker = 0xFFD0
	MarkerRST7 Marker = 0xFFD7
)

// IsSOF returns true for any Start of Frame marker (SOF0-SOF15 minus DHT, JPG and DAC)
func (m Marker) IsSOF() bool {
	return m >= MarkerSOF0 && m <= MarkerSOF15 &&
		m != MarkerDHT && m != 0xFFC8 && m != MarkerDAC
}

// IsRST returns true if the marker is a Restart marker
func (m Marker) IsRST() bool {
	return m >= MarkerRST0 && m <= MarkerRST7
}

// IsAPP returns true for APP0-APP15
func (m Marker) IsAPP() bool {
	return m >= MarkerAPP0 && m <= MarkerAPP15
}

// HasLength returns true if the marker is followed by a length field
func (m Marker) HasLength() bool {
	return m != MarkerSOI && m != MarkerEOI && !m.IsRST() && m != 0xFF01
}

func (m Marker) String() string {
	switch {
	case m == MarkerSOI:
		return "SOI"
	case m == MarkerEOI:
		return "EOI"
	case m == MarkerDHT:
		return "DHT"
	case m == MarkerDQT:
		return "DQT"
	case m == MarkerDRI:
		return "DRI"
	case m == MarkerSOS:
		return "SOS"
	case m == MarkerCOM:
		return "COM"
	case m.IsSOF():
		return fmt.Sprintf("SOF%d", int(m-MarkerSOF0))
	case m.IsRST():
		return fmt.Sprintf("RST%d", int(m-MarkerRST0))
	case m.IsAPP():
		return fmt.Sprintf("APP%d", int(m-MarkerAPP0))
	default:
		return fmt.Sprintf("0x%04X", uint16(m))
	}
}
