// Package colorspace converts decoded color samples into RGBA display
// buffers.
package colorspace

import (
	"fmt"
	"strings"

	"github.com/cocosip/go-dicom-imageloader/codec"
)

// Photometric is a supported photometric interpretation
type Photometric int

// Supported interpretations
const (
	Monochrome1 Photometric = iota + 1
	Monochrome2
	RGB
	YBRFull
	YBRFull422
	YBRRCT
	YBRICT
	PaletteColor
)

var photometricNames = map[Photometric]string{
	Monochrome1:  "MONOCHROME1",
	Monochrome2:  "MONOCHROME2",
	RGB:          "RGB",
	YBRFull:      "YBR_FULL",
	YBRFull422:   "YBR_FULL_422",
	YBRRCT:       "YBR_RCT",
	YBRICT:       "YBR_ICT",
	PaletteColor: "PALETTE COLOR",
}

// ParsePhotometric maps a Photometric Interpretation value to its enum.
// Surrounding padding is ignored.
func ParsePhotometric(s string) (Photometric, error) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	for p, name := range photometricNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", codec.ErrUnsupportedColorSpace, s)
}

func (p Photometric) String() string {
	if name, ok := photometricNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Photometric(%d)", int(p))
}

// IsColor reports whether frames of this interpretation go through Convert
func (p Photometric) IsColor() bool {
	return p != Monochrome1 && p != Monochrome2 && p != 0
}

// IsYBR reports whether samples are YCbCr and need the RGB transform
func (p Photometric) IsYBR() bool {
	return p == YBRFull || p == YBRFull422
}

// SamplesPerPixel returns the number of stored samples per pixel
func (p Photometric) SamplesPerPixel() int {
	switch p {
	case Monochrome1, Monochrome2, PaletteColor:
		return 1
	default:
		return 3
	}
}
