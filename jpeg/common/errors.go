package common

import (
	"fmt"

	"github.com/cocosip/go-dicom-imageloader/codec"
)

// Stream errors. All of them match codec.ErrMalformedBitstream.
var (
	ErrInvalidSOI     = fmt.Errorf("%w: missing SOI marker", codec.ErrMalformedBitstream)
	ErrInvalidSOF     = fmt.Errorf("%w: invalid Start of Frame", codec.ErrMalformedBitstream)
	ErrInvalidDHT     = fmt.Errorf("%w: invalid Huffman table", codec.ErrMalformedBitstream)
	ErrInvalidDQT     = fmt.Errorf("%w: invalid quantization table", codec.ErrMalformedBitstream)
	ErrInvalidSOS     = fmt.Errorf("%w: invalid Start of Scan", codec.ErrMalformedBitstream)
	ErrInvalidDRI     = fmt.Errorf("%w: invalid restart interval", codec.ErrMalformedBitstream)
	ErrHuffmanDecode  = fmt.Errorf("%w: invalid Huffman code", codec.ErrMalformedBitstream)
	ErrUnexpectedEOF  = fmt.Errorf("%w: unexpected end of data", codec.ErrMalformedBitstream)
	ErrMissingRestart = fmt.Errorf("%w: expected restart marker", codec.ErrMalformedBitstream)
	ErrMissingTable   = fmt.Errorf("%w: scan references undefined table", codec.ErrMalformedBitstream)
)

// UnexpectedMarker reports a marker that is not valid in the decoder's current state
func UnexpectedMarker(m Marker) error {
	return fmt.Errorf("%w: unexpected marker %s", codec.ErrMalformedBitstream, m)
}
