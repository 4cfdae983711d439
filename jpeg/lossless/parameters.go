package lossless

import "github.com/cocosip/go-dicom-imageloader/pixel"

// Options configures Decode
type Options struct {
	// T81Boundaries predicts the first sample of each line and the first
	// line of each restart interval as ITU-T T.81 H.1.2.1 specifies: the
	// sample above on column 0 and the sample to the left on the first
	// line. When false every unavailable neighbour is replaced by the
	// half-range constant 1<<(P-Pt-1) and the selected predictor still runs.
	T81Boundaries bool
}

// DefaultOptions returns the options used when Decode is passed nil
func DefaultOptions() Options {
	return Options{}
}

// Image is a decoded lossless frame
type Image struct {
	Width          int
	Height         int
	Components     int
	Precision      int // 2-16
	Selection      int // Predictor of the last scan
	PointTransform int
	// Samples holds pixel-interleaved output, already shifted left by the
	// point transform: Uint8 for P <= 8, Uint16 otherwise
	Samples pixel.Buffer
}
