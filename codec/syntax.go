package codec

// Transfer syntax UIDs recognized by the pixel data dispatcher
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
	RLELossless                    = "1.2.840.10008.1.2.5"
	JPEGBaseline8Bit               = "1.2.840.10008.1.2.4.50"
	JPEGExtended12Bit              = "1.2.840.10008.1.2.4.51"
	JPEGProgressive                = "1.2.840.10008.1.2.4.55"
	JPEGLossless                   = "1.2.840.10008.1.2.4.57"
	JPEGLosslessSV1                = "1.2.840.10008.1.2.4.70"
	JPEGLSLossless                 = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless             = "1.2.840.10008.1.2.4.81"
	JPEG2000Lossless               = "1.2.840.10008.1.2.4.90"
	JPEG2000                       = "1.2.840.10008.1.2.4.91"
)

// SyntaxName returns a short name for a known transfer syntax UID, or the UID itself
func SyntaxName(uid string) string {
	switch uid {
	case ImplicitVRLittleEndian:
		return "implicit-vr-little-endian"
	case ExplicitVRLittleEndian:
		return "explicit-vr-little-endian"
	case DeflatedExplicitVRLittleEndian:
		return "deflated-explicit-vr-little-endian"
	case ExplicitVRBigEndian:
		return "explicit-vr-big-endian"
	case RLELossless:
		return "rle-lossless"
	case JPEGBaseline8Bit:
		return "jpeg-baseline"
	case JPEGExtended12Bit:
		return "jpeg-extended"
	case JPEGProgressive:
		return "jpeg-progressive"
	case JPEGLossless:
		return "jpeg-lossless"
	case JPEGLosslessSV1:
		return "jpeg-lossless-sv1"
	case JPEGLSLossless:
		return "jpeg-ls-lossless"
	case JPEGLSNearLossless:
		return "jpeg-ls-near-lossless"
	case JPEG2000Lossless:
		return "jpeg2000-lossless"
	case JPEG2000:
		return "jpeg2000"
	default:
		return uid
	}
}

// IsKnownSyntax reports whether uid is one of the transfer syntaxes above
func IsKnownSyntax(uid string) bool {
	return SyntaxName(uid) != uid
}
