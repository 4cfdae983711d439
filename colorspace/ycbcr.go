package colorspace

// 16.16 fixed-point YCbCr (full range) to RGB coefficients
const (
	crToR = 91881  // 1.402
	cbToG = 22554  // 0.34414
	crToG = 46802  // 0.71414
	cbToB = 116130 // 1.772
)

// YCbCrToRGB converts one full-range YCbCr triple to RGB. maxVal is the
// largest sample value (255 for 8-bit data); chroma is centred on
// (maxVal+1)/2 and results are clamped to [0, maxVal].
func YCbCrToRGB(y, cb, cr, maxVal int32) (r, g, b int32) {
	center := int64(maxVal+1) >> 1
	yy := int64(y)
	u := int64(cb) - center
	v := int64(cr) - center

	r = clamp(yy+(crToR*v+32768)>>16, maxVal)
	g = clamp(yy-(cbToG*u+crToG*v+32768)>>16, maxVal)
	b = clamp(yy+(cbToB*u+32768)>>16, maxVal)
	return r, g, b
}

func clamp(v int64, maxVal int32) int32 {
	if v < 0 {
		return 0
	}
	if v > int64(maxVal) {
		return maxVal
	}
	return int32(v)
}
