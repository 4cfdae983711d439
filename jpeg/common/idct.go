package common

// Constants for the integer IDCT (scaled by 2048)
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)

	r2 = 181 // 256/sqrt(2)
)

// IDCT performs the inverse DCT of a dequantized 8x8 block in natural order
// and writes level-shifted samples, clamped to the range of precision bits,
// into dst with the given row stride. Rows or columns whose AC terms are all
// zero take a constant fast path.
func IDCT(block *[64]int32, dst []uint16, stride int, precision int) {
	idct(block, dst, stride, precision, true)
}

func idct(block *[64]int32, dst []uint16, stride int, precision int, shortcut bool) {
	var tmp [64]int64

	center := int64(1) << uint(precision-1)
	maxVal := int64(1)<<uint(precision) - 1

	// 1D IDCT on rows
	for y := 0; y < 8; y++ {
		row := y * 8
		c := block[row : row+8]

		if shortcut && c[1] == 0 && c[2] == 0 && c[3] == 0 &&
			c[4] == 0 && c[5] == 0 && c[6] == 0 && c[7] == 0 {
			dc := int64(c[0]) << 3
			for i := 0; i < 8; i++ {
				tmp[row+i] = dc
			}
			continue
		}

		x0 := (int64(c[0]) << 11) + 128
		x1 := int64(c[4]) << 11
		x2 := int64(c[6])
		x3 := int64(c[2])
		x4 := int64(c[1])
		x5 := int64(c[7])
		x6 := int64(c[5])
		x7 := int64(c[3])

		x0, x1, x2, x3, x4, x5, x6, x7 = butterfly(x0, x1, x2, x3, x4, x5, x6, x7)

		tmp[row+0] = (x7 + x1) >> 8
		tmp[row+1] = (x3 + x2) >> 8
		tmp[row+2] = (x0 + x4) >> 8
		tmp[row+3] = (x5 + x6) >> 8
		tmp[row+4] = (x5 - x6) >> 8
		tmp[row+5] = (x0 - x4) >> 8
		tmp[row+6] = (x3 - x2) >> 8
		tmp[row+7] = (x7 - x1) >> 8
	}

	clamp := func(v int64) uint16 {
		v += center
		if v < 0 {
			return 0
		}
		if v > maxVal {
			return uint16(maxVal)
		}
		return uint16(v)
	}

	// 1D IDCT on columns
	for x := 0; x < 8; x++ {
		if shortcut && tmp[8+x] == 0 && tmp[16+x] == 0 && tmp[24+x] == 0 &&
			tmp[32+x] == 0 && tmp[40+x] == 0 && tmp[48+x] == 0 && tmp[56+x] == 0 {
			v := clamp((tmp[x] + 32) >> 6)
			for y := 0; y < 8; y++ {
				dst[y*stride+x] = v
			}
			continue
		}

		x0 := (tmp[0+x] << 8) + 8192
		x1 := tmp[32+x] << 8
		x2 := tmp[48+x]
		x3 := tmp[16+x]
		x4 := tmp[8+x]
		x5 := tmp[56+x]
		x6 := tmp[40+x]
		x7 := tmp[24+x]

		x0, x1, x2, x3, x4, x5, x6, x7 = butterfly(x0, x1, x2, x3, x4, x5, x6, x7)

		dst[0*stride+x] = clamp((x7 + x1) >> 14)
		dst[1*stride+x] = clamp((x3 + x2) >> 14)
		dst[2*stride+x] = clamp((x0 + x4) >> 14)
		dst[3*stride+x] = clamp((x5 + x6) >> 14)
		dst[4*stride+x] = clamp((x5 - x6) >> 14)
		dst[5*stride+x] = clamp((x0 - x4) >> 14)
		dst[6*stride+x] = clamp((x3 - x2) >> 14)
		dst[7*stride+x] = clamp((x7 - x1) >> 14)
	}
}

// butterfly runs the three Chen-Wang stages shared by the row and column
// passes. The stage-three x8 term comes back in the x5 slot.
func butterfly(x0, x1, x2, x3, x4, x5, x6, x7 int64) (int64, int64, int64, int64, int64, int64, int64, int64) {
	// First stage
	x8 := w7 * (x4 + x5)
	x4 = x8 + (w1-w7)*x4
	x5 = x8 - (w1+w7)*x5
	x8 = w3 * (x6 + x7)
	x6 = x8 - (w3-w5)*x6
	x7 = x8 - (w3+w5)*x7

	// Second stage
	x8 = x0 + x1
	x0 -= x1
	x1 = w6 * (x3 + x2)
	x2 = x1 - (w2+w6)*x2
	x3 = x1 + (w2-w6)*x3
	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	// Third stage
	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2
	x2 = (r2*(x4+x5) + 128) >> 8
	x4 = (r2*(x4-x5) + 128) >> 8

	return x0, x1, x2, x3, x4, x8, x6, x7
}
