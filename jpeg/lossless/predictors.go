package lossless

// JPEG Lossless defines 7 predictors.
// Ra = left sample, Rb = above sample, Rc = above-left sample

// Predictor returns the prediction of selection value 1-7
func Predictor(selection int, ra, rb, rc int32) int32 {
	switch selection {
	case 1:
		return ra
	case 2:
		return rb
	case 3:
		return rc
	case 4:
		return ra + rb - rc
	case 5:
		return ra + ((rb - rc) >> 1)
	case 6:
		return rb + ((ra - rc) >> 1)
	case 7:
		return (ra + rb) >> 1
	default:
		return ra
	}
}

// PredictorName returns the human-readable name for a predictor
func PredictorName(selection int) string {
	switch selection {
	case 1:
		return "Left (Ra)"
	case 2:
		return "Above (Rb)"
	case 3:
		return "Above-Left (Rc)"
	case 4:
		return "Ra + Rb - Rc"
	case 5:
		return "Ra + ((Rb - Rc) >> 1)"
	case 6:
		return "Rb + ((Ra - Rc) >> 1)"
	case 7:
		return "(Ra + Rb) / 2"
	default:
		return "Unknown"
	}
}
