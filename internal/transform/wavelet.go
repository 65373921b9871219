package transform

import (
	"math"

	"vclab/internal/numeric"
)

// Haar performs one level of the orthogonal two-tap (db1) wavelet
// decomposition with stride 2:
//
//	approx[i] = (x[2i] + x[2i+1]) / sqrt(2)
//	detail[i] = (x[2i] - x[2i+1]) / sqrt(2)
func Haar(signal []float64) (approx, detail []float64, err error) {
	n := len(signal)
	if n == 0 {
		return nil, nil, numeric.InvalidInputf("wavelet decomposition needs at least 2 samples")
	}
	if n%2 != 0 {
		return nil, nil, numeric.ShapeMismatchf("wavelet decomposition needs an even number of samples, got %d", n)
	}

	half := n / 2
	approx = make([]float64, half)
	detail = make([]float64, half)
	for i := 0; i < half; i += 1 {
		a, b := signal[2*i], signal[2*i+1]
		approx[i] = (a + b) / math.Sqrt2
		detail[i] = (a - b) / math.Sqrt2
	}
	return approx, detail, nil
}

// InverseHaar reconstructs the signal decomposed by Haar.
func InverseHaar(approx, detail []float64) ([]float64, error) {
	if len(approx) != len(detail) {
		return nil, numeric.ShapeMismatchf("approximation has %d coefficients, detail has %d", len(approx), len(detail))
	}
	out := make([]float64, 2*len(approx))
	for i := range approx {
		out[2*i] = (approx[i] + detail[i]) / math.Sqrt2
		out[2*i+1] = (approx[i] - detail[i]) / math.Sqrt2
	}
	return out, nil
}
