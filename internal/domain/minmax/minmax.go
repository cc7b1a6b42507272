// Package minmax rescales a batch of values linearly onto a target range
// using the batch's observed minimum and maximum.
package minmax

import "math"

// Scale maps values onto [lo, hi]. Non-finite inputs are treated as 0 and
// outputs are clamped to the bounds to absorb rounding at the extremes. When
// every value is equal the range is zero and every output is lo; zeroRange
// reports that case.
func Scale(values []float64, lo, hi float64) (scaled []float64, zeroRange bool) {
	scaled = make([]float64, len(values))
	if len(values) == 0 {
		return scaled, false
	}

	xs := make([]float64, len(values))
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		xs[i] = v
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	dataRange := maxV - minV
	if dataRange == 0 || math.IsInf(dataRange, 0) {
		for i := range scaled {
			scaled[i] = lo
		}
		return scaled, true
	}

	// x*scale + offset, the same affine form a fitted scaler applies
	scale := (hi - lo) / dataRange
	offset := lo - minV*scale
	for i, x := range xs {
		scaled[i] = math.Min(hi, math.Max(lo, x*scale+offset))
	}
	return scaled, false
}

// Unit maps values onto [0, 1].
func Unit(values []float64) ([]float64, bool) {
	return Scale(values, 0, 1)
}
