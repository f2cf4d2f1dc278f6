package chladni

// DefaultAlpha is the weight given to the newest frame.
const DefaultAlpha = 0.15

// Smooth folds raw into prev in place: prev[i] = α·raw[i] + (1-α)·prev[i].
// It is written as a step towards raw so equal inputs leave prev bit-exact.
func Smooth(prev, raw []float64, alpha float64) {
	for i := range prev {
		prev[i] += alpha * (raw[i] - prev[i])
	}
}

// ResetWeights zeroes w without reallocating.
func ResetWeights(w []float64) {
	clear(w)
}
