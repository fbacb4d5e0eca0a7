package speakerid

import "math"

// Cosine computes cosine similarity between two vectors. The second return
// value is false when the vectors are empty, mismatched, or zero-norm.
func Cosine(lhs, rhs []float32) (float32, bool) {
	if len(lhs) != len(rhs) || len(lhs) == 0 {
		return 0, false
	}

	var dot, lhsNorm, rhsNorm float64
	for i := range lhs {
		left := float64(lhs[i])
		right := float64(rhs[i])
		dot += left * right
		lhsNorm += left * left
		rhsNorm += right * right
	}

	denominator := math.Sqrt(lhsNorm) * math.Sqrt(rhsNorm)
	if denominator <= 0 {
		return 0, false
	}
	return float32(dot / denominator), true
}
