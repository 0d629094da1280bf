package ai

import "math"

// NormalizeVector scales v to unit length, in place, and returns it.
// A zero vector is returned unchanged since it has no direction.
//
// Backends are not trusted to return normalized embeddings; the gateway
// normalizes every vector so cosine similarity downstream reduces to a
// dot product.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return v
	}

	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
