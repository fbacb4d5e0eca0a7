package speakerid

import "fmt"

// Embedding is a numeric voice-print vector compared via cosine similarity.
type Embedding struct {
	Vector []float32
}

// Average combines enrollment samples into a single reference embedding.
func Average(embeddings []Embedding) (Embedding, error) {
	if len(embeddings) == 0 {
		return Embedding{}, fmt.Errorf("no embeddings to average")
	}

	dimensions := len(embeddings[0].Vector)
	sum := make([]float32, dimensions)
	for _, embedding := range embeddings {
		if len(embedding.Vector) != dimensions {
			return Embedding{}, fmt.Errorf("embedding dimension mismatch: %d != %d", len(embedding.Vector), dimensions)
		}
		for i, value := range embedding.Vector {
			sum[i] += value
		}
	}

	for i := range sum {
		sum[i] /= float32(len(embeddings))
	}
	return Embedding{Vector: sum}, nil
}
