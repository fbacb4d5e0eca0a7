package speakerid

import "github.com/google/uuid"

// Profile is an enrolled speaker with one or more reference embeddings.
//
// Threshold overrides the service default when positive.
type Profile struct {
	ID          uuid.UUID
	DisplayName string
	Threshold   float32
	Embeddings  []Embedding
}

// Match is the result of comparing an embedding against stored profiles.
type Match struct {
	ProfileID   uuid.UUID
	DisplayName string
	Similarity  float32
	Threshold   float32
}

// IsAboveThreshold reports whether the match clears its applied threshold.
func (m Match) IsAboveThreshold() bool {
	return m.Similarity >= m.Threshold
}
