package speakerid

import (
	"context"

	"github.com/prismkit/prism-core/core/events"
)

// Extractor produces an embedding from the frames of one utterance. The
// concrete model runs outside this module.
type Extractor interface {
	ExtractEmbedding(ctx context.Context, frames []events.AudioFrame) (Embedding, error)
}

// Service coordinates embedding extraction and profile matching.
type Service struct {
	extractor Extractor
}

func NewService(extractor Extractor) *Service {
	return &Service{extractor: extractor}
}

// ExtractEmbedding runs the configured extractor for the supplied frames.
func (s *Service) ExtractEmbedding(ctx context.Context, frames []events.AudioFrame) (Embedding, error) {
	return s.extractor.ExtractEmbedding(ctx, frames)
}

// Match returns the best-scoring profile for the embedding, or nil when no
// comparison succeeds. The profile's own threshold applies when positive,
// defaultThreshold otherwise.
func (s *Service) Match(embedding Embedding, profiles []Profile, defaultThreshold float32) *Match {
	var best *Match

	for _, profile := range profiles {
		for _, candidate := range profile.Embeddings {
			similarity, ok := Cosine(embedding.Vector, candidate.Vector)
			if !ok {
				continue
			}
			if best == nil || similarity > best.Similarity {
				best = &Match{
					ProfileID:   profile.ID,
					DisplayName: profile.DisplayName,
					Similarity:  similarity,
					Threshold:   profile.Threshold,
				}
			}
		}
	}

	if best == nil {
		return nil
	}
	if best.Threshold <= 0 {
		best.Threshold = defaultThreshold
	}
	return best
}
