package speakerid

import (
	"context"
	"fmt"

	"github.com/prismkit/prism-core/core/events"
)

// ProfileProvider supplies the enrolled profiles to match against.
// Implementations typically read a profile store.
type ProfileProvider interface {
	Profiles(ctx context.Context) ([]Profile, error)
}

// StaticProfiles is a ProfileProvider over a fixed in-memory set.
type StaticProfiles []Profile

func (p StaticProfiles) Profiles(context.Context) ([]Profile, error) {
	return p, nil
}

// Matcher resolves utterance audio to an enrolled speaker by extracting
// an embedding and comparing it against the provided profiles.
type Matcher struct {
	service          *Service
	provider         ProfileProvider
	defaultThreshold float32
}

func NewMatcher(extractor Extractor, provider ProfileProvider, defaultThreshold float32) *Matcher {
	return &Matcher{
		service:          NewService(extractor),
		provider:         provider,
		defaultThreshold: defaultThreshold,
	}
}

// MatchUtterance returns the best profile match for the utterance, or nil
// when no profile clears comparison. Extraction and provider failures are
// returned as errors; the caller treats them as "no match".
func (m *Matcher) MatchUtterance(ctx context.Context, frames []events.AudioFrame) (*Match, error) {
	if len(frames) == 0 {
		return nil, nil
	}

	embedding, err := m.service.ExtractEmbedding(ctx, frames)
	if err != nil {
		return nil, fmt.Errorf("failed to extract speaker embedding: %w", err)
	}

	profiles, err := m.provider.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load speaker profiles: %w", err)
	}

	return m.service.Match(embedding, profiles, m.defaultThreshold), nil
}
