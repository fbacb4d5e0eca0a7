package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prismkit/prism-core/core/speakerid"
)

const defaultAttributionGrace = 150 * time.Millisecond

const (
	promptReasonLowConfidence  = "Speaker confidence below threshold."
	promptReasonUnknownSpeaker = "Unknown speaker detected."
)

// UnknownSpeakerPrompt asks the user to identify themselves after an
// utterance failed attribution. At most one prompt is outstanding at a
// time; later failures reuse it instead of stacking prompts.
type UnknownSpeakerPrompt struct {
	ID          uuid.UUID
	UtteranceID uuid.UUID
	Reason      string
}

// SpeakerAttributionGate decides whether a transcribed utterance may be
// forwarded to orchestration, based on whether its speaker was matched to
// an enrolled profile. Attribution runs concurrently with transcription,
// so the gate waits a short grace period for the match to arrive; an
// utterance with no match by then is dropped rather than forwarded.
type SpeakerAttributionGate struct {
	grace time.Duration

	mu      sync.Mutex
	results map[uuid.UUID]*speakerid.Match
	waiters map[uuid.UUID]chan *speakerid.Match
	prompt  *UnknownSpeakerPrompt
}

type GateOption func(*SpeakerAttributionGate)

// WithAttributionGrace overrides how long the gate waits for a match.
func WithAttributionGrace(grace time.Duration) GateOption {
	return func(g *SpeakerAttributionGate) {
		if grace > 0 {
			g.grace = grace
		}
	}
}

func NewSpeakerAttributionGate(opts ...GateOption) *SpeakerAttributionGate {
	gate := &SpeakerAttributionGate{
		grace:   defaultAttributionGrace,
		results: map[uuid.UUID]*speakerid.Match{},
		waiters: map[uuid.UUID]chan *speakerid.Match{},
	}
	for _, opt := range opts {
		opt(gate)
	}
	return gate
}

// ResolveMatch records the attribution outcome for an utterance. A nil
// match means embedding extraction or matching produced nothing usable.
func (g *SpeakerAttributionGate) ResolveMatch(utteranceID uuid.UUID, match *speakerid.Match) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if waiter, ok := g.waiters[utteranceID]; ok {
		delete(g.waiters, utteranceID)
		waiter <- match
		return
	}
	g.results[utteranceID] = match
}

// ShouldForward reports whether the utterance belongs to a recognized
// speaker, waiting up to the grace period for attribution to finish. Any
// failure mode resolves to not forwarding.
func (g *SpeakerAttributionGate) ShouldForward(ctx context.Context, utteranceID uuid.UUID) (*speakerid.Match, bool) {
	g.mu.Lock()
	if match, ok := g.results[utteranceID]; ok {
		delete(g.results, utteranceID)
		g.mu.Unlock()
		return g.evaluate(utteranceID, match)
	}

	waiter := make(chan *speakerid.Match, 1)
	g.waiters[utteranceID] = waiter
	g.mu.Unlock()

	timer := time.NewTimer(g.grace)
	defer timer.Stop()

	select {
	case match := <-waiter:
		return g.evaluate(utteranceID, match)
	case <-timer.C:
	case <-ctx.Done():
	}

	g.mu.Lock()
	delete(g.waiters, utteranceID)
	g.mu.Unlock()

	// A match delivered between the timeout and the delete above sits in
	// the waiter's buffer; honor it instead of denying a resolved
	// utterance. After the delete no further send can happen.
	select {
	case match := <-waiter:
		return g.evaluate(utteranceID, match)
	default:
	}
	return g.evaluate(utteranceID, nil)
}

// Prompt returns the outstanding unknown speaker prompt, if any.
func (g *SpeakerAttributionGate) Prompt() *UnknownSpeakerPrompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt
}

// ClearPrompt discards the outstanding prompt, typically once the speaker
// has been identified or a new session starts.
func (g *SpeakerAttributionGate) ClearPrompt() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompt = nil
}

// Reset drops all pending attribution state.
func (g *SpeakerAttributionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, waiter := range g.waiters {
		delete(g.waiters, id)
		waiter <- nil
	}
	g.results = map[uuid.UUID]*speakerid.Match{}
	g.prompt = nil
}

func (g *SpeakerAttributionGate) evaluate(utteranceID uuid.UUID, match *speakerid.Match) (*speakerid.Match, bool) {
	if match != nil && match.IsAboveThreshold() {
		return match, true
	}

	reason := promptReasonUnknownSpeaker
	if match != nil {
		reason = promptReasonLowConfidence
	}

	g.mu.Lock()
	if g.prompt == nil {
		g.prompt = &UnknownSpeakerPrompt{
			ID:          uuid.New(),
			UtteranceID: utteranceID,
			Reason:      reason,
		}
	}
	g.mu.Unlock()
	return nil, false
}
