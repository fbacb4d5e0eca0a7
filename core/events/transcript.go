package events

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptEvent is a single streaming speech-recognition update.
//
// UtteranceID is stable across interim revisions of the same utterance, so
// consumers can correlate interim and final updates with other per-utterance
// signals (speaker attribution in particular).
type TranscriptEvent struct {
	Text        string
	IsFinal     bool
	Confidence  *float64
	Timestamp   time.Time
	UtteranceID uuid.UUID
}

func NewTranscriptEvent(text string, isFinal bool, confidence *float64, utteranceID uuid.UUID) TranscriptEvent {
	return TranscriptEvent{
		Text:        text,
		IsFinal:     isFinal,
		Confidence:  confidence,
		Timestamp:   time.Now(),
		UtteranceID: utteranceID,
	}
}
