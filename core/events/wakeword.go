package events

import "time"

// WakeWordSource describes where a wake-word detection came from.
type WakeWordSource string

const (
	WakeWordSourceAcoustic WakeWordSource = "acoustic"
	WakeWordSourceText     WakeWordSource = "text"
)

// WakeWordEvent describes a single wake-word detection. Events are ephemeral
// and consumed immediately to open a conversation window.
type WakeWordEvent struct {
	Source     WakeWordSource
	Confidence *float64
	Timestamp  time.Time
}

func NewWakeWordEvent(source WakeWordSource, confidence *float64) WakeWordEvent {
	return WakeWordEvent{Source: source, Confidence: confidence, Timestamp: time.Now()}
}
