package speechtotext

import "github.com/prismkit/prism-core/core/events"

type TranscriptionOptions struct {
	TranscriptCallback func(event events.TranscriptEvent)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	ErrorCallback func(err error)
}

type TranscriptionOption func(*TranscriptionOptions)

// WithTranscriptCallback registers a callback for interim and final
// transcript events produced by the transcription source.
func WithTranscriptCallback(callback func(event events.TranscriptEvent)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

// WithErrorCallback registers a callback for terminal source failures
// (authorization, connectivity). These halt the current run.
func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}
