package orchestration

import "github.com/prismkit/prism-core/core/events"

// VADConfig tunes the energy-based speech detector. Zero values fall back
// to the defaults below.
type VADConfig struct {
	// RMSThreshold is the energy level a frame must reach to count as speech.
	RMSThreshold float32
	// MinSpeechFrames is how many consecutive speech frames are required
	// before speech is considered started.
	MinSpeechFrames int
	// SilenceFrames is how many consecutive sub-threshold frames are
	// required before speech is considered ended.
	SilenceFrames int
}

const (
	defaultRMSThreshold    = 0.02
	defaultMinSpeechFrames = 3
	defaultSilenceFrames   = 8
)

func (c VADConfig) withDefaults() VADConfig {
	if c.RMSThreshold <= 0 {
		c.RMSThreshold = defaultRMSThreshold
	}
	if c.MinSpeechFrames < 1 {
		c.MinSpeechFrames = defaultMinSpeechFrames
	}
	if c.SilenceFrames < 1 {
		c.SilenceFrames = defaultSilenceFrames
	}
	return c
}

// VADDecision reports what a single frame did to the detector state.
type VADDecision struct {
	// IsSpeechActive reflects the state after the frame was processed.
	IsSpeechActive bool
	// DidStartSpeech is true only on the frame that crossed the start
	// hysteresis.
	DidStartSpeech bool
	// DidEndSpeech is true only on the frame that crossed the end
	// hysteresis.
	DidEndSpeech bool
}

// VADService detects speech boundaries from per-frame RMS energy with
// hysteresis in both directions, so single noisy or quiet frames do not
// flip the state.
//
// It is not safe for concurrent use; the audio pipeline feeds it from a
// single goroutine.
type VADService struct {
	config VADConfig

	speechActive    bool
	speechRunLength int
	silenceRun      int
}

func NewVADService(config VADConfig) *VADService {
	return &VADService{config: config.withDefaults()}
}

// Process consumes one frame and returns the resulting state transition.
func (s *VADService) Process(frame events.AudioFrame) VADDecision {
	aboveThreshold := frame.RMS >= s.config.RMSThreshold

	decision := VADDecision{}
	if s.speechActive {
		if aboveThreshold {
			s.silenceRun = 0
		} else {
			s.silenceRun++
			if s.silenceRun >= s.config.SilenceFrames {
				s.speechActive = false
				s.silenceRun = 0
				s.speechRunLength = 0
				decision.DidEndSpeech = true
			}
		}
	} else {
		if aboveThreshold {
			s.speechRunLength++
			if s.speechRunLength >= s.config.MinSpeechFrames {
				s.speechActive = true
				s.silenceRun = 0
				decision.DidStartSpeech = true
			}
		} else {
			s.speechRunLength = 0
		}
	}

	decision.IsSpeechActive = s.speechActive
	return decision
}

// IsSpeechActive reports the current detector state.
func (s *VADService) IsSpeechActive() bool {
	return s.speechActive
}

// Reset returns the detector to its idle state.
func (s *VADService) Reset() {
	s.speechActive = false
	s.speechRunLength = 0
	s.silenceRun = 0
}
