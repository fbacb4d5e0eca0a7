package events

import "time"

const fallbackFrameDuration = 20 * time.Millisecond

// AudioFrame is a lightweight audio frame used for VAD gating and speaker
// attribution. Frames are owned by the capture collaborator and borrowed per
// call; retain a copy if you need one past the call.
type AudioFrame struct {
	Samples    []float32
	RMS        float32
	Timestamp  time.Time
	SampleRate float64
	FrameIndex int
}

// Duration returns the playback duration covered by the frame's samples.
func (f AudioFrame) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return fallbackFrameDuration
	}
	return time.Duration(float64(len(f.Samples)) / f.SampleRate * float64(time.Second))
}
