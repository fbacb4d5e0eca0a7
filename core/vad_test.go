package orchestration

import (
	"testing"

	"github.com/prismkit/prism-core/core/events"
)

func processAll(t *testing.T, vad *VADService, rms []float32) []VADDecision {
	t.Helper()
	decisions := make([]VADDecision, 0, len(rms))
	for _, value := range rms {
		decisions = append(decisions, vad.Process(events.AudioFrame{RMS: value}))
	}
	return decisions
}

func TestVADStartsAfterMinSpeechFrames(t *testing.T) {
	vad := NewVADService(VADConfig{RMSThreshold: 0.5, MinSpeechFrames: 3, SilenceFrames: 2})

	decisions := processAll(t, vad, []float32{0.1, 0.6, 0.6, 0.6})

	wantStart := []bool{false, false, false, true}
	for i, decision := range decisions {
		if decision.DidStartSpeech != wantStart[i] {
			t.Fatalf("frame %d: DidStartSpeech = %v, want %v", i, decision.DidStartSpeech, wantStart[i])
		}
	}
	if !vad.IsSpeechActive() {
		t.Fatalf("expected speech to be active after start")
	}
}

func TestVADQuietFrameResetsStartRun(t *testing.T) {
	vad := NewVADService(VADConfig{RMSThreshold: 0.5, MinSpeechFrames: 3, SilenceFrames: 2})

	decisions := processAll(t, vad, []float32{0.6, 0.6, 0.1, 0.6, 0.6, 0.6})

	for i, decision := range decisions[:5] {
		if decision.DidStartSpeech {
			t.Fatalf("frame %d: unexpected speech start", i)
		}
	}
	if !decisions[5].DidStartSpeech {
		t.Fatalf("expected speech to start once the run rebuilt")
	}
}

func TestVADEndsAfterSilenceFrames(t *testing.T) {
	vad := NewVADService(VADConfig{RMSThreshold: 0.5, MinSpeechFrames: 2, SilenceFrames: 2})

	decisions := processAll(t, vad, []float32{0.6, 0.6, 0.1, 0.1})

	if !decisions[1].DidStartSpeech {
		t.Fatalf("expected speech to start on frame 1")
	}
	if decisions[2].DidEndSpeech {
		t.Fatalf("single quiet frame must not end speech")
	}
	if !decisions[3].DidEndSpeech {
		t.Fatalf("expected speech to end on frame 3")
	}
	if vad.IsSpeechActive() {
		t.Fatalf("expected speech to be inactive after end")
	}
}

func TestVADLoudFrameResetsSilenceRun(t *testing.T) {
	vad := NewVADService(VADConfig{RMSThreshold: 0.5, MinSpeechFrames: 1, SilenceFrames: 2})

	decisions := processAll(t, vad, []float32{0.6, 0.1, 0.6, 0.1, 0.1})

	for i, decision := range decisions[:4] {
		if decision.DidEndSpeech {
			t.Fatalf("frame %d: unexpected speech end", i)
		}
	}
	if !decisions[4].DidEndSpeech {
		t.Fatalf("expected speech to end after two consecutive quiet frames")
	}
}

func TestVADResetReturnsToIdle(t *testing.T) {
	vad := NewVADService(VADConfig{RMSThreshold: 0.5, MinSpeechFrames: 1, SilenceFrames: 2})

	vad.Process(events.AudioFrame{RMS: 0.6})
	if !vad.IsSpeechActive() {
		t.Fatalf("expected speech to be active")
	}

	vad.Reset()
	if vad.IsSpeechActive() {
		t.Fatalf("expected detector to be idle after reset")
	}
}
