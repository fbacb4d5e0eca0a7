package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeSettings(t, `
vad:
  rms_threshold: 0.05
conversation:
  window_seconds: 45
  max_turns: 3
wake_word:
  aliases: ["prism", "hey prism"]
  sensitivity: 0.7
llm:
  provider: openai
  model: gpt-4o-mini
skills:
  reminders: true
  playlist: false
`)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.VAD.RMSThreshold != 0.05 {
		t.Fatalf("rms threshold = %v", loaded.VAD.RMSThreshold)
	}
	if loaded.VAD.MinSpeechFrames != 3 {
		t.Fatalf("unset fields must keep defaults, got %d", loaded.VAD.MinSpeechFrames)
	}
	if loaded.Conversation.WindowSeconds != 45 || loaded.Conversation.MaxTurns != 3 {
		t.Fatalf("conversation settings: %+v", loaded.Conversation)
	}
	if len(loaded.WakeWord.Aliases) != 2 {
		t.Fatalf("aliases: %v", loaded.WakeWord.Aliases)
	}
	if loaded.LLM.Provider != "openai" || loaded.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm settings: %+v", loaded.LLM)
	}
	if !loaded.SkillEnabled("reminders") || loaded.SkillEnabled("playlist") || loaded.SkillEnabled("ghost") {
		t.Fatalf("skill enablement: %v", loaded.Skills)
	}
}

func TestLoadNormalizesOutOfRangeValues(t *testing.T) {
	path := writeSettings(t, `
vad:
  min_speech_frames: 0
  silence_frames: -2
conversation:
  window_seconds: -5
  max_turns: 0
wake_word:
  sensitivity: 2.5
  min_confidence: -1
  cooldown_seconds: -3
speaker_id:
  enrollment_samples: 0
`)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.VAD.MinSpeechFrames != 1 || loaded.VAD.SilenceFrames != 1 {
		t.Fatalf("vad clamping: %+v", loaded.VAD)
	}
	if loaded.Conversation.MaxTurns != 1 {
		t.Fatalf("max turns clamping: %d", loaded.Conversation.MaxTurns)
	}
	if loaded.Conversation.WindowSeconds != Default().Conversation.WindowSeconds {
		t.Fatalf("window fallback: %v", loaded.Conversation.WindowSeconds)
	}
	if loaded.WakeWord.Sensitivity != 1 || loaded.WakeWord.MinConfidence != 0 {
		t.Fatalf("wake word clamping: %+v", loaded.WakeWord)
	}
	if loaded.WakeWord.CooldownSeconds != 0 {
		t.Fatalf("cooldown clamping: %v", loaded.WakeWord.CooldownSeconds)
	}
	if loaded.SpeakerID.EnrollmentSamples != 1 {
		t.Fatalf("enrollment samples clamping: %d", loaded.SpeakerID.EnrollmentSamples)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := writeSettings(t, "vad: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	original := Default()
	original.WakeWord.Aliases = []string{"prism"}

	snapshot := original.Snapshot()
	snapshot.WakeWord.Aliases[0] = "mutated"
	snapshot.Skills["extra"] = true

	if original.WakeWord.Aliases[0] != "prism" {
		t.Fatalf("snapshot mutation leaked into the original aliases")
	}
	if original.SkillEnabled("extra") {
		t.Fatalf("snapshot mutation leaked into the original skills map")
	}
}
