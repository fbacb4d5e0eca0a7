// Package settings loads the read-only configuration snapshot consumed at
// pipeline construction time. Settings are not live-reactive: changing a
// file on disk has no effect until the pipeline is rebuilt.
package settings

import (
	"fmt"
	"os"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

type VAD struct {
	RMSThreshold    float32 `yaml:"rms_threshold"`
	MinSpeechFrames int     `yaml:"min_speech_frames"`
	SilenceFrames   int     `yaml:"silence_frames"`
}

type Conversation struct {
	WindowSeconds  float64  `yaml:"window_seconds"`
	MaxTurns       int      `yaml:"max_turns"`
	ClosingPhrases []string `yaml:"closing_phrases"`
	FillerTokens   []string `yaml:"filler_tokens"`
}

type WakeWord struct {
	Enabled         bool     `yaml:"enabled"`
	Aliases         []string `yaml:"aliases"`
	Sensitivity     float64  `yaml:"sensitivity"`
	MinConfidence   float64  `yaml:"min_confidence"`
	CooldownSeconds float64  `yaml:"cooldown_seconds"`
}

type SpeakerID struct {
	MatchThreshold    float32 `yaml:"match_threshold"`
	EnrollmentSamples int     `yaml:"enrollment_samples"`
}

type LLM struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type Settings struct {
	VAD          VAD             `yaml:"vad"`
	Conversation Conversation    `yaml:"conversation"`
	WakeWord     WakeWord        `yaml:"wake_word"`
	SpeakerID    SpeakerID       `yaml:"speaker_id"`
	LLM          LLM             `yaml:"llm"`
	Skills       map[string]bool `yaml:"skills"`
}

// Default returns the baseline configuration used when no file overrides it.
func Default() Settings {
	return Settings{
		VAD: VAD{
			RMSThreshold:    0.02,
			MinSpeechFrames: 3,
			SilenceFrames:   8,
		},
		Conversation: Conversation{
			WindowSeconds:  30,
			MaxTurns:       6,
			ClosingPhrases: []string{"thanks", "thank you", "stop", "that's all"},
			FillerTokens:   []string{"ok", "okay", "alright"},
		},
		WakeWord: WakeWord{
			Enabled:         true,
			Aliases:         []string{"prism"},
			Sensitivity:     0.5,
			MinConfidence:   0.5,
			CooldownSeconds: 2,
		},
		SpeakerID: SpeakerID{
			MatchThreshold:    0.75,
			EnrollmentSamples: 3,
		},
		Skills: map[string]bool{},
	}
}

// Load reads a yaml settings file over the defaults and normalizes the
// result.
func Load(path string) (Settings, error) {
	loaded := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	loaded.normalize()
	return loaded, nil
}

// SkillEnabled reports whether a skill id is switched on.
func (s Settings) SkillEnabled(skillID string) bool {
	return s.Skills[skillID]
}

// Snapshot returns a deep copy so the caller cannot mutate shared slices.
func (s Settings) Snapshot() Settings {
	out := Settings{}
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		return s
	}
	return out
}

func (s *Settings) normalize() {
	if s.VAD.MinSpeechFrames < 1 {
		s.VAD.MinSpeechFrames = 1
	}
	if s.VAD.SilenceFrames < 1 {
		s.VAD.SilenceFrames = 1
	}
	if s.Conversation.MaxTurns < 1 {
		s.Conversation.MaxTurns = 1
	}
	if s.Conversation.WindowSeconds <= 0 {
		s.Conversation.WindowSeconds = Default().Conversation.WindowSeconds
	}
	s.WakeWord.Sensitivity = clamp01(s.WakeWord.Sensitivity)
	s.WakeWord.MinConfidence = clamp01(s.WakeWord.MinConfidence)
	if s.WakeWord.CooldownSeconds < 0 {
		s.WakeWord.CooldownSeconds = 0
	}
	if s.SpeakerID.EnrollmentSamples < 1 {
		s.SpeakerID.EnrollmentSamples = 1
	}
	if s.Skills == nil {
		s.Skills = map[string]bool{}
	}
}

func clamp01(value float64) float64 {
	return min(max(value, 0), 1)
}
