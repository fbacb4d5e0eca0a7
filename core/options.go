package orchestration

import (
	"time"

	"github.com/prismkit/prism-core/core/settings"
	"github.com/prismkit/prism-core/core/skills"
	"github.com/prismkit/prism-core/core/speakerid"
)

// PipelineConfig carries the construction-time tuning for a Pipeline.
// Settings are read once at construction; later file changes do not
// affect a running pipeline.
type PipelineConfig struct {
	VAD      VADConfig
	WakeWord WakeWordConfig

	ConversationWindow time.Duration
	MaxTurns           int
	ClosingPhrases     []string
	FillerTokens       []string

	// PreRoll is how much audio before speech onset is replayed into the
	// utterance, so word onsets clipped by the detector still transcribe.
	PreRoll time.Duration
}

const defaultPreRoll = 500 * time.Millisecond

// ConfigFromSettings maps a loaded settings snapshot onto the pipeline
// configuration.
func ConfigFromSettings(s settings.Settings) PipelineConfig {
	return PipelineConfig{
		VAD: VADConfig{
			RMSThreshold:    s.VAD.RMSThreshold,
			MinSpeechFrames: s.VAD.MinSpeechFrames,
			SilenceFrames:   s.VAD.SilenceFrames,
		},
		WakeWord: WakeWordConfig{
			Enabled:       s.WakeWord.Enabled,
			Aliases:       s.WakeWord.Aliases,
			Sensitivity:   s.WakeWord.Sensitivity,
			MinConfidence: s.WakeWord.MinConfidence,
			Cooldown:      time.Duration(s.WakeWord.CooldownSeconds * float64(time.Second)),
		},
		ConversationWindow: time.Duration(s.Conversation.WindowSeconds * float64(time.Second)),
		MaxTurns:           s.Conversation.MaxTurns,
		ClosingPhrases:     s.Conversation.ClosingPhrases,
		FillerTokens:       s.Conversation.FillerTokens,
		PreRoll:            defaultPreRoll,
	}
}

type PipelineOption func(*Pipeline)

// WithSpeechToText wires the transcription client the pipeline streams
// utterance audio into.
func WithSpeechToText(client SpeechToText) PipelineOption {
	return func(p *Pipeline) { p.speechToText = client }
}

// WithSpeakerMatcher wires the embedding matcher used for speaker
// attribution. Without one, every utterance fails attribution and is
// dropped.
func WithSpeakerMatcher(matcher SpeakerMatcher) PipelineOption {
	return func(p *Pipeline) { p.matcher = matcher }
}

// WithAttributionGateOptions forwards options to the speaker gate,
// mainly to shorten the grace period in tests.
func WithAttributionGateOptions(opts ...GateOption) PipelineOption {
	return func(p *Pipeline) {
		for _, opt := range opts {
			opt(p.gate)
		}
	}
}

// RunOptions holds the per-run callbacks.
type RunOptions struct {
	onResponse           func(response ResponseResult, toolResults []skills.ToolResult)
	onConversationState  func(state ConversationState)
	onSessionSummary     func(summary MemorySessionSummary)
	onUnknownSpeaker     func(prompt UnknownSpeakerPrompt)
	onForwardedUtterance func(text string, match speakerid.Match)
	onError              func(err error)
}

type RunOption func(*RunOptions)

// WithResponseCallback delivers the final response for each forwarded
// utterance, together with the tool results behind it.
func WithResponseCallback(callback func(response ResponseResult, toolResults []skills.ToolResult)) RunOption {
	return func(o *RunOptions) { o.onResponse = callback }
}

// WithConversationStateCallback delivers conversation window transitions.
func WithConversationStateCallback(callback func(state ConversationState)) RunOption {
	return func(o *RunOptions) { o.onConversationState = callback }
}

// WithSessionSummaryCallback delivers the session summary once per closed
// window, for memory persistence.
func WithSessionSummaryCallback(callback func(summary MemorySessionSummary)) RunOption {
	return func(o *RunOptions) { o.onSessionSummary = callback }
}

// WithUnknownSpeakerCallback surfaces the prompt raised when an utterance
// fails speaker attribution.
func WithUnknownSpeakerCallback(callback func(prompt UnknownSpeakerPrompt)) RunOption {
	return func(o *RunOptions) { o.onUnknownSpeaker = callback }
}

// WithForwardedUtteranceCallback fires when an utterance passes the
// speaker gate and is handed to orchestration.
func WithForwardedUtteranceCallback(callback func(text string, match speakerid.Match)) RunOption {
	return func(o *RunOptions) { o.onForwardedUtterance = callback }
}

// WithErrorCallback surfaces fatal capture or transcription failures.
// These halt the run.
func WithErrorCallback(callback func(err error)) RunOption {
	return func(o *RunOptions) { o.onError = callback }
}
