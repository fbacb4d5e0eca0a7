package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prismkit/prism-core/core/events"
	"github.com/prismkit/prism-core/core/speakerid"
	"github.com/prismkit/prism-core/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpeechToText is the transcription surface the pipeline drives. The
// remote websocket client implements it; tests substitute stubs.
type SpeechToText interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	StartUtterance(id uuid.UUID) error
	SendFrame(frame events.AudioFrame) error
	EndUtterance() error
	Close(ctx context.Context) error
}

// SpeakerMatcher resolves the frames of a finished utterance to an
// enrolled speaker, or nil when no profile matches.
type SpeakerMatcher interface {
	MatchUtterance(ctx context.Context, frames []events.AudioFrame) (*speakerid.Match, error)
}

// Pipeline is the decision core of the assistant. It consumes audio
// frames, transcript events, and acoustic wake events, segments speech
// with the VAD, gates utterances on speaker attribution, manages the
// conversation window, and forwards accepted utterances to the
// orchestration pipeline.
type Pipeline struct {
	config PipelineConfig

	vad           *VADService
	wakeDetector  *WakeWordTextDetector
	conversation  *ConversationManager
	sessions      *SessionTracker
	gate          *SpeakerAttributionGate
	orchestration *OrchestrationPipeline

	speechToText SpeechToText
	matcher      SpeakerMatcher

	frames      chan events.AudioFrame
	wakeEvents  chan events.WakeWordEvent
	transcripts chan events.TranscriptEvent

	// forwardMu spans window acceptance through session recording, so a
	// close handoff never reads a session that is still missing its
	// final turn.
	forwardMu sync.Mutex

	// Single-owner state of the frame loop.
	preRoll          []events.AudioFrame
	preRollDuration  time.Duration
	currentUtterance uuid.UUID
	utteranceFrames  []events.AudioFrame
	lastAcousticWake time.Time

	runOptions  RunOptions
	baseContext context.Context

	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewPipeline(config PipelineConfig, pipeline *OrchestrationPipeline, opts ...PipelineOption) *Pipeline {
	if config.PreRoll <= 0 {
		config.PreRoll = defaultPreRoll
	}

	closing := NewClosingPhraseDetector(config.ClosingPhrases, config.FillerTokens)
	p := &Pipeline{
		config:        config,
		vad:           NewVADService(config.VAD),
		wakeDetector:  NewWakeWordTextDetector(config.WakeWord.Aliases, config.WakeWord.MinConfidence),
		conversation:  NewConversationManager(config.ConversationWindow, config.MaxTurns, closing),
		sessions:      NewSessionTracker(),
		gate:          NewSpeakerAttributionGate(),
		orchestration: pipeline,
		frames:        make(chan events.AudioFrame, 64),
		wakeEvents:    make(chan events.WakeWordEvent, 8),
		transcripts:   make(chan events.TranscriptEvent, 16),
		baseContext:   context.Background(),
		closeCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Conversation exposes the window manager, mainly for its state stream.
func (p *Pipeline) Conversation() *ConversationManager {
	return p.conversation
}

// Run starts the consuming loops and the transcription stream. It
// returns once the loops are running; they stop when ctx is cancelled or
// Close is called.
//
// Contract: call Run at most once per pipeline instance.
func (p *Pipeline) Run(ctx context.Context, opts ...RunOption) error {
	p.runOptions = RunOptions{}
	for _, opt := range opts {
		opt(&p.runOptions)
	}
	p.baseContext = ctx

	if p.speechToText != nil {
		err := p.speechToText.Transcribe(ctx,
			speechtotext.WithTranscriptCallback(func(event events.TranscriptEvent) {
				p.PushTranscript(event)
			}),
			speechtotext.WithErrorCallback(func(err error) {
				logger.ErrorContext(ctx, "transcription stream failed", "error", err)
				if p.runOptions.onError != nil {
					p.runOptions.onError(err)
				}
				p.Close()
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to start transcription: %w", err)
		}
	}

	go p.consumeFrames(ctx)
	go p.consumeWakeEvents(ctx)
	go p.consumeTranscripts(ctx)
	go p.consumeConversationStates(ctx)

	go func() {
		<-ctx.Done()
		p.Close()
	}()

	return nil
}

// Close stops the pipeline and issues fire-and-forget resets to the
// state containers. It is safe to call multiple times.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)

		if p.speechToText != nil {
			if err := p.speechToText.Close(p.baseContext); err != nil {
				recordedErr := fmt.Errorf("failed to close transcription client: %w", err)
				span := trace.SpanFromContext(p.baseContext)
				span.RecordError(recordedErr)
				span.SetStatus(codes.Error, recordedErr.Error())
			}
		}

		p.conversation.CloseWindow(CloseReasonManual)
		p.gate.Reset()
		p.sessions.Reset()
	})
}

// PushFrame feeds one captured audio frame into the pipeline. Frames
// pushed after Close are dropped.
func (p *Pipeline) PushFrame(frame events.AudioFrame) {
	select {
	case <-p.closeCh:
	case p.frames <- frame:
	}
}

// PushWakeEvent feeds one acoustic wake detection into the pipeline.
func (p *Pipeline) PushWakeEvent(event events.WakeWordEvent) {
	select {
	case <-p.closeCh:
	case p.wakeEvents <- event:
	}
}

// PushTranscript feeds one transcript update into the pipeline. A single
// consuming loop applies transcripts in arrival order, so back-to-back
// finals cannot reach the conversation window out of sequence.
func (p *Pipeline) PushTranscript(event events.TranscriptEvent) {
	select {
	case <-p.closeCh:
	case p.transcripts <- event:
	}
}

func (p *Pipeline) consumeFrames(ctx context.Context) {
	for {
		select {
		case <-p.closeCh:
			return
		case <-ctx.Done():
			return
		case frame := <-p.frames:
			p.processFrame(ctx, frame)
		}
	}
}

// processFrame runs the VAD over one frame and drives utterance
// segmentation. Only the frame loop touches the segmentation state.
func (p *Pipeline) processFrame(ctx context.Context, frame events.AudioFrame) {
	decision := p.vad.Process(frame)

	switch {
	case decision.DidStartSpeech:
		p.currentUtterance = uuid.New()
		p.utteranceFrames = append([]events.AudioFrame{}, p.preRoll...)
		p.utteranceFrames = append(p.utteranceFrames, frame)

		if p.speechToText != nil {
			if err := p.speechToText.StartUtterance(p.currentUtterance); err != nil {
				logger.WarnContext(ctx, "failed to start utterance", "error", err)
			}
			for _, buffered := range p.utteranceFrames {
				if err := p.speechToText.SendFrame(buffered); err != nil {
					logger.WarnContext(ctx, "failed to send audio frame", "error", err)
					break
				}
			}
		}

	case decision.IsSpeechActive:
		p.utteranceFrames = append(p.utteranceFrames, frame)
		if p.speechToText != nil {
			if err := p.speechToText.SendFrame(frame); err != nil {
				logger.WarnContext(ctx, "failed to send audio frame", "error", err)
			}
		}

	case decision.DidEndSpeech:
		if p.speechToText != nil {
			if err := p.speechToText.EndUtterance(); err != nil {
				logger.WarnContext(ctx, "failed to end utterance", "error", err)
			}
		}
		p.resolveSpeaker(ctx, p.currentUtterance, p.utteranceFrames)
		p.utteranceFrames = nil
	}

	p.bufferPreRoll(frame)
}

// bufferPreRoll keeps the most recent frames so speech onsets are not
// clipped when the detector triggers late.
func (p *Pipeline) bufferPreRoll(frame events.AudioFrame) {
	p.preRoll = append(p.preRoll, frame)
	p.preRollDuration += frame.Duration()
	for len(p.preRoll) > 0 && p.preRollDuration > p.config.PreRoll {
		p.preRollDuration -= p.preRoll[0].Duration()
		p.preRoll = p.preRoll[1:]
	}
}

// resolveSpeaker runs embedding matching off the frame loop and feeds
// the outcome to the attribution gate.
func (p *Pipeline) resolveSpeaker(ctx context.Context, utteranceID uuid.UUID, frames []events.AudioFrame) {
	if p.matcher == nil {
		p.gate.ResolveMatch(utteranceID, nil)
		return
	}

	go func() {
		match, err := p.matcher.MatchUtterance(ctx, frames)
		if err != nil {
			logger.WarnContext(ctx, "speaker matching failed", "error", err, "utterance_id", utteranceID)
			match = nil
		}
		p.gate.ResolveMatch(utteranceID, match)
	}()
}

func (p *Pipeline) consumeTranscripts(ctx context.Context) {
	for {
		select {
		case <-p.closeCh:
			return
		case <-ctx.Done():
			return
		case event := <-p.transcripts:
			p.handleTranscript(ctx, event)
		}
	}
}

func (p *Pipeline) consumeWakeEvents(ctx context.Context) {
	for {
		select {
		case <-p.closeCh:
			return
		case <-ctx.Done():
			return
		case event := <-p.wakeEvents:
			p.handleWakeEvent(ctx, event)
		}
	}
}

func (p *Pipeline) handleWakeEvent(ctx context.Context, event events.WakeWordEvent) {
	if !p.config.WakeWord.Enabled || event.Source != events.WakeWordSourceAcoustic {
		return
	}
	if event.Confidence == nil || *event.Confidence < p.config.WakeWord.AcousticMinConfidence() {
		return
	}
	if cooldown := p.config.WakeWord.Cooldown; cooldown > 0 && !p.lastAcousticWake.IsZero() &&
		event.Timestamp.Sub(p.lastAcousticWake) < cooldown {
		return
	}
	p.lastAcousticWake = event.Timestamp

	logger.InfoContext(ctx, "acoustic wake accepted", "confidence", *event.Confidence)
	p.openConversation()
}

func (p *Pipeline) openConversation() {
	// A summary whose closed-state snapshot was coalesced away by this
	// reopen must not bleed into the new window's session.
	p.handoffSessionSummary()
	p.conversation.OpenWindow()
	p.gate.ClearPrompt()
}

// handleTranscript decides what to do with a finalized transcript: feed
// in-window text to the conversation manager and forward what it
// accepts, or open the window on a wake word mention.
func (p *Pipeline) handleTranscript(ctx context.Context, event events.TranscriptEvent) {
	if !event.IsFinal {
		return
	}
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}

	if p.conversation.IsOpen() {
		p.acceptAndForward(ctx, event, text)
		return
	}

	if !p.config.WakeWord.Enabled {
		return
	}
	match := p.wakeDetector.Detect(text, event.Confidence, event.Timestamp)
	if match == nil {
		return
	}

	logger.InfoContext(ctx, "text wake accepted", "alias", match.MatchedAlias)
	p.openConversation()
	if match.StrippedText == "" {
		return
	}

	command := event
	command.Text = match.StrippedText
	p.acceptAndForward(ctx, command, match.StrippedText)
}

// acceptAndForward feeds one final transcript through the window and the
// speaker gate. forwardMu is held from before the window can close until
// the turn is recorded, and a close triggered by this very utterance
// hands the session summary off right here, so the summary always
// carries its final turn.
func (p *Pipeline) acceptAndForward(ctx context.Context, event events.TranscriptEvent, text string) {
	p.forwardMu.Lock()
	if p.conversation.AcceptUtterance(event) {
		p.forward(ctx, event, text)
	}
	p.forwardMu.Unlock()

	if !p.conversation.IsOpen() {
		p.handoffSessionSummary()
	}
}

// forward gates the text on speaker attribution and records the user
// side of the turn before anything can consume the window close. Only
// the model-bound orchestration call is detached from the transcript
// loop.
func (p *Pipeline) forward(ctx context.Context, event events.TranscriptEvent, text string) {
	match, ok := p.gate.ShouldForward(ctx, event.UtteranceID)
	if !ok {
		if prompt := p.gate.Prompt(); prompt != nil && p.runOptions.onUnknownSpeaker != nil {
			p.runOptions.onUnknownSpeaker(*prompt)
		}
		return
	}

	if p.runOptions.onForwardedUtterance != nil {
		p.runOptions.onForwardedUtterance(text, *match)
	}

	p.sessions.RecordUserUtterance(text, &match.ProfileID)

	input := OrchestrationInput{
		UserText:          text,
		ConversationTurns: p.sessions.CurrentTurns(),
	}
	go func() {
		response, toolResults, err := p.orchestration.Run(ctx, input)
		if err != nil {
			logger.ErrorContext(ctx, "orchestration failed", "error", err)
			if p.runOptions.onError != nil {
				p.runOptions.onError(err)
			}
			return
		}

		p.sessions.RecordAssistantResponse(response.Message)
		if p.runOptions.onResponse != nil {
			p.runOptions.onResponse(response, toolResults)
		}
	}()
}

// handoffSessionSummary delivers the active session once. Taking
// forwardMu first waits out an utterance that is still inside the
// speaker gate, so its turn lands before the session closes; and
// CloseSession returns nil on every call after the first, which keeps
// the handoff single-shot even though closes are observed from more
// than one path.
func (p *Pipeline) handoffSessionSummary() {
	p.forwardMu.Lock()
	summary := p.sessions.CloseSession()
	p.forwardMu.Unlock()

	if summary != nil && p.runOptions.onSessionSummary != nil {
		p.runOptions.onSessionSummary(*summary)
	}
}

// consumeConversationStates watches window transitions and hands the
// session summary off once per closed window. The state stream is
// latest-wins, so closure is detected from the closed state itself
// rather than from an open-to-closed edge that may have been coalesced
// away; CloseSession returning nil keeps the handoff single-shot.
func (p *Pipeline) consumeConversationStates(ctx context.Context) {
	for {
		select {
		case <-p.closeCh:
			return
		case <-ctx.Done():
			return
		case state := <-p.conversation.States():
			if p.runOptions.onConversationState != nil {
				p.runOptions.onConversationState(state)
			}

			if !state.IsOpen && state.CloseReason != "" {
				p.handoffSessionSummary()
			}
		}
	}
}
