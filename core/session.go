package orchestration

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Turn is one exchange in a session. AssistantText stays nil until a
// response is recorded for the turn.
type Turn struct {
	UserText      string
	AssistantText *string
	Timestamp     time.Time
}

// MemorySessionSummary is the record handed off when a session closes,
// for memory consumers.
type MemorySessionSummary struct {
	SpeakerID uuid.UUID
	Turns     []Turn
	StartedAt time.Time
	EndedAt   time.Time
}

type trackedSession struct {
	speakerID    uuid.UUID
	turns        []Turn
	startedAt    time.Time
	lastActivity time.Time
}

// SessionTracker accumulates the turns of the current conversation
// session. At most one session is active, tied to a single attributed
// speaker; an utterance from a different speaker starts a fresh session
// and discards the old one.
type SessionTracker struct {
	mu      sync.Mutex
	session *trackedSession

	now func() time.Time
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{now: time.Now}
}

// RecordUserUtterance appends a turn to the active session, or starts a
// new session when none exists or the speaker changed. Blank text or a
// nil speaker is ignored.
func (t *SessionTracker) RecordUserUtterance(text string, speakerID *uuid.UUID) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || speakerID == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	turn := Turn{UserText: trimmed, Timestamp: now}
	if t.session != nil && t.session.speakerID == *speakerID {
		t.session.turns = append(t.session.turns, turn)
		t.session.lastActivity = now
		return
	}

	t.session = &trackedSession{
		speakerID:    *speakerID,
		turns:        []Turn{turn},
		startedAt:    now,
		lastActivity: now,
	}
}

// RecordAssistantResponse fills the assistant text of the most recent
// turn, but only if it is still unset; the first response for a turn
// wins and later duplicates are dropped.
func (t *SessionTracker) RecordAssistantResponse(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || len(t.session.turns) == 0 {
		return
	}

	last := &t.session.turns[len(t.session.turns)-1]
	if last.AssistantText == nil {
		last.AssistantText = &trimmed
	}
	t.session.lastActivity = t.now()
}

// CurrentTurns returns a deep copy of the active session's turns.
func (t *SessionTracker) CurrentTurns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil
	}
	return copyTurns(t.session.turns)
}

// CloseSession returns the summary of the active session and clears it.
// It returns nil when no session is active.
func (t *SessionTracker) CloseSession() *MemorySessionSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil
	}

	summary := &MemorySessionSummary{
		SpeakerID: t.session.speakerID,
		Turns:     copyTurns(t.session.turns),
		StartedAt: t.session.startedAt,
		EndedAt:   t.session.lastActivity,
	}
	t.session = nil
	return summary
}

// Reset discards the active session without producing a summary.
func (t *SessionTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = nil
}

func copyTurns(turns []Turn) []Turn {
	out := []Turn{}
	if err := copier.CopyWithOption(&out, &turns, copier.Option{DeepCopy: true}); err != nil {
		logger.Warn("failed to copy session turns", "error", err)
		return nil
	}
	return out
}
