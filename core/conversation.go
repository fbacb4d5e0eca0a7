package orchestration

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prismkit/prism-core/core/events"
)

// CloseReason records why a conversation window closed.
type CloseReason string

const (
	CloseReasonExpired       CloseReason = "expired"
	CloseReasonClosingPhrase CloseReason = "closing_phrase"
	CloseReasonMaxTurns      CloseReason = "max_turns"
	CloseReasonManual        CloseReason = "manual"
)

// ConversationState is an immutable point-in-time view of the
// conversation window. A closed window always reads zero turns with no
// activity or expiry timestamps.
type ConversationState struct {
	IsOpen       bool
	TurnsUsed    int
	MaxTurns     int
	Window       time.Duration
	LastActivity *time.Time
	ExpiresAt    *time.Time
	// CloseReason is set on the state published by the transition that
	// closed the window, and on later snapshots until the window reopens.
	CloseReason CloseReason
}

// TimeRemaining reports how long the window stays open from the given
// instant, or zero when closed.
func (s ConversationState) TimeRemaining(now time.Time) time.Duration {
	if !s.IsOpen || s.ExpiresAt == nil {
		return 0
	}
	return max(s.ExpiresAt.Sub(now), 0)
}

// ConversationManager owns the follow-up window that opens after a wake
// word. While the window is open, utterances are accepted without a wake
// word; each accepted utterance restarts the expiry timer. The window
// closes on expiry, on a closing phrase, when the turn budget runs out,
// or explicitly.
type ConversationManager struct {
	window   time.Duration
	maxTurns int
	closing  *ClosingPhraseDetector

	mu           sync.Mutex
	open         bool
	turns        int
	lastActivity time.Time
	expiresAt    time.Time
	closeReason  CloseReason
	// generation invalidates expiry timers from a previous window or a
	// previous utterance, so a stale timer firing late cannot close a
	// window it no longer owns.
	generation uuid.UUID
	timer      *time.Timer

	states chan ConversationState
	now    func() time.Time
}

func NewConversationManager(window time.Duration, maxTurns int, closing *ClosingPhraseDetector) *ConversationManager {
	if window <= 0 {
		window = 30 * time.Second
	}
	if maxTurns < 1 {
		maxTurns = 1
	}
	if closing == nil {
		closing = NewClosingPhraseDetector(nil, nil)
	}
	m := &ConversationManager{
		window:   window,
		maxTurns: maxTurns,
		closing:  closing,
		states:   make(chan ConversationState, 1),
		now:      time.Now,
	}

	// Subscribers see the closed baseline straight away rather than
	// nothing until the first transition.
	m.mu.Lock()
	m.publishLocked()
	m.mu.Unlock()
	return m
}

// States delivers state transitions with latest-wins semantics: a slow
// consumer only ever sees the most recent state, never a backlog.
func (m *ConversationManager) States() <-chan ConversationState {
	return m.states
}

// OpenWindow starts a fresh follow-up window, replacing any open one.
func (m *ConversationManager) OpenWindow() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = true
	m.turns = 0
	m.closeReason = ""
	m.lastActivity = m.now()
	m.restartTimerLocked(m.lastActivity)
	m.publishLocked()
}

// AcceptUtterance feeds one final transcript into the window and reports
// whether it consumed a turn. Closing phrases close the window whatever
// its state and are never accepted as turns. Accepting the final
// budgeted turn closes the window, but the utterance itself still
// counts as accepted.
func (m *ConversationManager) AcceptUtterance(event events.TranscriptEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !event.IsFinal {
		return false
	}
	if m.closing.Matches(event.Text) {
		if m.open {
			m.closeLocked(CloseReasonClosingPhrase)
		}
		return false
	}
	if !m.open {
		return false
	}

	at := event.Timestamp
	if at.IsZero() {
		at = m.now()
	}

	m.turns++
	m.lastActivity = at
	if m.turns >= m.maxTurns {
		m.closeLocked(CloseReasonMaxTurns)
	} else {
		m.restartTimerLocked(at)
		m.publishLocked()
	}
	return true
}

// CloseWindow closes the window with the given reason. Closing an already
// closed window is a no-op.
func (m *ConversationManager) CloseWindow(reason CloseReason) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return
	}
	m.closeLocked(reason)
}

// IsOpen reports whether the follow-up window is currently open.
func (m *ConversationManager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Snapshot returns the current window state.
func (m *ConversationManager) Snapshot() ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *ConversationManager) snapshotLocked() ConversationState {
	state := ConversationState{
		IsOpen:      m.open,
		TurnsUsed:   m.turns,
		MaxTurns:    m.maxTurns,
		Window:      m.window,
		CloseReason: m.closeReason,
	}
	if m.open {
		lastActivity, expiresAt := m.lastActivity, m.expiresAt
		state.LastActivity = &lastActivity
		state.ExpiresAt = &expiresAt
	}
	return state
}

// restartTimerLocked schedules expiry one window length after the given
// activity timestamp, under a fresh generation token.
func (m *ConversationManager) restartTimerLocked(from time.Time) {
	if m.timer != nil {
		m.timer.Stop()
	}

	generation := uuid.New()
	m.generation = generation
	m.expiresAt = from.Add(m.window)
	m.timer = time.AfterFunc(max(m.expiresAt.Sub(m.now()), 0), func() {
		m.expire(generation)
	})
}

func (m *ConversationManager) expire(generation uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open || m.generation != generation {
		return
	}
	m.closeLocked(CloseReasonExpired)
}

func (m *ConversationManager) closeLocked(reason CloseReason) {
	m.open = false
	m.turns = 0
	m.lastActivity = time.Time{}
	m.expiresAt = time.Time{}
	m.closeReason = reason
	m.generation = uuid.UUID{}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.publishLocked()
}

func (m *ConversationManager) publishLocked() {
	state := m.snapshotLocked()
	for {
		select {
		case m.states <- state:
			return
		default:
			select {
			case <-m.states:
			default:
			}
		}
	}
}
