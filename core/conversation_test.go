package orchestration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prismkit/prism-core/core/events"
)

func finalUtterance(text string) events.TranscriptEvent {
	return events.TranscriptEvent{
		Text:        text,
		IsFinal:     true,
		Timestamp:   time.Now(),
		UtteranceID: uuid.New(),
	}
}

func TestConversationPublishesInitialClosedState(t *testing.T) {
	manager := NewConversationManager(time.Minute, 3, nil)

	select {
	case state := <-manager.States():
		if state.IsOpen || state.TurnsUsed != 0 || state.CloseReason != "" {
			t.Fatalf("initial state = %+v, want pristine closed", state)
		}
		if state.MaxTurns != 3 || state.Window != time.Minute {
			t.Fatalf("initial state limits = %+v", state)
		}
	default:
		t.Fatalf("expected the closed baseline to be buffered at construction")
	}
}

func TestConversationClosesOnMaxTurns(t *testing.T) {
	for _, maxTurns := range []int{1, 2, 5} {
		manager := NewConversationManager(time.Minute, maxTurns, nil)
		manager.OpenWindow()

		for i := 0; i < maxTurns; i++ {
			if !manager.IsOpen() {
				t.Fatalf("maxTurns=%d: window closed before turn %d", maxTurns, i)
			}
			if !manager.AcceptUtterance(finalUtterance("hello")) {
				t.Fatalf("maxTurns=%d: utterance %d rejected", maxTurns, i)
			}
		}

		if manager.IsOpen() {
			t.Fatalf("maxTurns=%d: window still open after the final turn", maxTurns)
		}
		if got := manager.Snapshot().CloseReason; got != CloseReasonMaxTurns {
			t.Fatalf("maxTurns=%d: close reason = %q, want %q", maxTurns, got, CloseReasonMaxTurns)
		}
		if manager.AcceptUtterance(finalUtterance("hello")) {
			t.Fatalf("maxTurns=%d: closed window accepted an utterance", maxTurns)
		}
	}
}

func TestConversationIgnoresInterimTranscripts(t *testing.T) {
	manager := NewConversationManager(time.Minute, 5, nil)
	manager.OpenWindow()

	interim := finalUtterance("hel")
	interim.IsFinal = false
	if manager.AcceptUtterance(interim) {
		t.Fatalf("interim transcript must not consume a turn")
	}
	if got := manager.Snapshot().TurnsUsed; got != 0 {
		t.Fatalf("turns used = %d, want 0", got)
	}
}

func TestConversationClosingPhraseClosesWithoutConsumingTurn(t *testing.T) {
	closing := NewClosingPhraseDetector([]string{"thanks"}, []string{"ok"})
	manager := NewConversationManager(time.Minute, 5, closing)
	manager.OpenWindow()

	if !manager.AcceptUtterance(finalUtterance("what time is it")) {
		t.Fatalf("ordinary utterance rejected")
	}
	if manager.AcceptUtterance(finalUtterance("ok thanks")) {
		t.Fatalf("closing phrase must not count as a turn")
	}
	if manager.IsOpen() {
		t.Fatalf("closing phrase must close the window")
	}
	if got := manager.Snapshot().CloseReason; got != CloseReasonClosingPhrase {
		t.Fatalf("close reason = %q, want %q", got, CloseReasonClosingPhrase)
	}
}

func TestConversationClosedSnapshotInvariant(t *testing.T) {
	manager := NewConversationManager(time.Minute, 5, nil)
	manager.OpenWindow()
	manager.AcceptUtterance(finalUtterance("hello"))

	open := manager.Snapshot()
	if open.LastActivity == nil || open.ExpiresAt == nil {
		t.Fatalf("open window must expose activity and expiry, got %+v", open)
	}
	if open.MaxTurns != 5 || open.Window != time.Minute {
		t.Fatalf("snapshot limits: %+v", open)
	}

	manager.CloseWindow(CloseReasonManual)
	closed := manager.Snapshot()
	if closed.IsOpen || closed.TurnsUsed != 0 || closed.LastActivity != nil || closed.ExpiresAt != nil {
		t.Fatalf("closed window must read zero turns with no timestamps, got %+v", closed)
	}
}

func TestConversationExpires(t *testing.T) {
	manager := NewConversationManager(20*time.Millisecond, 10, nil)
	manager.OpenWindow()

	deadline := time.After(time.Second)
	for manager.IsOpen() {
		select {
		case <-deadline:
			t.Fatalf("window did not expire")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := manager.Snapshot().CloseReason; got != CloseReasonExpired {
		t.Fatalf("close reason = %q, want %q", got, CloseReasonExpired)
	}
}

func TestConversationAcceptRestartsExpiry(t *testing.T) {
	manager := NewConversationManager(60*time.Millisecond, 10, nil)
	manager.OpenWindow()

	// Keep touching the window past its original deadline.
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		if !manager.AcceptUtterance(finalUtterance("still here")) {
			t.Fatalf("window expired despite activity (iteration %d)", i)
		}
	}
}

func TestConversationStaleTimerDoesNotCloseNewWindow(t *testing.T) {
	manager := NewConversationManager(30*time.Millisecond, 10, nil)
	manager.OpenWindow()
	manager.CloseWindow(CloseReasonManual)

	// Reopen; the first window's timer must not close this one early.
	manager.OpenWindow()
	time.Sleep(10 * time.Millisecond)
	if !manager.IsOpen() {
		t.Fatalf("stale timer closed the reopened window")
	}
}

func TestConversationStatesLatestWins(t *testing.T) {
	manager := NewConversationManager(time.Minute, 10, nil)

	manager.OpenWindow()
	manager.AcceptUtterance(finalUtterance("one"))
	manager.AcceptUtterance(finalUtterance("two"))

	select {
	case state := <-manager.States():
		if state.TurnsUsed != 2 {
			t.Fatalf("expected latest state with 2 turns, got %d", state.TurnsUsed)
		}
	default:
		t.Fatalf("expected a buffered state")
	}

	select {
	case state := <-manager.States():
		t.Fatalf("expected no backlog, got %+v", state)
	default:
	}
}

func TestConversationSnapshotTimeRemaining(t *testing.T) {
	manager := NewConversationManager(time.Minute, 10, nil)

	if got := manager.Snapshot().TimeRemaining(time.Now()); got != 0 {
		t.Fatalf("closed window TimeRemaining = %v, want 0", got)
	}

	manager.OpenWindow()
	remaining := manager.Snapshot().TimeRemaining(time.Now())
	if remaining <= 0 || remaining > time.Minute {
		t.Fatalf("open window TimeRemaining = %v", remaining)
	}
}
