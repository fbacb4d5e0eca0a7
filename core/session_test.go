package orchestration

import (
	"testing"

	"github.com/google/uuid"
)

func TestSessionIgnoresBlankTextAndNilSpeaker(t *testing.T) {
	tracker := NewSessionTracker()
	speaker := uuid.New()

	tracker.RecordUserUtterance("   ", &speaker)
	tracker.RecordUserUtterance("hello", nil)

	if turns := tracker.CurrentTurns(); len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
}

func TestSessionAppendsForSameSpeaker(t *testing.T) {
	tracker := NewSessionTracker()
	speaker := uuid.New()

	tracker.RecordUserUtterance("first", &speaker)
	tracker.RecordUserUtterance("second", &speaker)

	turns := tracker.CurrentTurns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].UserText != "first" || turns[1].UserText != "second" {
		t.Fatalf("unexpected turn order: %+v", turns)
	}
}

func TestSessionSpeakerChangeStartsFresh(t *testing.T) {
	tracker := NewSessionTracker()
	first := uuid.New()
	second := uuid.New()

	tracker.RecordUserUtterance("hello", &first)
	tracker.RecordUserUtterance("hi there", &second)

	turns := tracker.CurrentTurns()
	if len(turns) != 1 {
		t.Fatalf("expected the new speaker to start a fresh session, got %d turns", len(turns))
	}
	if turns[0].UserText != "hi there" {
		t.Fatalf("unexpected turn: %+v", turns[0])
	}

	summary := tracker.CloseSession()
	if summary == nil {
		t.Fatalf("expected a summary")
	}
	if summary.SpeakerID != second {
		t.Fatalf("summary speaker = %v, want %v", summary.SpeakerID, second)
	}
}

func TestSessionAssistantResponseFirstWriteWins(t *testing.T) {
	tracker := NewSessionTracker()
	speaker := uuid.New()

	tracker.RecordUserUtterance("what time is it", &speaker)
	tracker.RecordAssistantResponse("it is noon")
	tracker.RecordAssistantResponse("late duplicate")

	turns := tracker.CurrentTurns()
	if turns[0].AssistantText == nil || *turns[0].AssistantText != "it is noon" {
		t.Fatalf("expected the first response to stick, got %+v", turns[0].AssistantText)
	}
}

func TestSessionAssistantResponseWithoutTurnsIsNoop(t *testing.T) {
	tracker := NewSessionTracker()

	tracker.RecordAssistantResponse("orphan response")

	if summary := tracker.CloseSession(); summary != nil {
		t.Fatalf("expected no session, got %+v", summary)
	}
}

func TestSessionCloseClearsState(t *testing.T) {
	tracker := NewSessionTracker()
	speaker := uuid.New()

	tracker.RecordUserUtterance("hello", &speaker)
	if summary := tracker.CloseSession(); summary == nil || len(summary.Turns) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary := tracker.CloseSession(); summary != nil {
		t.Fatalf("second close must return nil, got %+v", summary)
	}
}

func TestSessionResetDiscardsWithoutSummary(t *testing.T) {
	tracker := NewSessionTracker()
	speaker := uuid.New()

	tracker.RecordUserUtterance("hello", &speaker)
	tracker.Reset()

	if summary := tracker.CloseSession(); summary != nil {
		t.Fatalf("expected reset to discard the session")
	}
}
