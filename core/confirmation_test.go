package orchestration

import (
	"testing"
	"time"
)

func TestParseConfirmation(t *testing.T) {
	cases := []struct {
		text string
		want ConfirmationDecision
	}{
		{"yes", ConfirmationConfirmed},
		{"Yeah!", ConfirmationConfirmed},
		{"sure", ConfirmationConfirmed},
		{"go ahead", ConfirmationConfirmed},
		{"please do", ConfirmationConfirmed},
		{"sounds good to me", ConfirmationConfirmed},
		{"OK", ConfirmationConfirmed},

		{"no", ConfirmationDenied},
		{"nope", ConfirmationDenied},
		{"cancel that", ConfirmationDenied},
		{"don't do that", ConfirmationDenied},
		{"never mind", ConfirmationDenied},
		{"no thanks", ConfirmationDenied},
		{"don't", ConfirmationDenied},

		{"", ConfirmationUnclear},
		{"what's the weather", ConfirmationUnclear},
		{"yes no", ConfirmationUnclear},
		{"maybe later", ConfirmationUnclear},
	}

	for _, c := range cases {
		if got := ParseConfirmation(c.text); got != c.want {
			t.Fatalf("ParseConfirmation(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestParseConfirmationPhraseBeatsToken(t *testing.T) {
	if got := ParseConfirmation("do not"); got != ConfirmationDenied {
		t.Fatalf("ParseConfirmation(\"do not\") = %q, want denied", got)
	}
	// Phrase matching runs before token scanning sees the deny tokens.
	if got := ParseConfirmation("go ahead, don't stop"); got != ConfirmationConfirmed {
		t.Fatalf("phrase precedence: got %q, want confirmed", got)
	}
}

func TestPendingConfirmationExpiry(t *testing.T) {
	now := time.Now()
	pending := PendingConfirmationState{
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Second),
	}

	if pending.IsExpired(now.Add(14 * time.Second)) {
		t.Fatalf("confirmation expired early")
	}
	if !pending.IsExpired(now.Add(15 * time.Second)) {
		t.Fatalf("confirmation must expire at the deadline")
	}
}
