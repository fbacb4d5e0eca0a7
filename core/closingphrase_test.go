package orchestration

import "testing"

func TestClosingPhraseWithFiller(t *testing.T) {
	detector := NewClosingPhraseDetector([]string{"thanks", "that's all"}, []string{"ok", "okay"})

	if !detector.Matches("ok thanks") {
		t.Fatalf("expected \"ok thanks\" to close the conversation")
	}
	if detector.Matches("ok thanks and what color are those flowers") {
		t.Fatalf("embedded closing phrase must not close the conversation")
	}
	if !detector.Matches("ok thanks okay") {
		t.Fatalf("fillers on both sides of the phrase must still close")
	}
}

func TestClosingPhraseExactAndNormalized(t *testing.T) {
	detector := NewClosingPhraseDetector([]string{"thank you", "stop"}, nil)

	cases := []struct {
		text string
		want bool
	}{
		{"Thank you!", true},
		{"STOP.", true},
		{"  thank you  ", true},
		{"thank you very much", false},
		{"please stop the music", false},
		{"", false},
	}
	for _, c := range cases {
		if got := detector.Matches(c.text); got != c.want {
			t.Fatalf("Matches(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestClosingPhraseRequiresContiguousTokens(t *testing.T) {
	detector := NewClosingPhraseDetector([]string{"thank you"}, []string{"ok"})

	// The phrase tokens must appear back to back; a filler wedged inside
	// the phrase breaks it.
	if detector.Matches("thank ok you") {
		t.Fatalf("interrupted phrase must not close the conversation")
	}
	if !detector.Matches("ok thank you") {
		t.Fatalf("filler before the intact phrase must close")
	}
}

func TestClosingPhraseMultiWordWithFiller(t *testing.T) {
	detector := NewClosingPhraseDetector([]string{"that's all"}, []string{"okay"})

	if !detector.Matches("okay that's all") {
		t.Fatalf("expected filler-prefixed phrase to close")
	}
}
