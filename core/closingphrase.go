package orchestration

// ClosingPhraseDetector decides whether a final utterance is a
// conversation closer. A closing phrase only counts when the rest of the
// utterance is nothing but filler tokens; a phrase embedded in a longer
// sentence keeps the conversation open.
type ClosingPhraseDetector struct {
	phrases [][]string
	fillers map[string]struct{}
}

func NewClosingPhraseDetector(phrases []string, fillerTokens []string) *ClosingPhraseDetector {
	detector := &ClosingPhraseDetector{fillers: map[string]struct{}{}}
	for _, phrase := range phrases {
		tokens := tokenize(phrase)
		if len(tokens) > 0 {
			detector.phrases = append(detector.phrases, tokens)
		}
	}
	for _, filler := range fillerTokens {
		for _, token := range tokenize(filler) {
			detector.fillers[token] = struct{}{}
		}
	}
	return detector
}

// Matches reports whether the text amounts to one of the configured
// closing phrases. The phrase tokens must appear contiguously; whatever
// surrounds them must consist of filler tokens only.
func (d *ClosingPhraseDetector) Matches(text string) bool {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return false
	}

	for _, phrase := range d.phrases {
		start := findSubsequence(tokens, phrase)
		if start < 0 {
			continue
		}
		if d.onlyFillers(tokens[:start]) && d.onlyFillers(tokens[start+len(phrase):]) {
			return true
		}
	}
	return false
}

func (d *ClosingPhraseDetector) onlyFillers(tokens []string) bool {
	for _, token := range tokens {
		if _, ok := d.fillers[token]; !ok {
			return false
		}
	}
	return true
}

// findSubsequence returns the start index of phrase as a contiguous run
// inside tokens, or -1.
func findSubsequence(tokens, phrase []string) int {
	if len(phrase) == 0 || len(tokens) < len(phrase) {
		return -1
	}
	for start := 0; start+len(phrase) <= len(tokens); start++ {
		matched := true
		for i, want := range phrase {
			if tokens[start+i] != want {
				matched = false
				break
			}
		}
		if matched {
			return start
		}
	}
	return -1
}
