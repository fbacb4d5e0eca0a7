package orchestration

import (
	"strings"
	"unicode"
)

// normalizeText lowercases the text, trims leading and trailing
// punctuation and whitespace, and collapses internal whitespace runs so
// phrase and alias comparisons are insensitive to formatting.
func normalizeText(text string) string {
	lowered := strings.ToLower(text)
	trimmed := strings.TrimFunc(lowered, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.Join(strings.Fields(trimmed), " ")
}

func tokenize(text string) []string {
	normalized := normalizeText(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
