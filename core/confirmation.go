package orchestration

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prismkit/prism-core/core/skills"
)

// ConfirmationDecision is the interpretation of a reply to a pending
// confirmation prompt.
type ConfirmationDecision string

const (
	ConfirmationConfirmed ConfirmationDecision = "confirmed"
	ConfirmationDenied    ConfirmationDecision = "denied"
	ConfirmationUnclear   ConfirmationDecision = "unclear"
)

var confirmationConfirmTokens = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {},
	"confirm": {}, "confirmed": {}, "ok": {}, "okay": {},
	"go": {}, "ahead": {},
}

var confirmationDenyTokens = map[string]struct{}{
	"no": {}, "nope": {}, "nah": {}, "cancel": {}, "stop": {},
	"never": {}, "dont": {}, "not": {},
}

var confirmationConfirmPhrases = []string{
	"go ahead",
	"do it",
	"please do",
	"sounds good",
}

var confirmationDenyPhrases = []string{
	"don't do that",
	"do not",
	"never mind",
	"no thanks",
}

// ParseConfirmation interprets a short reply to a yes/no confirmation
// prompt. Phrase matches take precedence over single tokens, and a reply
// carrying both confirm and deny tokens is unclear rather than a guess.
func ParseConfirmation(text string) ConfirmationDecision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return ConfirmationUnclear
	}

	for _, phrase := range confirmationConfirmPhrases {
		if strings.Contains(normalized, phrase) {
			return ConfirmationConfirmed
		}
	}
	for _, phrase := range confirmationDenyPhrases {
		if strings.Contains(normalized, phrase) {
			return ConfirmationDenied
		}
	}

	hasConfirm := false
	hasDeny := false
	for _, token := range confirmationTokens(normalized) {
		if _, ok := confirmationConfirmTokens[token]; ok {
			hasConfirm = true
		}
		if _, ok := confirmationDenyTokens[token]; ok {
			hasDeny = true
		}
	}

	switch {
	case hasConfirm && !hasDeny:
		return ConfirmationConfirmed
	case hasDeny && !hasConfirm:
		return ConfirmationDenied
	default:
		return ConfirmationUnclear
	}
}

// confirmationTokens splits on anything that is not a letter, with
// apostrophes removed so "don't" and "dont" compare equal.
func confirmationTokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '\'' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'))
	})
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.ReplaceAll(field, "'", "")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// PendingConfirmationState holds a tool call parked behind a yes/no
// question, together with its expiry.
type PendingConfirmationState struct {
	ID           uuid.UUID
	OriginalCall skills.ToolCall
	Prompt       string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// IsExpired reports whether the confirmation has outlived its window.
func (p PendingConfirmationState) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
