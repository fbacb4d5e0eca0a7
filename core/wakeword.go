package orchestration

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/prismkit/prism-core/core/events"
)

// WakeWordConfig tunes both the acoustic gate and the text fallback.
type WakeWordConfig struct {
	Enabled bool
	// Aliases are the spoken names that count as the wake word.
	Aliases []string
	// Sensitivity in [0, 1] shifts the acoustic confidence floor; higher
	// sensitivity lowers the floor.
	Sensitivity float64
	// MinConfidence is the confidence floor applied to text detections
	// and, after the sensitivity adjustment, to acoustic ones.
	MinConfidence float64
	// Cooldown suppresses repeated acoustic triggers after an accepted one.
	Cooldown time.Duration
}

// Clamp01 bounds a value to [0, 1].
func Clamp01(value float64) float64 {
	return min(max(value, 0), 1)
}

// AcousticMinConfidence is the effective confidence floor for acoustic
// wake events after applying the sensitivity adjustment.
func (c WakeWordConfig) AcousticMinConfidence() float64 {
	return Clamp01(c.MinConfidence + (0.5-c.Sensitivity)*0.2)
}

// WakeWordMatch is a text-path wake-word hit: the alias that fired, the
// command remainder with the alias removed, and the wake event to open
// the conversation window with.
type WakeWordMatch struct {
	MatchedAlias string
	StrippedText string
	Event        events.WakeWordEvent
}

type textAlias struct {
	original   string
	normalized string
	strip      *regexp.Regexp
}

// WakeWordTextDetector finds wake word aliases in transcript text. It is
// the fallback path for when the acoustic detector misses; matches are
// whole-word and case-insensitive.
type WakeWordTextDetector struct {
	minConfidence float64
	aliases       []textAlias
}

func NewWakeWordTextDetector(aliases []string, minConfidence float64) *WakeWordTextDetector {
	detector := &WakeWordTextDetector{minConfidence: minConfidence}
	for _, alias := range aliases {
		normalized := normalizeText(alias)
		if normalized == "" {
			continue
		}
		parts := strings.Fields(normalized)
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		detector.aliases = append(detector.aliases, textAlias{
			original:   alias,
			normalized: normalized,
			strip:      regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`),
		})
	}
	return detector
}

// Detect reports a wake-word mention in the text, or nil. Detections
// with a confidence below the floor are suppressed even when the alias
// text is present. The first matching alias in declaration order wins;
// its occurrence is stripped out of the returned command remainder.
func (d *WakeWordTextDetector) Detect(text string, confidence *float64, timestamp time.Time) *WakeWordMatch {
	normalized := normalizeText(text)
	if normalized == "" {
		return nil
	}
	if confidence != nil && *confidence < d.minConfidence {
		return nil
	}

	for _, alias := range d.aliases {
		if !containsAlias(normalized, alias.normalized) {
			continue
		}
		return &WakeWordMatch{
			MatchedAlias: alias.original,
			StrippedText: cleanRemainder(alias.strip.ReplaceAllString(text, " ")),
			Event: events.WakeWordEvent{
				Source:     events.WakeWordSourceText,
				Confidence: confidence,
				Timestamp:  timestamp,
			},
		}
	}
	return nil
}

// containsAlias tests word-boundary containment on normalized text: the
// alias must be the whole text or sit on a space boundary within it.
func containsAlias(normalized, alias string) bool {
	return normalized == alias ||
		strings.HasPrefix(normalized, alias+" ") ||
		strings.HasSuffix(normalized, " "+alias) ||
		strings.Contains(normalized, " "+alias+" ")
}

func cleanRemainder(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return strings.TrimFunc(collapsed, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}
