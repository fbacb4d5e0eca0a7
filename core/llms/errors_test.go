package llms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestMapClassifiesErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"canonical passthrough", &Error{Kind: KindServer}, KindServer},
		{"wrapped canonical", fmt.Errorf("request failed: %w", &Error{Kind: KindUnauthorized}), KindUnauthorized},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"url error", &url.Error{Op: "Post", URL: "http://localhost", Err: errors.New("refused")}, KindNetwork},
		{"json syntax", &json.SyntaxError{}, KindDecoding},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, c := range cases {
		if got := Map(c.err).Kind; got != c.want {
			t.Fatalf("%s: Map kind = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestIsConfigMissing(t *testing.T) {
	if !IsConfigMissing(ErrConfigMissing) {
		t.Fatalf("ErrConfigMissing must classify as config missing")
	}
	if !IsConfigMissing(fmt.Errorf("completion failed: %w", ErrConfigMissing)) {
		t.Fatalf("wrapped config-missing must classify")
	}
	if IsConfigMissing(&Error{Kind: KindServer}) {
		t.Fatalf("server errors are not configuration gaps")
	}
	if IsConfigMissing(errors.New("boom")) {
		t.Fatalf("arbitrary errors are not configuration gaps")
	}
}

func TestFallbackMessages(t *testing.T) {
	cases := map[Kind]string{
		KindUnauthorized:   "LLM authentication failed.",
		KindInvalidRequest: "LLM configuration is incomplete.",
		KindDecoding:       "LLM response could not be decoded.",
		KindTimeout:        "LLM request timed out.",
		KindNetwork:        "LLM network error.",
		KindServer:         "LLM server error.",
		KindUnknown:        "LLM error.",
	}
	for kind, want := range cases {
		if got := FallbackMessage(kind); got != want {
			t.Fatalf("FallbackMessage(%q) = %q, want %q", kind, got, want)
		}
	}
}
