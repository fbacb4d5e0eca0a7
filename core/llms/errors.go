package llms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind is the canonical classification of an LLM-layer failure.
type Kind string

const (
	KindUnauthorized   Kind = "unauthorized"
	KindInvalidRequest Kind = "invalid_request"
	KindDecoding       Kind = "decoding"
	KindTimeout        Kind = "timeout"
	KindNetwork        Kind = "network"
	KindServer         Kind = "server"
	KindUnknown        Kind = "unknown"
)

// Error carries a canonical kind plus backend detail.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// ErrConfigMissing signals that no completion backend is configured. It maps
// to the invalid-request kind so callers can degrade to a deterministic
// fallback instead of failing the conversation.
var ErrConfigMissing = &Error{Kind: KindInvalidRequest, Detail: "llm configuration is missing"}

// IsConfigMissing reports whether err represents a configuration gap rather
// than a transient failure.
func IsConfigMissing(err error) bool {
	var llmErr *Error
	if !errors.As(err, &llmErr) {
		return false
	}
	return llmErr.Kind == KindInvalidRequest
}

// Map normalizes an arbitrary error into a canonical *Error.
func Map(err error) *Error {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Detail: err.Error()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Detail: netErr.Error()}
		}
		return &Error{Kind: KindNetwork, Detail: netErr.Error()}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{Kind: KindNetwork, Detail: urlErr.Error()}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &Error{Kind: KindDecoding, Detail: "unable to decode response"}
	}

	return &Error{Kind: KindUnknown, Detail: err.Error()}
}

// FallbackMessage returns the fixed user-facing string for a canonical kind.
func FallbackMessage(kind Kind) string {
	switch kind {
	case KindUnauthorized:
		return "LLM authentication failed."
	case KindInvalidRequest:
		return "LLM configuration is incomplete."
	case KindDecoding:
		return "LLM response could not be decoded."
	case KindTimeout:
		return "LLM request timed out."
	case KindNetwork:
		return "LLM network error."
	case KindServer:
		return "LLM server error."
	default:
		return "LLM error."
	}
}
