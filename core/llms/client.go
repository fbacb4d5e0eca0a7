package llms

import "context"

// Client is the minimal contract a completion backend has to satisfy.
type Client interface {
	Complete(ctx context.Context, request Request) (*Completion, error)
}
