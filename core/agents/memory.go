package agents

import (
	"context"

	orchestration "github.com/prismkit/prism-core/core"
)

// MemoryRecorder receives each final response. The default implementation
// only logs; persistence hangs off the session summary handoff instead.
type MemoryRecorder struct{}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(ctx context.Context, response orchestration.ResponseResult) error {
	logger.DebugContext(ctx, "recorded response", "length", len(response.Message))
	return nil
}
