package agents

import (
	"context"

	"github.com/google/uuid"
	orchestration "github.com/prismkit/prism-core/core"
	"github.com/prismkit/prism-core/core/skills"
)

// Planner turns a routed request into tool calls. Until model-driven
// planning lands it targets the first enabled tool with empty arguments,
// leaving argument extraction to the skill's own clarification flow.
type Planner struct {
	registry *skills.Registry
}

func NewPlanner(registry *skills.Registry) *Planner {
	return &Planner{registry: registry}
}

func (p *Planner) Plan(ctx context.Context, input orchestration.OrchestrationInput) (orchestration.PlanResult, error) {
	_, span := tracer.Start(ctx, "agents.plan")
	defer span.End()

	tools := p.registry.EnabledToolSchemas()
	if len(tools) == 0 {
		return orchestration.PlanResult{}, nil
	}

	call := skills.ToolCall{
		ID:        uuid.NewString(),
		Name:      tools[0].Function.Name,
		Arguments: map[string]any{},
	}
	return orchestration.PlanResult{ToolCalls: []skills.ToolCall{call}}, nil
}
