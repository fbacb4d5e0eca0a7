package skills

import "context"

// ToolCall is a tool invocation request as produced by the planner.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult pairs an executed call with the skill's structured result.
type ToolResult struct {
	Call   ToolCall
	Result Result
}

// Metadata describes a skill for display and enablement surfaces.
type Metadata struct {
	Name        string
	Description string
}

// Skill is a pluggable executable unit bound to a named tool call.
//
// Execute never fails at the call boundary: skills capture their own errors
// in the returned Result so one failing tool cannot end the conversation.
type Skill interface {
	ID() string
	Metadata() Metadata
	ToolSchema() ToolSchema
	Execute(ctx context.Context, call ToolCall) Result
}
