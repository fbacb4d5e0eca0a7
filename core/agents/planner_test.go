package agents

import (
	"context"
	"testing"

	orchestration "github.com/prismkit/prism-core/core"
	"github.com/prismkit/prism-core/core/skills"
)

type plannerSkill struct {
	id string
}

func (s plannerSkill) ID() string { return s.id }

func (s plannerSkill) Metadata() skills.Metadata {
	return skills.Metadata{Name: s.id}
}

func (s plannerSkill) ToolSchema() skills.ToolSchema {
	return skills.ToolSchema{Function: skills.FunctionSchema{Name: s.id}}
}

func (s plannerSkill) Execute(context.Context, skills.ToolCall) skills.Result {
	return skills.OK("done", nil)
}

func TestPlannerTargetsFirstEnabledTool(t *testing.T) {
	registry := skills.NewRegistry(func(id string) bool { return id != "disabled" })
	registry.Register(plannerSkill{id: "disabled"})
	registry.Register(plannerSkill{id: "reminders"})

	planner := NewPlanner(registry)
	plan, err := planner.Plan(context.Background(), orchestration.OrchestrationInput{UserText: "create a reminder"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(plan.ToolCalls))
	}
	call := plan.ToolCalls[0]
	if call.Name != "reminders" {
		t.Fatalf("expected the first enabled tool, got %q", call.Name)
	}
	if call.ID == "" {
		t.Fatalf("tool call must carry an id")
	}
	if len(call.Arguments) != 0 {
		t.Fatalf("expected empty arguments, got %v", call.Arguments)
	}
}

func TestPlannerWithoutToolsReturnsEmptyPlan(t *testing.T) {
	planner := NewPlanner(skills.NewRegistry(nil))

	plan, err := planner.Plan(context.Background(), orchestration.OrchestrationInput{UserText: "anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.ToolCalls) != 0 {
		t.Fatalf("expected no tool calls, got %v", plan.ToolCalls)
	}
}
