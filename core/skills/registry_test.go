package skills

import (
	"context"
	"testing"
)

type fakeSkill struct {
	id string
}

func (s fakeSkill) ID() string { return s.id }

func (s fakeSkill) Metadata() Metadata {
	return Metadata{Name: s.id, Description: "test skill"}
}

func (s fakeSkill) ToolSchema() ToolSchema {
	return ToolSchema{Function: FunctionSchema{Name: s.id}}
}

func (s fakeSkill) Execute(context.Context, ToolCall) Result {
	return OK("done", nil)
}

func TestRegistryResolvesByID(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(fakeSkill{id: "reminders"})

	if _, ok := registry.Skill("reminders"); !ok {
		t.Fatalf("expected to resolve registered skill")
	}
	if _, ok := registry.Skill("ghost"); ok {
		t.Fatalf("unexpected resolution of unregistered skill")
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(fakeSkill{id: "b"})
	registry.Register(fakeSkill{id: "a"})
	registry.Register(fakeSkill{id: "c"})

	all := registry.All()
	want := []string{"b", "a", "c"}
	for i, skill := range all {
		if skill.ID() != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, skill.ID(), want[i])
		}
	}
}

func TestRegistryEnablementGating(t *testing.T) {
	enabled := map[string]bool{"reminders": true, "playlist": false}
	registry := NewRegistry(func(id string) bool { return enabled[id] })
	registry.Register(fakeSkill{id: "reminders"})
	registry.Register(fakeSkill{id: "playlist"})

	if got := registry.Enabled(); len(got) != 1 || got[0].ID() != "reminders" {
		t.Fatalf("unexpected enabled set: %v", got)
	}

	schemas := registry.EnabledToolSchemas()
	if len(schemas) != 1 || schemas[0].Function.Name != "reminders" {
		t.Fatalf("unexpected schemas: %v", schemas)
	}
}

func TestRegistryNilLookupEnablesAll(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(fakeSkill{id: "a"})
	registry.Register(fakeSkill{id: "b"})

	if got := len(registry.Enabled()); got != 2 {
		t.Fatalf("expected all skills enabled, got %d", got)
	}
}

func TestEnabledKey(t *testing.T) {
	if got := EnabledKey("reminders"); got != "skills.reminders.enabled" {
		t.Fatalf("EnabledKey = %q", got)
	}
}

func TestPendingConfirmationResult(t *testing.T) {
	result := PendingConfirmation("Remove it?")

	if result.Status != StatusPendingConfirmation {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Summary != "Remove it?" {
		t.Fatalf("summary = %q, want the prompt", result.Summary)
	}
	if result.Confirmation == nil || result.Confirmation.Prompt != "Remove it?" {
		t.Fatalf("confirmation = %+v", result.Confirmation)
	}

	output := result.ToolOutput()
	if output["status"] != "pending_confirmation" {
		t.Fatalf("tool output status = %v", output["status"])
	}
}
