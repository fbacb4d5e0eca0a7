package skills

import "testing"

func TestArgumentsString(t *testing.T) {
	args := NewArguments(ToolCall{Arguments: map[string]any{
		"title":  "  groceries  ",
		"count":  3,
		"silent": true,
	}})

	if got, ok := args.String("title"); !ok || got != "groceries" {
		t.Fatalf("String(title) = %q, %v", got, ok)
	}
	if _, ok := args.String("count"); ok {
		t.Fatalf("non-string value must not resolve as string")
	}
	if _, ok := args.String("missing"); ok {
		t.Fatalf("missing key must not resolve")
	}
	if got, ok := args.Bool("silent"); !ok || !got {
		t.Fatalf("Bool(silent) = %v, %v", got, ok)
	}
}
