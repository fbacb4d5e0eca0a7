package skills

import "strings"

// Arguments provides typed access to a tool call's argument payload.
type Arguments struct {
	values map[string]any
}

func NewArguments(call ToolCall) Arguments {
	if call.Arguments == nil {
		return Arguments{values: map[string]any{}}
	}
	return Arguments{values: call.Arguments}
}

// String returns the trimmed string value for key, if present.
func (a Arguments) String(key string) (string, bool) {
	value, ok := a.values[key]
	if !ok {
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// Bool returns the boolean value for key, if present.
func (a Arguments) Bool(key string) (bool, bool) {
	value, ok := a.values[key]
	if !ok {
		return false, false
	}
	flag, ok := value.(bool)
	if !ok {
		return false, false
	}
	return flag, true
}
