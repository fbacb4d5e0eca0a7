package skills

import "github.com/google/uuid"

// Status describes the outcome of a skill execution.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusError               Status = "error"
	StatusNeedsClarification  Status = "needs_clarification"
	StatusPendingConfirmation Status = "pending_confirmation"
)

// Confirmation is the yes/no gate a skill raises before a destructive action.
type Confirmation struct {
	ID     uuid.UUID
	Prompt string
}

// Result is the tagged outcome of a skill execution.
type Result struct {
	Status       Status
	Summary      string
	Data         map[string]any
	Detail       string
	Confirmation *Confirmation
}

func OK(summary string, data map[string]any) Result {
	return Result{Status: StatusOK, Summary: summary, Data: data}
}

func Error(summary string, err error) Result {
	result := Result{Status: StatusError, Summary: summary}
	if err != nil {
		result.Detail = err.Error()
	}
	return result
}

func NeedsClarification(summary string) Result {
	return Result{Status: StatusNeedsClarification, Summary: summary}
}

func PendingConfirmation(prompt string) Result {
	return Result{
		Status:       StatusPendingConfirmation,
		Summary:      prompt,
		Confirmation: &Confirmation{ID: uuid.New(), Prompt: prompt},
	}
}

// ToolOutput renders the result as a JSON-encodable payload for tool
// responses.
func (r Result) ToolOutput() map[string]any {
	payload := map[string]any{
		"status":  string(r.Status),
		"summary": r.Summary,
	}
	if r.Data != nil {
		payload["data"] = r.Data
	}
	if r.Detail != "" {
		payload["error"] = r.Detail
	}
	if r.Confirmation != nil {
		payload["pendingConfirmation"] = map[string]any{
			"id":     r.Confirmation.ID.String(),
			"prompt": r.Confirmation.Prompt,
		}
	}
	return payload
}
