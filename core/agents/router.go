// Package agents provides the router, planner, responder, and memory
// stages consumed by the orchestration pipeline.
package agents

import (
	"context"
	"strings"

	orchestration "github.com/prismkit/prism-core/core"
	"github.com/prismkit/prism-core/core/llms/openai"
)

// routingVerdict is the structured output requested from the LLM router.
type routingVerdict struct {
	NeedsTools bool   `json:"needs_tools" jsonschema:"description=Whether the request requires invoking a tool"`
	Reason     string `json:"reason,omitempty" jsonschema:"description=Short justification for the verdict"`
}

const routerSystemPrompt = "You decide whether a voice assistant request needs tools " +
	"(creating reminders, controlling playback, querying data) or can be answered " +
	"directly. Answer with the provided schema only."

// Router decides whether a turn needs tool execution. With an LLM client
// it asks for a structured verdict; without one, or when the call fails,
// it falls back to a keyword heuristic.
type Router struct {
	llm *openai.Client
}

type RouterOption func(*Router)

// WithRouterLLM enables structured LLM routing.
func WithRouterLLM(client *openai.Client) RouterOption {
	return func(r *Router) { r.llm = client }
}

func NewRouter(opts ...RouterOption) *Router {
	router := &Router{}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

func (r *Router) Route(ctx context.Context, input orchestration.OrchestrationInput) (orchestration.RouterDecision, error) {
	ctx, span := tracer.Start(ctx, "agents.route")
	defer span.End()

	if r.llm != nil {
		verdict, err := openai.CompleteJSONSchema(ctx, r.llm, input.UserText, routerSystemPrompt, routingVerdict{})
		if err == nil {
			return orchestration.RouterDecision{NeedsTools: verdict.NeedsTools}, nil
		}
		logger.WarnContext(ctx, "llm routing failed, using heuristic", "error", err)
	}

	return orchestration.RouterDecision{NeedsTools: heuristicNeedsTools(input.UserText)}, nil
}

func heuristicNeedsTools(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	return strings.Contains(trimmed, "create") || strings.Contains(trimmed, "remind")
}
