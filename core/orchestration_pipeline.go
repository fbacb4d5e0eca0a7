package orchestration

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prismkit/prism-core/core/llms"
	"github.com/prismkit/prism-core/core/skills"
)

// OrchestrationInput is the user turn handed to the pipeline, with the
// session history available to the agents.
type OrchestrationInput struct {
	UserText          string
	ConversationTurns []Turn
}

// RouterDecision is the router's verdict on whether tools are needed.
type RouterDecision struct {
	NeedsTools bool
}

// PlanResult is the planner's ordered list of tool calls.
type PlanResult struct {
	ToolCalls []skills.ToolCall
}

// ResponseResult carries the final user-facing message.
type ResponseResult struct {
	Message string
}

// ResponderInput bundles the user turn with the tool summaries collected
// during execution.
type ResponderInput struct {
	Input         OrchestrationInput
	ToolSummaries []string
}

type RouterAgent interface {
	Route(ctx context.Context, input OrchestrationInput) (RouterDecision, error)
}

type PlannerAgent interface {
	Plan(ctx context.Context, input OrchestrationInput) (PlanResult, error)
}

type ResponderAgent interface {
	Respond(ctx context.Context, input ResponderInput) (ResponseResult, error)
}

type MemoryAgent interface {
	Record(ctx context.Context, response ResponseResult) error
}

const defaultConfirmationTTL = 15 * time.Second

const (
	confirmationCancelledMessage = "Okay, I've cancelled that."
	confirmationRepromptMessage  = "I still need a yes or no before I continue."
)

// OrchestrationPipeline routes a user turn through the router, planner,
// and responder agents, executes planned tool calls against the skill
// registry, and manages the single pending confirmation slot.
type OrchestrationPipeline struct {
	router    RouterAgent
	planner   PlannerAgent
	responder ResponderAgent
	memory    MemoryAgent
	registry  *skills.Registry

	pendingMu sync.Mutex
	pending   *PendingConfirmationState

	confirmationTTL time.Duration
	now             func() time.Time
}

func NewOrchestrationPipeline(
	registry *skills.Registry,
	router RouterAgent,
	planner PlannerAgent,
	responder ResponderAgent,
	memory MemoryAgent,
) *OrchestrationPipeline {
	return &OrchestrationPipeline{
		router:          router,
		planner:         planner,
		responder:       responder,
		memory:          memory,
		registry:        registry,
		confirmationTTL: defaultConfirmationTTL,
		now:             time.Now,
	}
}

// PendingConfirmation returns a copy of the outstanding confirmation, if
// one exists and has not expired.
func (p *OrchestrationPipeline) PendingConfirmation() *PendingConfirmationState {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()

	if p.pending == nil || p.pending.IsExpired(p.now()) {
		return nil
	}
	pending := *p.pending
	return &pending
}

// Run processes one user turn and returns the final response together
// with the results of any executed tools.
//
// The pending confirmation slot is always consulted first, so a "yes" or
// "no" reply resolves the parked tool call before any routing happens.
// Expiry is lazy: an outlived confirmation is discarded here and the turn
// falls through as a fresh command.
func (p *OrchestrationPipeline) Run(ctx context.Context, input OrchestrationInput) (ResponseResult, []skills.ToolResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.run")
	defer span.End()

	if response, toolResults, handled := p.resolvePendingConfirmation(ctx, input); handled {
		return response, toolResults, nil
	}

	decision, err := p.router.Route(ctx, input)
	if err != nil {
		return ResponseResult{}, nil, err
	}

	var toolResults []skills.ToolResult
	if decision.NeedsTools {
		plan, err := p.planner.Plan(ctx, input)
		if err != nil {
			return ResponseResult{}, nil, err
		}
		toolResults = p.executeTools(ctx, plan.ToolCalls)
		p.registerConfirmation(toolResults)
	}

	response := p.respond(ctx, input, toolResults)
	return response, toolResults, nil
}

// resolvePendingConfirmation handles the turn as a confirmation reply
// when an unexpired confirmation is outstanding. It reports false when
// the turn should proceed as a fresh command.
func (p *OrchestrationPipeline) resolvePendingConfirmation(ctx context.Context, input OrchestrationInput) (ResponseResult, []skills.ToolResult, bool) {
	p.pendingMu.Lock()
	if p.pending != nil && p.pending.IsExpired(p.now()) {
		logger.InfoContext(ctx, "pending confirmation expired", "confirmation_id", p.pending.ID)
		p.pending = nil
	}
	if p.pending == nil {
		p.pendingMu.Unlock()
		return ResponseResult{}, nil, false
	}
	pending := *p.pending

	switch ParseConfirmation(input.UserText) {
	case ConfirmationConfirmed:
		p.pending = nil
		p.pendingMu.Unlock()

		call := confirmedCall(pending.OriginalCall)
		toolResults := p.executeTools(ctx, []skills.ToolCall{call})
		return p.respond(ctx, input, toolResults), toolResults, true

	case ConfirmationDenied:
		p.pending = nil
		p.pendingMu.Unlock()
		return ResponseResult{Message: confirmationCancelledMessage}, nil, true

	default:
		p.pendingMu.Unlock()
		return ResponseResult{Message: confirmationRepromptMessage}, nil, true
	}
}

// confirmedCall rebuilds the original call with confirmed=true added, so
// the skill can tell an approved re-invocation from a first attempt.
func confirmedCall(original skills.ToolCall) skills.ToolCall {
	arguments := make(map[string]any, len(original.Arguments)+1)
	for key, value := range original.Arguments {
		arguments[key] = value
	}
	arguments["confirmed"] = true

	return skills.ToolCall{
		ID:        original.ID,
		Name:      original.Name,
		Arguments: arguments,
	}
}

func (p *OrchestrationPipeline) executeTools(ctx context.Context, calls []skills.ToolCall) []skills.ToolResult {
	var results []skills.ToolResult
	for _, call := range calls {
		skill, ok := p.registry.Skill(call.Name)
		if !ok {
			// The planner can hallucinate tool names; skipping keeps one
			// bad call from failing the whole turn.
			logger.WarnContext(ctx, "skipping unknown skill", "skill_id", call.Name)
			continue
		}
		results = append(results, skills.ToolResult{
			Call:   call,
			Result: skill.Execute(ctx, call),
		})
	}
	return results
}

// registerConfirmation stores the first pending-confirmation result as
// the active confirmation. Later requests in the same pass are ignored.
func (p *OrchestrationPipeline) registerConfirmation(results []skills.ToolResult) {
	for _, result := range results {
		confirmation := result.Result.Confirmation
		if result.Result.Status != skills.StatusPendingConfirmation || confirmation == nil {
			continue
		}

		now := p.now()
		p.pendingMu.Lock()
		p.pending = &PendingConfirmationState{
			ID:           confirmation.ID,
			OriginalCall: result.Call,
			Prompt:       confirmation.Prompt,
			CreatedAt:    now,
			ExpiresAt:    now.Add(p.confirmationTTL),
		}
		p.pendingMu.Unlock()
		return
	}
}

// respond runs the responder over the collected summaries. LLM failures
// are mapped to a fixed user-facing message so a single bad request never
// ends the conversation.
func (p *OrchestrationPipeline) respond(ctx context.Context, input OrchestrationInput, toolResults []skills.ToolResult) ResponseResult {
	summaries := toolSummaries(toolResults)

	response, err := p.responder.Respond(ctx, ResponderInput{
		Input:         input,
		ToolSummaries: summaries,
	})
	if err != nil {
		mapped := llms.Map(err)
		logger.ErrorContext(ctx, "responder failed", "error", err, "kind", mapped.Kind)
		response = ResponseResult{Message: llms.FallbackMessage(mapped.Kind)}
	}

	if p.memory != nil {
		if err := p.memory.Record(ctx, response); err != nil {
			logger.WarnContext(ctx, "memory agent failed", "error", err)
		}
	}
	return response
}

func toolSummaries(results []skills.ToolResult) []string {
	var summaries []string
	for _, result := range results {
		summary := strings.TrimSpace(result.Result.Summary)
		if summary == "" {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
