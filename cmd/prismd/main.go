package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	orchestration "github.com/prismkit/prism-core/core"
	"github.com/prismkit/prism-core/core/agents"
	"github.com/prismkit/prism-core/core/llms"
	"github.com/prismkit/prism-core/core/llms/gemini"
	"github.com/prismkit/prism-core/core/llms/openai"
	"github.com/prismkit/prism-core/core/settings"
	"github.com/prismkit/prism-core/core/skills"
	"github.com/prismkit/prism-core/core/speechtotext/remote"
)

// Options are interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Settings string `short:"c" long:"settings" description:"settings YAML path"`
	STTURL   string `long:"stt-url" description:"websocket URL of the speech recognition daemon"`
}

func main() {
	opts := &Options{}
	if _, err := flags.Parse(opts); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Fatalf("prismd: %v", err)
	}
}

func run(opts *Options) error {
	cfg := settings.Default()
	if opts.Settings != "" {
		loaded, err := settings.Load(opts.Settings)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	registry := skills.NewRegistry(cfg.SkillEnabled)

	var routerOpts []agents.RouterOption
	var responderOpts []agents.ResponderOption
	if client, model := llmClient(cfg.LLM); client != nil {
		responderOpts = append(responderOpts, agents.WithResponderLLM(client, model))
		if openaiClient, ok := client.(*openai.Client); ok {
			routerOpts = append(routerOpts, agents.WithRouterLLM(openaiClient))
		}
	}

	pipeline := orchestration.NewOrchestrationPipeline(
		registry,
		agents.NewRouter(routerOpts...),
		agents.NewPlanner(registry),
		agents.NewResponder(responderOpts...),
		agents.NewMemoryRecorder(),
	)

	var pipelineOpts []orchestration.PipelineOption
	if opts.STTURL != "" {
		pipelineOpts = append(pipelineOpts,
			orchestration.WithSpeechToText(remote.NewTranscriptionClient(opts.STTURL)),
		)
	}

	runner := orchestration.NewPipeline(
		orchestration.ConfigFromSettings(cfg),
		pipeline,
		pipelineOpts...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := runner.Run(ctx,
		orchestration.WithResponseCallback(func(response orchestration.ResponseResult, _ []skills.ToolResult) {
			fmt.Println(response.Message)
		}),
		orchestration.WithConversationStateCallback(func(state orchestration.ConversationState) {
			log.Printf("conversation open=%v turns=%d", state.IsOpen, state.TurnsUsed)
		}),
		orchestration.WithUnknownSpeakerCallback(func(prompt orchestration.UnknownSpeakerPrompt) {
			fmt.Println(prompt.Reason)
		}),
		orchestration.WithErrorCallback(func(err error) {
			log.Printf("pipeline error: %v", err)
		}),
	)
	if err != nil {
		return err
	}
	defer runner.Close()

	<-ctx.Done()
	return nil
}

// llmClient builds the configured provider client, or nil when the
// provider is unset so the responder uses its deterministic fallback.
func llmClient(cfg settings.LLM) (llms.Client, string) {
	switch cfg.Provider {
	case "openai":
		var opts []openai.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.NewClient(cfg.APIKey, cfg.Model, opts...), cfg.Model
	case "gemini":
		var opts []gemini.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		return gemini.NewClient(cfg.APIKey, cfg.Model, opts...), cfg.Model
	default:
		return nil, ""
	}
}
