package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prismkit/prism-core/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string

	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      model,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Complete sends a non-streaming generateContent request.
func (c *Client) Complete(ctx context.Context, request llms.Request) (*llms.Completion, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()

	if c == nil || c.apiKey == "" {
		span.RecordError(llms.ErrConfigMissing)
		span.SetStatus(codes.Error, llms.ErrConfigMissing.Error())
		return nil, llms.ErrConfigMissing
	}

	model := request.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		span.RecordError(llms.ErrConfigMissing)
		span.SetStatus(codes.Error, llms.ErrConfigMissing.Error())
		return nil, llms.ErrConfigMissing
	}
	span.SetAttributes(attribute.String("request.model", model))

	reqBody := geminiRequest{
		Contents:          toContents(request.Messages),
		SystemInstruction: systemInstruction(request.Messages),
	}
	if request.Temperature != 0 || request.MaxTokens != 0 {
		reqBody.GenerationConfig = &generationConfig{
			Temperature:     request.Temperature,
			MaxOutputTokens: request.MaxTokens,
		}
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mapped := llms.Map(err)
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		return nil, mapped
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		mapped := statusError(resp.StatusCode, fmt.Sprintf("%s: %s", resp.Status, errorBody))
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		return nil, mapped
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llms.Map(fmt.Errorf("error reading response body: %w", err))
	}

	var body geminiResponse
	if err := json.Unmarshal(respBodyBytes, &body); err != nil {
		return nil, &llms.Error{Kind: llms.KindDecoding, Detail: err.Error()}
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return nil, &llms.Error{Kind: llms.KindDecoding, Detail: "response contained no candidates"}
	}

	text := strings.Builder{}
	for _, part := range body.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	completion := &llms.Completion{
		Message: llms.Message{Role: llms.RoleAssistant, Content: text.String()},
	}
	if body.UsageMetadata != nil {
		completion.Usage = &llms.Usage{
			PromptTokens:     body.UsageMetadata.PromptTokenCount,
			CompletionTokens: body.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      body.UsageMetadata.TotalTokenCount,
		}
	}

	return completion, nil
}

func statusError(statusCode int, detail string) *llms.Error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &llms.Error{Kind: llms.KindUnauthorized, Detail: detail}
	case statusCode >= 500:
		return &llms.Error{Kind: llms.KindServer, Detail: detail}
	case statusCode >= 400:
		return &llms.Error{Kind: llms.KindInvalidRequest, Detail: detail}
	default:
		return &llms.Error{Kind: llms.KindUnknown, Detail: detail}
	}
}

func toContents(messages []llms.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == llms.RoleAssistant {
			role = "model"
		}
		if m.Role == llms.RoleSystem {
			// System messages travel through systemInstruction instead.
			continue
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return contents
}

func systemInstruction(messages []llms.Message) *geminiContent {
	parts := []geminiPart{}
	for _, m := range messages {
		if m.Role == llms.RoleSystem && m.Content != "" {
			parts = append(parts, geminiPart{Text: m.Content})
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &geminiContent{Parts: parts}
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}
