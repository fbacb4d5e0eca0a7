package openai

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

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible chat-completions endpoint.
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

// Complete sends a non-streaming chat-completions request.
func (c *Client) Complete(ctx context.Context, request llms.Request) (*llms.Completion, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()

	if c == nil || c.apiKey == "" || (c.model == "" && request.Model == "") {
		span.RecordError(llms.ErrConfigMissing)
		span.SetStatus(codes.Error, llms.ErrConfigMissing.Error())
		return nil, llms.ErrConfigMissing
	}

	model := request.Model
	if model == "" {
		model = c.model
	}
	span.SetAttributes(attribute.String("request.model", model))

	reqBody := requestBody{
		Model:       model,
		Messages:    toMessages(request.Messages),
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	}

	responseBody, err := c.do(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(responseBody.Choices) == 0 {
		err := &llms.Error{Kind: llms.KindDecoding, Detail: "response contained no choices"}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	completion := &llms.Completion{
		Message: llms.Message{
			Role:    llms.RoleAssistant,
			Content: responseBody.Choices[0].Message.Content,
		},
	}
	if responseBody.Usage != nil {
		completion.Usage = &llms.Usage{
			PromptTokens:     responseBody.Usage.PromptTokens,
			CompletionTokens: responseBody.Usage.CompletionTokens,
			TotalTokens:      responseBody.Usage.TotalTokens,
		}
	}

	return completion, nil
}

func (c *Client) do(ctx context.Context, reqBody requestBody) (*responseBody, error) {
	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, llms.Map(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, readErr := io.ReadAll(resp.Body)
		detail := resp.Status
		if readErr == nil && len(errorBody) > 0 {
			detail = fmt.Sprintf("%s: %s", resp.Status, errorBody)
		}
		return nil, statusError(resp.StatusCode, detail)
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llms.Map(fmt.Errorf("error reading response body: %w", err))
	}

	var body responseBody
	if err := json.Unmarshal(respBodyBytes, &body); err != nil {
		return nil, &llms.Error{Kind: llms.KindDecoding, Detail: err.Error()}
	}

	return &body, nil
}

func statusError(statusCode int, detail string) *llms.Error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &llms.Error{Kind: llms.KindUnauthorized, Detail: detail}
	case statusCode == http.StatusRequestTimeout:
		return &llms.Error{Kind: llms.KindTimeout, Detail: detail}
	case statusCode >= 500:
		return &llms.Error{Kind: llms.KindServer, Detail: detail}
	case statusCode >= 400:
		return &llms.Error{Kind: llms.KindInvalidRequest, Detail: detail}
	default:
		return &llms.Error{Kind: llms.KindUnknown, Detail: detail}
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toMessages(messages []llms.Message) []message {
	out := make([]message, 0, len(messages))
	for _, m := range messages {
		out = append(out, message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

type requestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}
