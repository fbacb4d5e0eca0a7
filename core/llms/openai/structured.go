package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/prismkit/prism-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
)

// CompleteJSONSchema prompts the model for a reply constrained to the JSON
// schema reflected from outputSchema and unmarshals the reply into it.
func CompleteJSONSchema[T any](
	ctx context.Context,
	client *Client,
	prompt string,
	systemPrompt string,
	outputSchema T,
) (*T, error) {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	if client == nil || client.apiKey == "" || client.model == "" {
		return nil, llms.ErrConfigMissing
	}

	messages := []message{}
	if systemPrompt != "" {
		messages = append(messages, message{Role: string(llms.RoleSystem), Content: systemPrompt})
	}
	messages = append(messages, message{Role: string(llms.RoleUser), Content: prompt})

	reflector := jsonschema.Reflector{DoNotReference: true}
	var (
		schema         *jsonschema.Schema
		outputTypeName string
	)
	if reflect.TypeOf(outputSchema).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(outputSchema).Elem())
		outputTypeName = reflect.TypeOf(outputSchema).Elem().Name()
	} else {
		schema = reflector.Reflect(outputSchema)
		outputTypeName = reflect.TypeOf(outputSchema).Name()
	}

	schemaString, _ := schema.MarshalJSON()
	span.SetAttributes(attribute.String("request.schema", string(schemaString)))

	reqBody := requestBody{
		Model:    client.model,
		Messages: messages,
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   outputTypeName,
				Schema: *schema,
				Strict: true,
			},
		},
	}

	responseBody, err := client.do(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(responseBody.Choices) == 0 {
		return nil, &llms.Error{Kind: llms.KindDecoding, Detail: "response contained no choices"}
	}

	content := responseBody.Choices[0].Message.Content
	split := strings.Split(content, "```")
	if len(split) > 1 {
		content = split[1]
	}
	if err := json.Unmarshal([]byte(content), &outputSchema); err != nil {
		err := &llms.Error{Kind: llms.KindDecoding, Detail: fmt.Sprintf("error unmarshalling response: %v", err)}
		span.RecordError(err)
		return nil, err
	}

	return &outputSchema, nil
}

type chatResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name string `json:"name"`
	// Description further identifies the schema in the response.
	Description string `json:"description,omitempty"`
	// Schema constrains the generated content.
	Schema jsonschema.Schema `json:"schema"`
	Strict bool              `json:"strict"`
}
