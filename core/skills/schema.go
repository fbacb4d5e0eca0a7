package skills

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// ToolSchema is the function-call definition advertised to the planner.
type ToolSchema struct {
	Function FunctionSchema `json:"function"`
}

type FunctionSchema struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// NewToolSchema reflects a JSON schema for the parameters struct.
func NewToolSchema(name, description string, parameters any) ToolSchema {
	schema := ToolSchema{Function: FunctionSchema{Name: name, Description: description}}
	if parameters == nil {
		return schema
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	if reflect.TypeOf(parameters).Kind() == reflect.Ptr {
		schema.Function.Parameters = reflector.ReflectFromType(reflect.TypeOf(parameters).Elem())
	} else {
		schema.Function.Parameters = reflector.Reflect(parameters)
	}
	return schema
}
