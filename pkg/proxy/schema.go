package proxy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// gatewayRequestSchema constrains the JSON types of the gateway request.
// Value rules live in pipeline.Validate so both transports share them.
const gatewayRequestSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"prompt":      {"type": "string"},
		"provider":    {"type": "string"},
		"temperature": {"type": "number"},
		"maxTokens":   {"type": "integer"},
		"userId":      {"type": "string"},
		"sessionId":   {"type": "string"}
	}
}`

var compileGatewaySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(gatewayRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile gateway request schema: %w", err)
	}
	return schema, nil
})

// ValidateGatewaySchema checks body against the gateway request schema and
// returns one detail per failed keyword, sorted. body must be valid JSON.
func ValidateGatewaySchema(body []byte) []string {
	schema, err := compileGatewaySchema()
	if err != nil {
		return []string{err.Error()}
	}

	result := schema.ValidateJSON(body)
	if result.IsValid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors))
	for keyword, evalErr := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", keyword, evalErr.Error()))
	}
	sort.Strings(details)
	if len(details) == 0 {
		details = append(details, "body: does not match the request schema")
	}
	return details
}
