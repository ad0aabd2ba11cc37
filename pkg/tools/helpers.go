package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Argument coercion for the flat tool parameter records. Structural typing is
// loose on purpose: every field is optional at the schema level and the
// per-operation predicate decides what is actually required.

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func int64Arg(args map[string]any, key string) int64 {
	switch value := args[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	}
	return 0
}

func intArg(args map[string]any, key string) int {
	return int(int64Arg(args, key))
}

func boolArg(args map[string]any, key string) bool {
	value, _ := args[key].(bool)
	return value
}

func objectArg(args map[string]any, key string) map[string]any {
	value, _ := args[key].(map[string]any)
	return value
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}

	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}

	return values
}

// field pairs a parameter name with whether the caller supplied it, so the
// per-operation predicates can report every missing field at once.
type field struct {
	name string
	set  bool
}

func str(name, value string) field {
	return field{name, value != ""}
}

func num(name string, value int64) field {
	return field{name, value != 0}
}

func obj(name string, value map[string]any) field {
	return field{name, value != nil}
}

func required(fields ...field) error {
	var missing []string

	for _, f := range fields {
		if !f.set {
			missing = append(missing, f.name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf(
		"missing required fields for this operation: %s",
		strings.Join(missing, ", "),
	)
}

/*
successEnvelope wraps a dispatch result in the uniform output shape every
command produces: a status line followed by the serialized payload.
*/
func successEnvelope(domain, operation string, payload any) *mcp.CallToolResult {
	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorEnvelope(fmt.Errorf("failed to serialize result: %w", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf(
				"%s %s operation completed successfully", domain, operation,
			)),
			mcp.NewTextContent(string(serialized)),
		},
	}
}

// invalidInput reports structural or cross-field validation failures. These
// never reach the gateway.
func invalidInput(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Invalid input: " + err.Error())
}

// errorEnvelope reports classified credential and upstream failures.
func errorEnvelope(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

// ack builds the synthetic acknowledgement payload for operations whose
// upstream response carries no body.
func ack(pairs ...string) map[string]any {
	payload := make(map[string]any, len(pairs)/2)

	for i := 0; i+1 < len(pairs); i += 2 {
		payload[pairs[i]] = pairs[i+1]
	}

	return payload
}
