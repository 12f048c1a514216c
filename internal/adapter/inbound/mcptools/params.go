package mcptools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// requiredString extracts a required non-empty string argument.
func requiredString(req mcp.CallToolRequest, key string) (string, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %s must be a non-empty string", key)
	}
	return s, nil
}

// optionalString extracts an optional string argument; absent yields "".
func optionalString(req mcp.CallToolRequest, key string) (string, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	return s, nil
}

// optionalInt extracts an optional numeric argument, falling back to def.
// JSON numbers arrive as float64.
func optionalInt(req mcp.CallToolRequest, key string, def int) (int, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %s must be a number", key)
	}
}

// optionalBool extracts an optional boolean argument; absent yields false.
func optionalBool(req mcp.CallToolRequest, key string) (bool, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %s must be a boolean", key)
	}
	return b, nil
}

// optionalBoolPtr distinguishes an absent boolean from an explicit false.
func optionalBoolPtr(req mcp.CallToolRequest, key string) (*bool, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("parameter %s must be a boolean", key)
	}
	return &b, nil
}

// optionalObject extracts an optional JSON object argument.
func optionalObject(req mcp.CallToolRequest, key string) (map[string]any, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameter %s must be an object", key)
	}
	return m, nil
}

// requiredObjectSlice extracts a required array-of-objects argument, such as
// initial_fields or cells.
func requiredObjectSlice(req mcp.CallToolRequest, key string) ([]map[string]any, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("missing required parameter: %s", key)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %s must be an array of objects", key)
	}
	out := make([]map[string]any, 0, len(raw))
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %s[%d] must be an object", key, i)
		}
		out = append(out, m)
	}
	return out, nil
}

// successResult wraps a payload in the uniform {success: true, ...} envelope
// rendered as a JSON text result.
func successResult(payload map[string]any) (*mcp.CallToolResult, error) {
	out := make(map[string]any, len(payload)+1)
	out["success"] = true
	for k, v := range payload {
		out[k] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult wraps any failure in the uniform {success: false, error}
// envelope. Errors are reported as tool output, not protocol failures, so the
// model can read and react to them.
func errorResult(err error) (*mcp.CallToolResult, error) {
	data, mErr := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	if mErr != nil {
		return nil, fmt.Errorf("failed to marshal tool error: %w", mErr)
	}
	return mcp.NewToolResultText(string(data)), nil
}
