package tools

import (
	"fmt"
	"strings"
)

// ErrorPayload converts a service failure into the uniform outward-facing
// tool result. Raw errors never cross the tool boundary into the agent layer.
func ErrorPayload(op string, err error) map[string]any {
	return map[string]any{
		"status":        "error",
		"error_type":    errorTypeName(err),
		"error_message": err.Error(),
		"message":       fmt.Sprintf("Error %s: %s", op, err.Error()),
	}
}

// OKPayload wraps a successful tool result with its status.
func OKPayload(message string, fields map[string]any) map[string]any {
	payload := map[string]any{"status": "success", "message": message}
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}

func errorTypeName(err error) string {
	name := fmt.Sprintf("%T", err)
	name = strings.TrimLeft(name, "*")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
