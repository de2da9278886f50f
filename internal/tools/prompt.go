package tools

import (
	"regexp"
	"strings"

	"atlas/internal/mailcache"
)

// Execution prompts arrive as free text from the executor; these helpers pull
// out the pieces the thin adapters need.

var messageIDPattern = regexp.MustCompile(`\b[0-9a-fA-F]{12,32}\b`)

// stepInstruction extracts the step description from an execution prompt of
// the form "Execute this step: <description>\n...".
func stepInstruction(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Execute this step:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(prompt)
}

// findMessageID locates a Gmail message id, preferring the most recent step
// results over the prompt text since earlier steps usually produced the id.
func findMessageID(prompt string, previous []any) string {
	for i := len(previous) - 1; i >= 0; i-- {
		if id := messageIDFromResult(previous[i]); id != "" {
			return id
		}
	}
	return messageIDPattern.FindString(prompt)
}

func messageIDFromResult(result any) string {
	switch v := result.(type) {
	case mailcache.Entry:
		return v.MessageID
	case map[string]any:
		if id, ok := v["message_id"].(string); ok {
			return id
		}
		if ids, ok := v["message_ids"].([]string); ok && len(ids) > 0 {
			return ids[0]
		}
		for _, key := range []string{"emails", "messages", "results"} {
			if id := messageIDFromResult(v[key]); id != "" {
				return id
			}
		}
	case []any:
		for i := len(v) - 1; i >= 0; i-- {
			if id := messageIDFromResult(v[i]); id != "" {
				return id
			}
		}
	case []map[string]any:
		for i := len(v) - 1; i >= 0; i-- {
			if id := messageIDFromResult(v[i]); id != "" {
				return id
			}
		}
	case string:
		return messageIDPattern.FindString(v)
	}
	return ""
}
