package tools

import (
	"regexp"
	"strings"
)

type emailDraft struct {
	to      []string
	subject string
	body    string
}

var emailAddressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// draftFromContext assembles an outgoing email from step context. A prior
// drafting step's structured result wins; otherwise recipients are scraped
// from the prompt and the instruction becomes the body.
func draftFromContext(prompt string, previous []any) emailDraft {
	for i := len(previous) - 1; i >= 0; i-- {
		if m, ok := previous[i].(map[string]any); ok {
			if body, ok := m["body"].(string); ok {
				draft := emailDraft{body: body}
				if subject, ok := m["subject"].(string); ok {
					draft.subject = subject
				}
				switch to := m["to"].(type) {
				case []string:
					draft.to = to
				case string:
					draft.to = []string{to}
				case []any:
					for _, addr := range to {
						if s, ok := addr.(string); ok {
							draft.to = append(draft.to, s)
						}
					}
				}
				if len(draft.to) > 0 {
					return draft
				}
			}
		}
	}

	instruction := stepInstruction(prompt)
	return emailDraft{
		to:      emailAddressPattern.FindAllString(prompt, -1),
		subject: instruction,
		body:    instruction,
	}
}

// labelChangesFromInstruction reads "add label X" / "remove label Y" phrases.
// Gmail system labels are upper-case; user labels pass through as written.
func labelChangesFromInstruction(instruction string) (add, remove []string) {
	words := strings.Fields(instruction)
	for i, word := range words {
		switch strings.ToLower(strings.Trim(word, ",.")) {
		case "add":
			if label := labelAfter(words, i); label != "" {
				add = append(add, label)
			}
		case "remove", "strip":
			if label := labelAfter(words, i); label != "" {
				remove = append(remove, label)
			}
		}
	}
	return add, remove
}

func labelAfter(words []string, i int) string {
	for j := i + 1; j < len(words) && j <= i+2; j++ {
		word := strings.Trim(words[j], ",.'\"")
		if strings.EqualFold(word, "label") || strings.EqualFold(word, "labels") || strings.EqualFold(word, "the") {
			continue
		}
		return word
	}
	return ""
}
