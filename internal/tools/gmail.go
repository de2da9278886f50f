package tools

import (
	"context"
	"fmt"

	"atlas/internal/google"
	"atlas/internal/mailcache"
	"atlas/internal/workflow"
)

const defaultSearchResults = 10

// GmailTools builds the Gmail adapter set for one user. Fetched messages are
// read and written through the user's mail cache so repeated steps do not
// refetch from the API.
func GmailTools(service google.GmailService, cache *mailcache.Cache) []Tool {
	return []Tool{
		{
			Name:        "gmail_search",
			Description: "Search the user's mailbox and return matching message summaries.",
			Invoke:      searchEmails(service, cache),
		},
		{
			Name:        "gmail_get_email",
			Description: "Fetch one email message by id, including body and attachments.",
			Invoke:      getEmail(service, cache),
		},
		{
			Name:        "gmail_send_email",
			Description: "Send an email on the user's behalf.",
			Invoke:      sendEmail(service),
		},
		{
			Name:        "gmail_modify_labels",
			Description: "Add or remove labels on a message.",
			Invoke:      modifyLabels(service),
		},
	}
}

func searchEmails(service google.GmailService, cache *mailcache.Cache) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, _ []any) (any, error) {
		query := stepInstruction(prompt)
		messages, err := service.Search(ctx, query, defaultSearchResults)
		if err != nil {
			return ErrorPayload("searching emails", err), nil
		}

		summaries := make([]map[string]any, 0, len(messages))
		for _, msg := range messages {
			entry := cache.Save(msg)
			summaries = append(summaries, map[string]any{
				"message_id": entry.MessageID,
				"thread_id":  entry.ThreadID,
				"from":       entry.From,
				"date_time":  entry.DateTime,
				"subject":    entry.Subject,
				"snippet":    entry.Snippet,
			})
		}
		return OKPayload(fmt.Sprintf("Found %d emails", len(summaries)), map[string]any{
			"emails": summaries,
		}), nil
	}
}

func getEmail(service google.GmailService, cache *mailcache.Cache) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, previous []any) (any, error) {
		messageID := findMessageID(prompt, previous)
		if messageID == "" {
			return ErrorPayload("getting email", fmt.Errorf("no message id found in step context")), nil
		}

		if entry, ok := cache.Get(messageID); ok {
			return entry, nil
		}

		msg, err := service.GetEmail(ctx, messageID)
		if err != nil {
			return ErrorPayload("getting email", err), nil
		}
		return cache.Save(msg), nil
	}
}

func sendEmail(service google.GmailService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, previous []any) (any, error) {
		draft := draftFromContext(prompt, previous)
		id, err := service.SendEmail(ctx, draft.to, draft.subject, draft.body)
		if err != nil {
			return ErrorPayload("sending email", err), nil
		}
		return OKPayload("Email sent", map[string]any{"message_id": id}), nil
	}
}

func modifyLabels(service google.GmailService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, previous []any) (any, error) {
		messageID := findMessageID(prompt, previous)
		if messageID == "" {
			return ErrorPayload("modifying labels", fmt.Errorf("no message id found in step context")), nil
		}
		add, remove := labelChangesFromInstruction(stepInstruction(prompt))
		if err := service.ModifyLabels(ctx, messageID, add, remove); err != nil {
			return ErrorPayload("modifying labels", err), nil
		}
		return OKPayload("Labels updated", map[string]any{"message_id": messageID}), nil
	}
}
