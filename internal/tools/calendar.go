package tools

import (
	"context"
	"fmt"
	"regexp"

	"atlas/internal/google"
	"atlas/internal/workflow"
)

// CalendarTools builds the Calendar adapter set.
func CalendarTools(service google.CalendarService) []Tool {
	return []Tool{
		{
			Name:        "calendar_list_events",
			Description: "List events on the user's primary calendar.",
			Invoke:      listEvents(service),
		},
		{
			Name:        "calendar_get_event",
			Description: "Retrieve full details for one calendar event.",
			Invoke:      getEvent(service),
		},
		{
			Name:        "calendar_create_event",
			Description: "Create an event on the user's primary calendar.",
			Invoke:      createEvent(service),
		},
		{
			Name:        "calendar_delete_event",
			Description: "Delete an event from the user's primary calendar.",
			Invoke:      deleteEvent(service),
		},
	}
}

func listEvents(service google.CalendarService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, _ []any) (any, error) {
		query := stepInstruction(prompt)
		events, err := service.ListEvents(ctx, query, defaultListResults)
		if err != nil {
			return ErrorPayload("listing events", err), nil
		}

		listed := make([]map[string]any, 0, len(events))
		for _, event := range events {
			listed = append(listed, map[string]any{
				"event_id": event.EventID,
				"summary":  event.Summary,
				"start":    event.Start,
				"end":      event.End,
				"location": event.Location,
			})
		}
		return OKPayload(fmt.Sprintf("Found %d events", len(listed)), map[string]any{
			"events": listed,
		}), nil
	}
}

func getEvent(service google.CalendarService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, previous []any) (any, error) {
		eventID := findEventID(prompt, previous)
		if eventID == "" {
			return ErrorPayload("getting event", fmt.Errorf("no event id found in step context")), nil
		}
		event, err := service.GetEvent(ctx, eventID)
		if err != nil {
			return ErrorPayload("getting event", err), nil
		}
		return event, nil
	}
}

func createEvent(service google.CalendarService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, _ []any) (any, error) {
		draft := eventFromPrompt(prompt)
		event, err := service.CreateEvent(ctx, draft)
		if err != nil {
			return ErrorPayload("creating event", err), nil
		}
		return OKPayload("Event created", map[string]any{
			"event_id": event.EventID,
			"summary":  event.Summary,
			"link":     event.HTMLLink,
		}), nil
	}
}

func deleteEvent(service google.CalendarService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, previous []any) (any, error) {
		eventID := findEventID(prompt, previous)
		if eventID == "" {
			return ErrorPayload("deleting event", fmt.Errorf("no event id found in step context")), nil
		}
		if err := service.DeleteEvent(ctx, eventID); err != nil {
			return ErrorPayload("deleting event", err), nil
		}
		return OKPayload("Event deleted", map[string]any{"event_id": eventID}), nil
	}
}

var (
	eventIDPattern   = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2})?(?:Z|[+-]\d{2}:\d{2})?`)
)

// findEventID locates an event id, preferring the most recent step results
// (a list or create step usually produced it) over the prompt text.
func findEventID(prompt string, previous []any) string {
	for i := len(previous) - 1; i >= 0; i-- {
		if id := eventIDFromResult(previous[i]); id != "" {
			return id
		}
	}
	return eventIDPattern.FindString(prompt)
}

func eventIDFromResult(result any) string {
	switch v := result.(type) {
	case google.CalendarEvent:
		return v.EventID
	case map[string]any:
		if id, ok := v["event_id"].(string); ok {
			return id
		}
		return eventIDFromResult(v["events"])
	case []any:
		for i := len(v) - 1; i >= 0; i-- {
			if id := eventIDFromResult(v[i]); id != "" {
				return id
			}
		}
	case []map[string]any:
		for i := len(v) - 1; i >= 0; i-- {
			if id := eventIDFromResult(v[i]); id != "" {
				return id
			}
		}
	}
	return ""
}

// eventFromPrompt drafts a new event from the execution prompt: the step
// instruction becomes the summary, the first two RFC3339 timestamps become
// start and end, and any email addresses become attendees.
func eventFromPrompt(prompt string) google.CalendarEvent {
	event := google.CalendarEvent{
		Summary:   stepInstruction(prompt),
		Attendees: emailAddressPattern.FindAllString(prompt, -1),
	}
	if stamps := timestampPattern.FindAllString(prompt, 2); len(stamps) > 0 {
		event.Start = stamps[0]
		if len(stamps) > 1 {
			event.End = stamps[1]
		}
	}
	return event
}
