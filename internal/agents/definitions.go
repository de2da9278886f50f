// Package agents defines the Workspace agents and the supervisor that routes
// a user request to one of them and drives its plan to completion.
package agents

import (
	"fmt"

	"atlas/internal/google"
	"atlas/internal/mailcache"
	"atlas/internal/tools"
)

// Definition describes one agent: a directive for the planner plus the tool
// set its executor may dispatch to.
type Definition struct {
	Name         string
	Description  string
	Capabilities []string
	Tools        []tools.Tool
}

// Registry builds the closed tool registry for this agent, including the
// agent-independent utility tools.
func (d Definition) Registry() (*tools.Registry, error) {
	set := append([]tools.Tool{}, d.Tools...)
	set = append(set, tools.UtilityTools()...)
	registry, err := tools.NewRegistry(set...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", d.Name, err)
	}
	return registry, nil
}

// GmailAgent handles mailbox search, reading, sending and labeling for one
// user. Message fetches go through the user's mail cache.
func GmailAgent(service google.GmailService, cache *mailcache.Cache) Definition {
	return Definition{
		Name:        "gmail",
		Description: "Searches, reads, sends and organizes the user's email.",
		Capabilities: []string{
			"search emails by sender, subject, date or free text",
			"read a full email including attachments metadata",
			"send emails and replies on the user's behalf",
			"add and remove labels to organize the mailbox",
		},
		Tools: tools.GmailTools(service, cache),
	}
}

// DriveAgent handles file listing and organization.
func DriveAgent(service google.DriveService) Definition {
	return Definition{
		Name:        "drive",
		Description: "Lists and organizes files in the user's Drive.",
		Capabilities: []string{
			"list files matching a query",
			"create folders",
			"move files between folders",
		},
		Tools: tools.DriveTools(service),
	}
}

// CalendarAgent handles events on the user's primary calendar.
func CalendarAgent(service google.CalendarService) Definition {
	return Definition{
		Name:        "calendar",
		Description: "Lists, creates and deletes events on the user's calendar.",
		Capabilities: []string{
			"list events by date range, free text or attendee",
			"read full event details",
			"create events with times, locations and attendees",
			"delete events",
		},
		Tools: tools.CalendarTools(service),
	}
}

// TasksAgent handles the user's task list.
func TasksAgent(service google.TasksService) Definition {
	return Definition{
		Name:        "tasks",
		Description: "Creates and lists tasks on the user's task list.",
		Capabilities: []string{
			"create tasks with titles and due dates",
			"list open tasks",
		},
		Tools: tools.TasksTools(service),
	}
}
