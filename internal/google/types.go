// Package google defines the boundary to Google Workspace services. The real
// API clients live outside this repository; the orchestration core only
// depends on these interfaces and value types.
package google

import (
	"context"
	"errors"
	"fmt"
)

// Attachment describes one email attachment, metadata only.
type Attachment struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}

// EmailMessage is the raw message shape the Gmail boundary returns.
type EmailMessage struct {
	MessageID   string       `json:"message_id"`
	ThreadID    string       `json:"thread_id"`
	Sender      string       `json:"sender"`
	Recipients  []string     `json:"recipients"`
	DateTime    string       `json:"date_time"`
	Subject     string       `json:"subject"`
	Labels      []string     `json:"labels"`
	Snippet     string       `json:"snippet"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
}

func (m EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}

// DriveFile is the file shape the Drive boundary returns.
type DriveFile struct {
	FileID   string `json:"file_id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	ParentID string `json:"parent_id"`
	Size     int64  `json:"size"`
	WebLink  string `json:"web_link"`
}

// CalendarEvent is the event shape the Calendar boundary returns. Start and
// End are RFC3339 timestamps.
type CalendarEvent struct {
	EventID     string   `json:"event_id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Attendees   []string `json:"attendees"`
	HTMLLink    string   `json:"html_link"`
}

// Task is the task shape the Tasks boundary returns.
type Task struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Notes  string `json:"notes"`
	Due    string `json:"due"`
	Status string `json:"status"`
}

// ErrNotFound marks lookups for resources that do not exist.
var ErrNotFound = errors.New("not found")

// ServiceError wraps a failed call to a Workspace API.
type ServiceError struct {
	Service string // "gmail", "drive", "calendar", "tasks"
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// GmailService is the Gmail surface the tools need.
type GmailService interface {
	GetEmail(ctx context.Context, messageID string) (EmailMessage, error)
	Search(ctx context.Context, query string, maxResults int) ([]EmailMessage, error)
	SendEmail(ctx context.Context, to []string, subject, body string) (string, error)
	ModifyLabels(ctx context.Context, messageID string, add, remove []string) error
}

// DriveService is the Drive surface the tools need.
type DriveService interface {
	ListFiles(ctx context.Context, query string, maxResults int) ([]DriveFile, error)
	CreateFolder(ctx context.Context, name, parentID string) (DriveFile, error)
	MoveFile(ctx context.Context, fileID, folderID string) error
}

// CalendarService is the Calendar surface the tools need.
type CalendarService interface {
	GetEvent(ctx context.Context, eventID string) (CalendarEvent, error)
	ListEvents(ctx context.Context, query string, maxResults int) ([]CalendarEvent, error)
	CreateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// TasksService is the Tasks surface the tools need.
type TasksService interface {
	CreateTask(ctx context.Context, title, notes, due string) (Task, error)
	ListTasks(ctx context.Context, maxResults int) ([]Task, error)
}
