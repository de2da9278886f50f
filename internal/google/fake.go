package google

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakeGmail is an in-memory GmailService for tests and local runs.
type FakeGmail struct {
	mu       sync.Mutex
	Messages map[string]EmailMessage
	Fail     error // when set, every call fails with this error

	GetCalls int
}

func NewFakeGmail(messages ...EmailMessage) *FakeGmail {
	store := make(map[string]EmailMessage, len(messages))
	for _, m := range messages {
		store[m.MessageID] = m
	}
	return &FakeGmail{Messages: store}
}

func (f *FakeGmail) GetEmail(_ context.Context, messageID string) (EmailMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.Fail != nil {
		return EmailMessage{}, &ServiceError{Service: "gmail", Op: "get_email", Err: f.Fail}
	}
	msg, ok := f.Messages[messageID]
	if !ok {
		return EmailMessage{}, &ServiceError{Service: "gmail", Op: "get_email", Err: fmt.Errorf("message %s: %w", messageID, ErrNotFound)}
	}
	return msg, nil
}

func (f *FakeGmail) Search(_ context.Context, query string, maxResults int) ([]EmailMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return nil, &ServiceError{Service: "gmail", Op: "search", Err: f.Fail}
	}
	out := make([]EmailMessage, 0, len(f.Messages))
	for _, m := range f.Messages {
		out = append(out, m)
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out, nil
}

func (f *FakeGmail) SendEmail(_ context.Context, to []string, subject, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return "", &ServiceError{Service: "gmail", Op: "send_email", Err: f.Fail}
	}
	if len(to) == 0 {
		return "", &ServiceError{Service: "gmail", Op: "send_email", Err: fmt.Errorf("no recipients for %q", subject)}
	}
	return uuid.NewString(), nil
}

func (f *FakeGmail) ModifyLabels(_ context.Context, messageID string, add, remove []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return &ServiceError{Service: "gmail", Op: "modify_labels", Err: f.Fail}
	}
	msg, ok := f.Messages[messageID]
	if !ok {
		return &ServiceError{Service: "gmail", Op: "modify_labels", Err: fmt.Errorf("message %s: %w", messageID, ErrNotFound)}
	}
	labels := make([]string, 0, len(msg.Labels)+len(add))
	for _, l := range msg.Labels {
		removed := false
		for _, r := range remove {
			if l == r {
				removed = true
				break
			}
		}
		if !removed {
			labels = append(labels, l)
		}
	}
	labels = append(labels, add...)
	msg.Labels = labels
	f.Messages[messageID] = msg
	return nil
}

// FakeDrive is an in-memory DriveService for tests and local runs.
type FakeDrive struct {
	mu    sync.Mutex
	Files map[string]DriveFile
	Fail  error
}

func NewFakeDrive(files ...DriveFile) *FakeDrive {
	store := make(map[string]DriveFile, len(files))
	for _, f := range files {
		store[f.FileID] = f
	}
	return &FakeDrive{Files: store}
}

func (f *FakeDrive) ListFiles(_ context.Context, _ string, maxResults int) ([]DriveFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return nil, &ServiceError{Service: "drive", Op: "list_files", Err: f.Fail}
	}
	out := make([]DriveFile, 0, len(f.Files))
	for _, file := range f.Files {
		out = append(out, file)
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out, nil
}

func (f *FakeDrive) CreateFolder(_ context.Context, name, parentID string) (DriveFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return DriveFile{}, &ServiceError{Service: "drive", Op: "create_folder", Err: f.Fail}
	}
	folder := DriveFile{
		FileID:   uuid.NewString(),
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
		ParentID: parentID,
	}
	f.Files[folder.FileID] = folder
	return folder, nil
}

func (f *FakeDrive) MoveFile(_ context.Context, fileID, folderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return &ServiceError{Service: "drive", Op: "move_file", Err: f.Fail}
	}
	file, ok := f.Files[fileID]
	if !ok {
		return &ServiceError{Service: "drive", Op: "move_file", Err: fmt.Errorf("file %s: %w", fileID, ErrNotFound)}
	}
	file.ParentID = folderID
	f.Files[fileID] = file
	return nil
}

// FakeCalendar is an in-memory CalendarService for tests and local runs.
type FakeCalendar struct {
	mu     sync.Mutex
	Events map[string]CalendarEvent
	Fail   error
}

func NewFakeCalendar(events ...CalendarEvent) *FakeCalendar {
	store := make(map[string]CalendarEvent, len(events))
	for _, e := range events {
		store[e.EventID] = e
	}
	return &FakeCalendar{Events: store}
}

func (f *FakeCalendar) GetEvent(_ context.Context, eventID string) (CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return CalendarEvent{}, &ServiceError{Service: "calendar", Op: "get_event", Err: f.Fail}
	}
	event, ok := f.Events[eventID]
	if !ok {
		return CalendarEvent{}, &ServiceError{Service: "calendar", Op: "get_event", Err: fmt.Errorf("event %s: %w", eventID, ErrNotFound)}
	}
	return event, nil
}

func (f *FakeCalendar) ListEvents(_ context.Context, _ string, maxResults int) ([]CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return nil, &ServiceError{Service: "calendar", Op: "list_events", Err: f.Fail}
	}
	out := make([]CalendarEvent, 0, len(f.Events))
	for _, e := range f.Events {
		out = append(out, e)
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out, nil
}

func (f *FakeCalendar) CreateEvent(_ context.Context, event CalendarEvent) (CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return CalendarEvent{}, &ServiceError{Service: "calendar", Op: "create_event", Err: f.Fail}
	}
	if event.Summary == "" {
		return CalendarEvent{}, &ServiceError{Service: "calendar", Op: "create_event", Err: fmt.Errorf("event summary is required")}
	}
	event.EventID = uuid.NewString()
	f.Events[event.EventID] = event
	return event, nil
}

func (f *FakeCalendar) DeleteEvent(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return &ServiceError{Service: "calendar", Op: "delete_event", Err: f.Fail}
	}
	if _, ok := f.Events[eventID]; !ok {
		return &ServiceError{Service: "calendar", Op: "delete_event", Err: fmt.Errorf("event %s: %w", eventID, ErrNotFound)}
	}
	delete(f.Events, eventID)
	return nil
}

// FakeTasks is an in-memory TasksService for tests and local runs.
type FakeTasks struct {
	mu    sync.Mutex
	Tasks []Task
	Fail  error
}

func NewFakeTasks() *FakeTasks {
	return &FakeTasks{}
}

func (f *FakeTasks) CreateTask(_ context.Context, title, notes, due string) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return Task{}, &ServiceError{Service: "tasks", Op: "create_task", Err: f.Fail}
	}
	task := Task{TaskID: uuid.NewString(), Title: title, Notes: notes, Due: due, Status: "needsAction"}
	f.Tasks = append(f.Tasks, task)
	return task, nil
}

func (f *FakeTasks) ListTasks(_ context.Context, maxResults int) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return nil, &ServiceError{Service: "tasks", Op: "list_tasks", Err: f.Fail}
	}
	out := f.Tasks
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return append([]Task(nil), out...), nil
}
