package tools

import (
	"context"
	"fmt"
	"time"

	"atlas/internal/google"
	"atlas/internal/workflow"
)

// TasksTools builds the Google Tasks adapter set.
func TasksTools(service google.TasksService) []Tool {
	return []Tool{
		{
			Name:        "tasks_create_task",
			Description: "Create a task on the user's default task list.",
			Invoke:      createTask(service),
		},
		{
			Name:        "tasks_list_tasks",
			Description: "List the user's open tasks.",
			Invoke:      listTasks(service),
		},
	}
}

func createTask(service google.TasksService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, _ []any) (any, error) {
		title := stepInstruction(prompt)
		task, err := service.CreateTask(ctx, title, "", "")
		if err != nil {
			return ErrorPayload("creating task", err), nil
		}
		return OKPayload("Task created", map[string]any{
			"task_id": task.TaskID,
			"title":   task.Title,
		}), nil
	}
}

func listTasks(service google.TasksService) workflow.ToolFunc {
	return func(ctx context.Context, _ string, _ []any) (any, error) {
		tasks, err := service.ListTasks(ctx, defaultListResults)
		if err != nil {
			return ErrorPayload("listing tasks", err), nil
		}
		listed := make([]map[string]any, 0, len(tasks))
		for _, task := range tasks {
			listed = append(listed, map[string]any{
				"task_id": task.TaskID,
				"title":   task.Title,
				"due":     task.Due,
				"status":  task.Status,
			})
		}
		return OKPayload(fmt.Sprintf("Found %d tasks", len(listed)), map[string]any{
			"tasks": listed,
		}), nil
	}
}

// UtilityTools are agent-independent helpers.
func UtilityTools() []Tool {
	return []Tool{
		{
			Name:        "current_datetime",
			Description: "Returns the current date and time.",
			Invoke: func(_ context.Context, _ string, _ []any) (any, error) {
				return time.Now().UTC().Format("2006-01-02T15:04:05"), nil
			},
		},
	}
}
