package tools

import (
	"context"
	"fmt"

	"atlas/internal/google"
	"atlas/internal/workflow"
)

const defaultListResults = 25

// DriveTools builds the Drive adapter set.
func DriveTools(service google.DriveService) []Tool {
	return []Tool{
		{
			Name:        "drive_list_files",
			Description: "List files in the user's Drive matching a query.",
			Invoke:      listFiles(service),
		},
		{
			Name:        "drive_create_folder",
			Description: "Create a folder in the user's Drive.",
			Invoke:      createFolder(service),
		},
		{
			Name:        "drive_move_file",
			Description: "Move a file into a folder.",
			Invoke:      moveFile(service),
		},
	}
}

func listFiles(service google.DriveService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, _ []any) (any, error) {
		query := stepInstruction(prompt)
		files, err := service.ListFiles(ctx, query, defaultListResults)
		if err != nil {
			return ErrorPayload("listing files", err), nil
		}

		listed := make([]map[string]any, 0, len(files))
		for _, file := range files {
			listed = append(listed, map[string]any{
				"file_id":   file.FileID,
				"name":      file.Name,
				"mime_type": file.MimeType,
				"web_link":  file.WebLink,
			})
		}
		return OKPayload(fmt.Sprintf("Found %d files", len(listed)), map[string]any{
			"files": listed,
		}), nil
	}
}

func createFolder(service google.DriveService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, _ []any) (any, error) {
		name := stepInstruction(prompt)
		folder, err := service.CreateFolder(ctx, name, "")
		if err != nil {
			return ErrorPayload("creating folder", err), nil
		}
		return OKPayload("Folder created", map[string]any{
			"file_id": folder.FileID,
			"name":    folder.Name,
		}), nil
	}
}

func moveFile(service google.DriveService) workflow.ToolFunc {
	return func(ctx context.Context, prompt string, previous []any) (any, error) {
		fileID, folderID := fileMoveFromContext(previous)
		if fileID == "" || folderID == "" {
			return ErrorPayload("moving file", fmt.Errorf("file id and folder id not found in step context")), nil
		}
		if err := service.MoveFile(ctx, fileID, folderID); err != nil {
			return ErrorPayload("moving file", err), nil
		}
		return OKPayload("File moved", map[string]any{"file_id": fileID, "folder_id": folderID}), nil
	}
}

// fileMoveFromContext pulls the most recent file id and folder id from earlier
// step results (list step then create-folder step, typically).
func fileMoveFromContext(previous []any) (fileID, folderID string) {
	for i := len(previous) - 1; i >= 0; i-- {
		m, ok := previous[i].(map[string]any)
		if !ok {
			continue
		}
		if id, ok := m["file_id"].(string); ok {
			if _, isFolder := m["name"]; isFolder && folderID == "" && m["mime_type"] == nil {
				folderID = id
				continue
			}
			if fileID == "" {
				fileID = id
			}
		}
		if files, ok := m["files"].([]map[string]any); ok && fileID == "" && len(files) > 0 {
			if id, ok := files[0]["file_id"].(string); ok {
				fileID = id
			}
		}
	}
	return fileID, folderID
}
