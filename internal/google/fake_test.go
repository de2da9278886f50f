package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDriveCreateFolderKeepsParent(t *testing.T) {
	fake := NewFakeDrive()

	folder, err := fake.CreateFolder(context.Background(), "Invoices", "root-id")
	require.NoError(t, err)

	assert.Equal(t, "Invoices", folder.Name)
	assert.Equal(t, "root-id", folder.ParentID)
	assert.Equal(t, "root-id", fake.Files[folder.FileID].ParentID)
}

func TestFakeDriveMoveFileReparents(t *testing.T) {
	fake := NewFakeDrive(DriveFile{FileID: "f1", Name: "report.pdf", ParentID: "old-folder"})

	require.NoError(t, fake.MoveFile(context.Background(), "f1", "new-folder"))
	assert.Equal(t, "new-folder", fake.Files["f1"].ParentID)

	err := fake.MoveFile(context.Background(), "missing", "new-folder")
	assert.ErrorIs(t, err, ErrNotFound)
}
