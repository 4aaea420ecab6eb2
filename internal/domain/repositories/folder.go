package repositories

import (
	"context"

	"docuvault/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a new folder record
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByName retrieves every folder carrying the given name
	GetByName(ctx context.Context, name string) ([]models.Folder, error)

	// Update persists folder field changes
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a folder record. Deleting an absent folder is a no-op.
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders; nil parentID lists roots
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// ListAll retrieves the whole forest as a flat list ordered by created_at
	ListAll(ctx context.Context) ([]models.Folder, error)

	// AddAssignee unions an assignee into the folder's assignee set
	AddAssignee(ctx context.Context, folderID string, assignee models.Assignee) error

	// RemoveAssignee removes an exact-match assignee; no-op when absent
	RemoveAssignee(ctx context.Context, folderID string, assignee models.Assignee) error

	// AdjustFileCount shifts the denormalized file counter by delta
	AdjustFileCount(ctx context.Context, folderID string, delta int) error
}
