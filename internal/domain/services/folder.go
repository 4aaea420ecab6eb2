package services

import (
	"context"

	"docuvault/internal/domain/models"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new validated folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder with its resolved ancestor chain
	GetFolder(ctx context.Context, id string) (*models.FolderDetails, error)

	// ListChildren lists a folder's immediate subfolders and files;
	// nil folderID lists root folders
	ListChildren(ctx context.Context, folderID *string) (*models.FolderContents, error)

	// RenameFolder renames a folder under the rename name policy
	RenameFolder(ctx context.Context, id, newName string) (*models.Folder, error)

	// SetUploadLimit sets or clears the folder's file-count ceiling
	SetUploadLimit(ctx context.Context, id string, limit *int) (*models.Folder, error)

	// AddAssignee unions an assignee into the folder, optionally one level
	// into its direct children
	AddAssignee(ctx context.Context, folderID string, assignee models.Assignee, propagateToChildren bool) error

	// RemoveAssignee removes an exact-match assignee; no-op when absent
	RemoveAssignee(ctx context.Context, folderID string, assignee models.Assignee) error

	// DeleteFolderRecursive removes a folder and everything it transitively
	// owns. Non-transactional: partial failures surface as *domain.CascadeError
	// and the operation is safe to re-invoke.
	DeleteFolderRecursive(ctx context.Context, id string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id,omitempty"` // nil for root folders
	UploadLimit *int    `json:"upload_limit,omitempty"`
}
