package repositories

import (
	"context"

	"docuvault/internal/domain/models"
)

// FileRepository defines data access operations for files
type FileRepository interface {
	// Create inserts a new file record
	Create(ctx context.Context, file *models.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, id string) (*models.File, error)

	// Update persists file field changes
	Update(ctx context.Context, file *models.File) error

	// Delete removes a file record. Deleting an absent file is a no-op.
	Delete(ctx context.Context, id string) error

	// ListByFolder lists the files directly owned by a folder
	ListByFolder(ctx context.Context, folderID string) ([]models.File, error)

	// CountByFolder counts the files directly owned by a folder
	CountByFolder(ctx context.Context, folderID string) (int, error)
}
