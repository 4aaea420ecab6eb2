package services

import (
	"context"
	"io"

	"docuvault/internal/domain/models"
)

// FileService handles file business logic
type FileService interface {
	// Upload stores a file's content and record. Fails with
	// domain.ErrLimitExceeded when the owning folder is at its upload limit;
	// the check is not atomic with the insert (soft overruns accepted).
	Upload(ctx context.Context, req *UploadFileRequest) (*models.File, error)

	// GetFile retrieves a file record
	GetFile(ctx context.Context, id string) (*models.File, error)

	// Download opens the file's content for reading; the caller closes it
	Download(ctx context.Context, id string) (*models.File, io.ReadCloser, error)

	// RenameFile renames a file under the file name policy
	RenameFile(ctx context.Context, id, newName string) (*models.File, error)

	// UpdateTags replaces the file's tag sequence, order preserved
	UpdateTags(ctx context.Context, id string, tags []string) (*models.File, error)

	// DeleteFile removes a single file record and its stored content
	DeleteFile(ctx context.Context, id string) error
}

// UploadFileRequest represents a file upload
type UploadFileRequest struct {
	FolderID    string
	Name        string
	ContentType string
	Size        int64
	Tags        []string
	Content     io.Reader
}
