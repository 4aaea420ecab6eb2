package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"
	"docuvault/internal/storage"
)

type fileService struct {
	fileRepo     repositories.FileRepository
	folderRepo   repositories.FolderRepository
	activityRepo repositories.ActivityRepository
	blobs        storage.BlobStore
	logger       *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	activityRepo repositories.ActivityRepository,
	blobs storage.BlobStore,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:     fileRepo,
		folderRepo:   folderRepo,
		activityRepo: activityRepo,
		blobs:        blobs,
		logger:       logger,
	}
}

// Upload stores a file's content and record in the owning folder. The upload
// limit is checked against the folder's current counter before any mutation;
// concurrent uploads racing past the check may overrun the limit slightly.
func (s *fileService) Upload(ctx context.Context, req *services.UploadFileRequest) (*models.File, error) {
	if err := FileNamePolicy(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}

	if folder.UploadLimit != nil && folder.FileCount >= *folder.UploadLimit {
		return nil, fmt.Errorf("%w: folder %q is at its upload limit of %d files",
			domain.ErrLimitExceeded, folder.Name, *folder.UploadLimit)
	}

	storageKey := uuid.New().String()
	if err := s.blobs.Put(ctx, storageKey, req.Content, req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	file := &models.File{
		FolderID:    req.FolderID,
		Name:        req.Name,
		Tags:        tags,
		ContentType: req.ContentType,
		Size:        req.Size,
		StorageKey:  storageKey,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The record is authoritative; orphaned content gets cleaned up here.
		if delErr := s.blobs.Delete(ctx, storageKey); delErr != nil {
			s.logger.Warn("failed to delete orphaned blob", "storage_key", storageKey, "error", delErr)
		}
		return nil, err
	}

	if err := s.folderRepo.AdjustFileCount(ctx, req.FolderID, 1); err != nil {
		s.logger.Warn("failed to increment folder file count", "folder_id", req.FolderID, "error", err)
	}

	s.recordActivity(ctx, models.ActionUploadFile, map[string]any{
		"fileId":   file.ID,
		"fileName": file.Name,
		"folderId": req.FolderID,
	})

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"folder_id", req.FolderID,
		"size", req.Size,
	)

	return file, nil
}

// GetFile retrieves a file record
func (s *fileService) GetFile(ctx context.Context, id string) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, id)
}

// Download opens the file's content for reading; the caller closes it
func (s *fileService) Download(ctx context.Context, id string) (*models.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open content: %w", err)
	}

	return file, rc, nil
}

// RenameFile renames a file under the file name policy
func (s *fileService) RenameFile(ctx context.Context, id, newName string) (*models.File, error) {
	if err := FileNamePolicy(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file.Name = newName
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, models.ActionRenameFile, map[string]any{
		"fileId":   file.ID,
		"fileName": newName,
	})

	s.logger.Info("file renamed", "id", id, "name", newName)
	return file, nil
}

// UpdateTags replaces the file's tag sequence, order preserved
func (s *fileService) UpdateTags(ctx context.Context, id string, tags []string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}
	file.Tags = tags
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	return file, nil
}

// DeleteFile removes a single file record, decrements the owning folder's
// counter, and best-effort deletes the stored content.
func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.folderRepo.AdjustFileCount(ctx, file.FolderID, -1); err != nil {
		s.logger.Warn("failed to decrement folder file count", "folder_id", file.FolderID, "error", err)
	}

	if file.StorageKey != "" {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			s.logger.Warn("failed to delete blob", "file_id", id, "error", err)
		}
	}

	s.recordActivity(ctx, models.ActionDeleteFile, map[string]any{
		"fileId":   id,
		"fileName": file.Name,
	})

	s.logger.Info("file deleted", "id", id, "folder_id", file.FolderID)
	return nil
}

func (s *fileService) recordActivity(ctx context.Context, action string, metadata map[string]any) {
	if err := s.activityRepo.Record(ctx, action, metadata); err != nil {
		s.logger.Warn("failed to record activity", "action", action, "error", err)
	}
}
