package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"
	"docuvault/internal/storage"
)

type folderService struct {
	folderRepo   repositories.FolderRepository
	fileRepo     repositories.FileRepository
	activityRepo repositories.ActivityRepository
	blobs        storage.BlobStore
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	activityRepo repositories.ActivityRepository,
	blobs storage.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:   folderRepo,
		fileRepo:     fileRepo,
		activityRepo: activityRepo,
		blobs:        blobs,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateFolder creates a new validated folder
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := CreationNamePolicy(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	// If a parent is specified, verify it exists. The check and the insert
	// are separate store calls, not one transaction.
	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		s.logger.Debug("parent folder found",
			"parent_id", parent.ID,
			"parent_name", parent.Name,
		)
	}

	folder := &models.Folder{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Assignees:   []models.Assignee{},
		UploadLimit: req.UploadLimit,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, models.ActionCreateFolder, map[string]any{
		"folderId":   folder.ID,
		"folderName": folder.Name,
	})

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", req.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its resolved ancestor chain. The chain
// is walked iteratively with a memo of visited nodes, so each ancestor is
// fetched once even though the output links a parent at every level.
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.FolderDetails, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.FolderDetails{Folder: *folder}
	seen := map[string]*models.FolderDetails{folder.ID: details}

	current := details
	for current.ParentID != nil {
		parentID := *current.ParentID

		if cached, ok := seen[parentID]; ok {
			// Already resolved; also guards against a corrupted cycle.
			current.Parent = cached
			break
		}

		parent, err := s.folderRepo.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Dangling parent link; treat the chain as ending here.
				s.logger.Warn("folder has dangling parent link",
					"folder_id", current.ID,
					"parent_id", parentID,
				)
				break
			}
			return nil, err
		}

		parentDetails := &models.FolderDetails{Folder: *parent}
		seen[parentID] = parentDetails
		current.Parent = parentDetails
		current = parentDetails
	}

	return details, nil
}

// ListChildren lists a folder's immediate subfolders and files
func (s *folderService) ListChildren(ctx context.Context, folderID *string) (*models.FolderContents, error) {
	var folder *models.Folder
	var files []models.File

	if folderID != nil && *folderID != "" {
		var err error
		folder, err = s.folderRepo.GetByID(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		files, err = s.fileRepo.ListByFolder(ctx, *folderID)
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
	} else {
		folderID = nil
	}

	subfolders, err := s.folderRepo.ListChildren(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}

	if files == nil {
		files = []models.File{}
	}
	if subfolders == nil {
		subfolders = []models.Folder{}
	}

	return &models.FolderContents{
		Folder:     folder,
		Subfolders: subfolders,
		Files:      files,
	}, nil
}

// RenameFolder renames a folder under the rename name policy
func (s *folderService) RenameFolder(ctx context.Context, id, newName string) (*models.Folder, error) {
	if err := RenameNamePolicy(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	folder.Name = newName
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "name", newName)
	return folder, nil
}

// SetUploadLimit sets or clears the folder's file-count ceiling
func (s *folderService) SetUploadLimit(ctx context.Context, id string, limit *int) (*models.Folder, error) {
	if limit != nil && *limit < 0 {
		return nil, fmt.Errorf("%w: upload limit must not be negative", domain.ErrValidation)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	folder.UploadLimit = limit
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// AddAssignee unions an assignee into the folder's assignee set. With
// propagation enabled the assignee is also unioned into every direct child
// folder - one level only, not the full subtree.
func (s *folderService) AddAssignee(ctx context.Context, folderID string, assignee models.Assignee, propagateToChildren bool) error {
	if err := validateAssignee(assignee); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.AddAssignee(txCtx, folderID, assignee); err != nil {
			return err
		}

		if !propagateToChildren {
			return nil
		}

		children, err := s.folderRepo.ListChildren(txCtx, &folderID)
		if err != nil {
			return fmt.Errorf("list child folders: %w", err)
		}
		for _, child := range children {
			if err := s.folderRepo.AddAssignee(txCtx, child.ID, assignee); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAssignee removes an exact-match assignee; no-op when absent
func (s *folderService) RemoveAssignee(ctx context.Context, folderID string, assignee models.Assignee) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.folderRepo.RemoveAssignee(txCtx, folderID, assignee)
	})
}

func validateAssignee(a models.Assignee) error {
	if a.UserID == "" {
		return fmt.Errorf("assignee user id is required")
	}
	switch a.Role {
	case models.RoleOwner, models.RoleReviewer, models.RoleContributor:
		return nil
	default:
		return fmt.Errorf("unknown assignee role %q", a.Role)
	}
}

// recordActivity writes an audit entry. Failures are logged and swallowed;
// the mutation that triggered the entry has already succeeded.
func (s *folderService) recordActivity(ctx context.Context, action string, metadata map[string]any) {
	if err := s.activityRepo.Record(ctx, action, metadata); err != nil {
		s.logger.Warn("failed to record activity", "action", action, "error", err)
	}
}
