package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
)

// DeleteFolderRecursive removes a folder and everything it transitively
// owns: per level, the folder's files are deleted concurrently and awaited
// jointly, then child subtrees recurse concurrently, then the folder record
// itself goes. A folder is therefore never deleted before its files or its
// children, while sibling branches complete in any order.
//
// There is no rollback. A failed file deletion stops its branch on the
// spot: the folder's children stay untouched, its ancestors stay in
// place, and the failure is reported in a *domain.CascadeError. Completed
// deletions stay deleted. Re-invoking on a partially-deleted (or
// already-deleted) subtree is safe: absent records delete as no-ops.
func (s *folderService) DeleteFolderRecursive(ctx context.Context, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Already gone; deletion is idempotent.
			return nil
		}
		return err
	}

	if cascadeErr := s.deleteSubtree(ctx, folder); cascadeErr != nil {
		s.logger.Error("cascade deletion incomplete",
			"folder_id", id,
			"failed_branches", len(cascadeErr.Branches),
		)
		return cascadeErr
	}

	s.logger.Info("folder deleted recursively", "id", id, "name", folder.Name)
	return nil
}

func (s *folderService) deleteSubtree(ctx context.Context, folder *models.Folder) *domain.CascadeError {
	var (
		mu       sync.Mutex
		failures []domain.BranchFailure
	)

	// Stage 1: delete this folder's files, dispatched in parallel and
	// awaited jointly. The first failure cancels the remaining file
	// deletions of this folder.
	files, err := s.fileRepo.ListByFolder(ctx, folder.ID)
	if err != nil {
		return &domain.CascadeError{FolderID: folder.ID, Branches: []domain.BranchFailure{
			{FolderID: folder.ID, Err: fmt.Errorf("list files: %w", err)},
		}}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			if err := s.fileRepo.Delete(gctx, file.ID); err != nil {
				mu.Lock()
				failures = append(failures, domain.BranchFailure{
					FolderID: folder.ID,
					FileID:   file.ID,
					Err:      err,
				})
				mu.Unlock()
				return err
			}
			if file.StorageKey != "" {
				// Record store is authoritative; blob cleanup is best effort.
				if err := s.blobs.Delete(gctx, file.StorageKey); err != nil {
					s.logger.Warn("failed to delete blob", "file_id", file.ID, "error", err)
				}
			}
			return nil
		})
	}
	if g.Wait() != nil {
		// A stuck file aborts this branch here; child subtrees are left
		// untouched until a retry clears the fault.
		return &domain.CascadeError{FolderID: folder.ID, Branches: failures}
	}

	// Stage 2: recurse into child subtrees concurrently. Each branch fails
	// independently; a sibling's failure does not stop the others.
	children, err := s.folderRepo.ListChildren(ctx, &folder.ID)
	if err != nil {
		mu.Lock()
		failures = append(failures, domain.BranchFailure{
			FolderID: folder.ID,
			Err:      fmt.Errorf("list child folders: %w", err),
		})
		mu.Unlock()
	} else {
		var wg sync.WaitGroup
		for _, child := range children {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if cascadeErr := s.deleteSubtree(ctx, &child); cascadeErr != nil {
					mu.Lock()
					failures = append(failures, cascadeErr.Branches...)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
	}

	if len(failures) > 0 {
		// Keep this folder so whatever survived below it stays reachable.
		return &domain.CascadeError{FolderID: folder.ID, Branches: failures}
	}

	// Stage 3: the folder record itself, only after its files and children
	// are fully gone. Every folder logs its own deletion, so an audit
	// trail exists per subtree level, not just for the top-level call.
	if err := s.folderRepo.Delete(ctx, folder.ID); err != nil {
		return &domain.CascadeError{FolderID: folder.ID, Branches: []domain.BranchFailure{
			{FolderID: folder.ID, Err: err},
		}}
	}

	s.recordActivity(ctx, models.ActionDeleteFolder, map[string]any{
		"folderId":   folder.ID,
		"folderName": folder.Name,
	})

	return nil
}
