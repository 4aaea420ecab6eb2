package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"
)

type statsService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	logger     *slog.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	logger *slog.Logger,
) services.StatsService {
	return &statsService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// CountFilesInSubtree sums file counts for a folder and all descendants.
// The forest is snapshotted once and walked in memory; only file counts
// issue per-folder queries.
func (s *statsService) CountFilesInSubtree(ctx context.Context, folderID string) (int, error) {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return 0, err
	}

	childrenByParent, err := s.childIndex(ctx)
	if err != nil {
		return 0, err
	}

	return s.countSubtree(ctx, folderID, childrenByParent)
}

func (s *statsService) countSubtree(ctx context.Context, folderID string, childrenByParent map[string][]models.Folder) (int, error) {
	total, err := s.fileRepo.CountByFolder(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("count files in folder %s: %w", folderID, err)
	}

	for _, child := range childrenByParent[folderID] {
		n, err := s.countSubtree(ctx, child.ID, childrenByParent)
		if err != nil {
			return 0, err
		}
		total += n
	}

	return total, nil
}

// EmptySubfoldersPerRoot lists, per root folder, the direct children owning
// zero files. Roots without empty children are omitted.
func (s *statsService) EmptySubfoldersPerRoot(ctx context.Context) ([]models.RootSubfolders, error) {
	return s.subfoldersPerRoot(ctx, true)
}

// CompletedSubfoldersPerRoot lists, per root folder, the direct children
// owning at least one file. Roots without completed children are omitted.
func (s *statsService) CompletedSubfoldersPerRoot(ctx context.Context) ([]models.RootSubfolders, error) {
	return s.subfoldersPerRoot(ctx, false)
}

func (s *statsService) subfoldersPerRoot(ctx context.Context, wantEmpty bool) ([]models.RootSubfolders, error) {
	roots, err := s.folderRepo.ListChildren(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}

	results := []models.RootSubfolders{}
	for _, root := range roots {
		children, err := s.folderRepo.ListChildren(ctx, &root.ID)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", root.ID, err)
		}

		var names []string
		for _, child := range children {
			count, err := s.fileRepo.CountByFolder(ctx, child.ID)
			if err != nil {
				return nil, fmt.Errorf("count files in folder %s: %w", child.ID, err)
			}
			if (count == 0) == wantEmpty {
				names = append(names, child.Name)
			}
		}

		if len(names) > 0 {
			results = append(results, models.RootSubfolders{
				RootFolderName: root.Name,
				Subfolders:     names,
			})
		}
	}

	return results, nil
}

// OverallProgress computes forest-wide completion. A folder is completed
// once it owns at least one direct file; an empty forest reports 0.00%.
func (s *statsService) OverallProgress(ctx context.Context) (*models.OverallProgress, error) {
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	if len(folders) == 0 {
		return &models.OverallProgress{ProgressPercentage: "0.00%"}, nil
	}

	completed := 0
	for _, folder := range folders {
		count, err := s.fileRepo.CountByFolder(ctx, folder.ID)
		if err != nil {
			return nil, fmt.Errorf("count files in folder %s: %w", folder.ID, err)
		}
		if count > 0 {
			completed++
		}
	}

	pct := float64(completed) / float64(len(folders)) * 100
	return &models.OverallProgress{
		TotalFolders:       len(folders),
		CompletedFolders:   completed,
		ProgressPercentage: fmt.Sprintf("%.2f%%", pct),
	}, nil
}

// FilesPerRootFolder totals subtree files per root folder
func (s *statsService) FilesPerRootFolder(ctx context.Context) ([]models.RootFileCount, error) {
	roots, err := s.folderRepo.ListChildren(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}

	childrenByParent, err := s.childIndex(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.RootFileCount, 0, len(roots))
	for _, root := range roots {
		total, err := s.countSubtree(ctx, root.ID, childrenByParent)
		if err != nil {
			return nil, err
		}
		results = append(results, models.RootFileCount{
			FolderName: root.Name,
			TotalFiles: total,
		})
	}

	return results, nil
}

// AreaTree resolves the root folders named areaName with their direct files
// and one level of subfolders. Several roots may share the area name; each
// becomes its own entry. Files come back name-sorted from the store;
// subfolders are re-sorted by name here because children list in creation
// order.
func (s *statsService) AreaTree(ctx context.Context, areaName string) ([]models.AreaFolder, error) {
	matches, err := s.folderRepo.GetByName(ctx, areaName)
	if err != nil {
		return nil, fmt.Errorf("resolve area folders: %w", err)
	}

	results := []models.AreaFolder{}
	for _, folder := range matches {
		if !folder.IsRoot() {
			continue
		}

		files, err := s.fileRepo.ListByFolder(ctx, folder.ID)
		if err != nil {
			return nil, fmt.Errorf("list files of %s: %w", folder.ID, err)
		}

		children, err := s.folderRepo.ListChildren(ctx, &folder.ID)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", folder.ID, err)
		}
		sort.Slice(children, func(i, j int) bool {
			return children[i].Name < children[j].Name
		})

		subfolders := make([]models.AreaSubfolder, 0, len(children))
		for _, child := range children {
			childFiles, err := s.fileRepo.ListByFolder(ctx, child.ID)
			if err != nil {
				return nil, fmt.Errorf("list files of %s: %w", child.ID, err)
			}
			subfolders = append(subfolders, models.AreaSubfolder{
				Folder: child,
				Files:  childFiles,
			})
		}

		results = append(results, models.AreaFolder{
			Folder:     folder,
			Files:      files,
			Subfolders: subfolders,
		})
	}

	return results, nil
}

// FoldersForUser returns the assignee-filtered forest view for one user.
// Folders the user is assigned to are kept, plus the unassigned parents of
// assigned subfolders so the tree stays renderable. The result is then
// narrowed to one level: roots when parentID is nil, otherwise the children
// of parentID along with that folder's files.
func (s *statsService) FoldersForUser(ctx context.Context, userID string, parentID *string) (*models.UserForest, error) {
	all, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	byID := make(map[string]models.Folder, len(all))
	for _, f := range all {
		byID[f.ID] = f
	}

	visible := make(map[string]bool)
	for _, f := range all {
		if !f.IsAssignedTo(userID) {
			continue
		}
		visible[f.ID] = true
		// Retain the ancestor chain so assigned subfolders stay reachable.
		cur := f
		for cur.ParentID != nil {
			parent, ok := byID[*cur.ParentID]
			if !ok || visible[parent.ID] {
				break
			}
			visible[parent.ID] = true
			cur = parent
		}
	}

	folders := []models.Folder{}
	for _, f := range all {
		if !visible[f.ID] {
			continue
		}
		if parentID == nil {
			if f.IsRoot() {
				folders = append(folders, f)
			}
		} else if f.ParentID != nil && *f.ParentID == *parentID {
			folders = append(folders, f)
		}
	}

	files := []models.File{}
	if parentID != nil {
		files, err = s.fileRepo.ListByFolder(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("list files of %s: %w", *parentID, err)
		}
	}

	return &models.UserForest{Folders: folders, Files: files}, nil
}

// Snapshot recomputes every dashboard aggregation at once. The queries run
// sequentially against live collections, so a mutation landing mid-snapshot
// can show in some aggregations and not others.
func (s *statsService) Snapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	progress, err := s.OverallProgress(ctx)
	if err != nil {
		return nil, err
	}

	empty, err := s.EmptySubfoldersPerRoot(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.CompletedSubfoldersPerRoot(ctx)
	if err != nil {
		return nil, err
	}

	rootCounts, err := s.FilesPerRootFolder(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardSnapshot{
		Progress:            *progress,
		EmptySubfolders:     empty,
		CompletedSubfolders: completed,
		RootFileCounts:      rootCounts,
		ComputedAt:          time.Now().UTC(),
	}, nil
}

func (s *statsService) childIndex(ctx context.Context) (map[string][]models.Folder, error) {
	all, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	childrenByParent := make(map[string][]models.Folder)
	for _, f := range all {
		if f.ParentID != nil {
			childrenByParent[*f.ParentID] = append(childrenByParent[*f.ParentID], f)
		}
	}
	return childrenByParent, nil
}
