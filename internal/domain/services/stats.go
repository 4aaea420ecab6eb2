package services

import (
	"context"

	"docuvault/internal/domain/models"
)

// StatsService derives dashboard statistics by walking the folder forest.
// Every query issues one store round-trip per folder it inspects, so cost
// grows with folder count; acceptable for bounded trees, not beyond moderate
// fan-out.
type StatsService interface {
	// CountFilesInSubtree sums file counts for a folder and all descendants
	CountFilesInSubtree(ctx context.Context, folderID string) (int, error)

	// EmptySubfoldersPerRoot lists, per root folder, the direct children
	// owning zero files. Roots without empty children are omitted.
	EmptySubfoldersPerRoot(ctx context.Context) ([]models.RootSubfolders, error)

	// CompletedSubfoldersPerRoot is the complement: children with >=1 file
	CompletedSubfoldersPerRoot(ctx context.Context) ([]models.RootSubfolders, error)

	// OverallProgress computes forest-wide completion; reports 0.00% on an
	// empty forest rather than failing
	OverallProgress(ctx context.Context) (*models.OverallProgress, error)

	// FilesPerRootFolder totals subtree files per root folder
	FilesPerRootFolder(ctx context.Context) ([]models.RootFileCount, error)

	// AreaTree resolves the root folders named areaName with their direct
	// files and one level of subfolders
	AreaTree(ctx context.Context, areaName string) ([]models.AreaFolder, error)

	// FoldersForUser returns the assignee-filtered forest view for a user
	FoldersForUser(ctx context.Context, userID string, parentID *string) (*models.UserForest, error)

	// Snapshot recomputes every dashboard aggregation at once
	Snapshot(ctx context.Context) (*models.DashboardSnapshot, error)
}

// UsagePercentage reports how full a folder is against the fixed 100-file
// ceiling, clamped to 100. The ceiling is a placeholder policy carried over
// from the dashboard it feeds, deliberately not configurable.
func UsagePercentage(folder *models.Folder) float64 {
	const maxFileCount = 100
	pct := float64(folder.FileCount) / maxFileCount * 100
	if pct > 100 {
		return 100
	}
	return pct
}
