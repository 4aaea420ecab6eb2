package models

import (
	"time"
)

// OverallProgress summarizes folder completion across the whole forest.
// A folder counts as completed once it owns at least one file.
type OverallProgress struct {
	TotalFolders       int    `json:"total_folders"`
	CompletedFolders   int    `json:"completed_folders"`
	ProgressPercentage string `json:"progress_percentage"` // "NN.NN%" formatted
}

// RootSubfolders lists subfolder names under one root folder. Used for both
// the empty-subfolder and completed-subfolder dashboards; ordering follows
// root created_at, then child created_at.
type RootSubfolders struct {
	RootFolderName string   `json:"root_folder_name"`
	Subfolders     []string `json:"subfolders"`
}

// RootFileCount is the subtree file total for one root folder.
type RootFileCount struct {
	FolderName string `json:"folder_name"`
	TotalFiles int    `json:"total_files"`
}

// AreaSubfolder is one subfolder of an area root with its direct files.
type AreaSubfolder struct {
	Folder
	Files []File `json:"files"`
}

// AreaFolder is a dashboard-area root with direct files and one level of
// subfolders.
type AreaFolder struct {
	Folder
	Files      []File          `json:"files"`
	Subfolders []AreaSubfolder `json:"subfolders"`
}

// UserForest is the assignee-filtered view of the folder forest for one
// user, plus the files of the requested parent folder.
type UserForest struct {
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}

// DashboardSnapshot is one live-subscription tick: every dashboard
// aggregation recomputed against the same collection state. Seq increases
// monotonically per watcher; consumers must drop snapshots older than the
// newest one they have applied.
type DashboardSnapshot struct {
	Seq                 uint64           `json:"seq"`
	Progress            OverallProgress  `json:"progress"`
	EmptySubfolders     []RootSubfolders `json:"empty_subfolders"`
	CompletedSubfolders []RootSubfolders `json:"completed_subfolders"`
	RootFileCounts      []RootFileCount  `json:"root_file_counts"`
	ComputedAt          time.Time        `json:"computed_at"`
}
