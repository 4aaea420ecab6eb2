package models

import (
	"time"
)

// Activity is one audit-log entry. The core records activities after
// mutations but never depends on them.
type Activity struct {
	ID        string         `json:"id" db:"id"`
	Action    string         `json:"action" db:"action"`
	Metadata  map[string]any `json:"metadata" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Activity actions recorded by the folder and file services.
const (
	ActionCreateFolder = "Create folder"
	ActionDeleteFolder = "Delete folder"
	ActionUploadFile   = "Upload file"
	ActionRenameFile   = "Rename file"
	ActionDeleteFile   = "Delete file"
)
