package models

import (
	"time"
)

type File struct {
	ID          string    `json:"id" db:"id"`
	FolderID    string    `json:"folder_id" db:"folder_id"` // files always belong to a folder
	Name        string    `json:"name" db:"name"`
	Tags        []string  `json:"tags" db:"tags"` // ordered, duplicates allowed
	ContentType string    `json:"content_type,omitempty" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	StorageKey  string    `json:"-" db:"storage_key"` // blob store object key, not exposed
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
