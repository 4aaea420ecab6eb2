package models

import (
	"time"
)

// AssigneeRole labels a folder assignment. Descriptive only; it confers no
// ownership of the folder's contents.
type AssigneeRole string

const (
	RoleOwner       AssigneeRole = "Owner"
	RoleReviewer    AssigneeRole = "Reviewer"
	RoleContributor AssigneeRole = "Contributor"
)

// Assignee is a non-owning user-role association attached to a folder.
// Two assignees are the same entry only when every field matches.
type Assignee struct {
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	Role        AssigneeRole `json:"role"`
	Description string       `json:"description"`
}

type Folder struct {
	ID          string     `json:"id" db:"id"`
	ParentID    *string    `json:"parent_id" db:"parent_id"` // NULL = root folder
	Name        string     `json:"name" db:"name"`
	Assignees   []Assignee `json:"assignees" db:"assignees"`
	UploadLimit *int       `json:"upload_limit,omitempty" db:"upload_limit"`
	FileCount   int        `json:"file_count" db:"file_count"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top of the forest.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// HasAssignee reports whether an identical assignee entry is already present.
func (f *Folder) HasAssignee(a Assignee) bool {
	for _, existing := range f.Assignees {
		if existing == a {
			return true
		}
	}
	return false
}

// IsAssignedTo reports whether any assignee entry belongs to the user.
func (f *Folder) IsAssignedTo(userID string) bool {
	for _, existing := range f.Assignees {
		if existing.UserID == userID {
			return true
		}
	}
	return false
}

// FolderDetails is a folder with its resolved ancestor chain. Parent is nil
// for root folders; every level links its own parent up to the root.
type FolderDetails struct {
	Folder
	Parent *FolderDetails `json:"parent,omitempty"`
}

// FolderContents is a folder view with its immediate children.
type FolderContents struct {
	Folder     *Folder  `json:"folder,omitempty"` // nil when listing roots
	Subfolders []Folder `json:"subfolders"`
	Files      []File   `json:"files"`
}
