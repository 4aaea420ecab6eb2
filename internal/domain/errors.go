package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrValidation     = errors.New("validation failed")
	ErrLimitExceeded  = errors.New("upload limit reached")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrPartialCascade = errors.New("cascade partially failed")
)

// BranchFailure records one failed branch of a cascade deletion.
type BranchFailure struct {
	FolderID string
	FileID   string
	Err      error
}

func (b BranchFailure) String() string {
	if b.FileID != "" {
		return fmt.Sprintf("file %s in folder %s: %v", b.FileID, b.FolderID, b.Err)
	}
	return fmt.Sprintf("folder %s: %v", b.FolderID, b.Err)
}

// CascadeError reports a partially-completed recursive deletion. Deletions
// that finished before the failure are not rolled back; callers can re-invoke
// the delete, which treats already-absent records as no-ops.
type CascadeError struct {
	FolderID string
	Branches []BranchFailure
}

func (e *CascadeError) Error() string {
	msgs := make([]string, len(e.Branches))
	for i, b := range e.Branches {
		msgs[i] = b.String()
	}
	return fmt.Sprintf("delete folder %s incomplete: %s", e.FolderID, strings.Join(msgs, "; "))
}

// Is allows errors.Is() to match against ErrPartialCascade
func (e *CascadeError) Is(target error) bool {
	return target == ErrPartialCascade
}

// Unwrap exposes the first branch failure for errors.Is/As chains.
func (e *CascadeError) Unwrap() error {
	if len(e.Branches) == 0 {
		return nil
	}
	return e.Branches[0].Err
}
