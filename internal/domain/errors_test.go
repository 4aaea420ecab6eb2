package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCascadeErrorMatchesSentinel(t *testing.T) {
	err := &CascadeError{
		FolderID: "root",
		Branches: []BranchFailure{
			{FolderID: "child", FileID: "f1", Err: fmt.Errorf("disk full")},
		},
	}

	if !errors.Is(err, ErrPartialCascade) {
		t.Error("CascadeError should match ErrPartialCascade")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("CascadeError should not match ErrNotFound")
	}

	var target *CascadeError
	if !errors.As(err, &target) || target.FolderID != "root" {
		t.Errorf("errors.As failed: %+v", target)
	}
}

func TestCascadeErrorMessage(t *testing.T) {
	err := &CascadeError{
		FolderID: "root",
		Branches: []BranchFailure{
			{FolderID: "a", FileID: "f1", Err: fmt.Errorf("disk full")},
			{FolderID: "b", Err: fmt.Errorf("connection reset")},
		},
	}

	msg := err.Error()
	for _, want := range []string{"root", "f1", "disk full", "connection reset"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestCascadeErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("wrapped: %w", ErrNotFound)
	err := &CascadeError{
		FolderID: "root",
		Branches: []BranchFailure{{FolderID: "a", Err: cause}},
	}

	if !errors.Is(err.Unwrap(), ErrNotFound) {
		t.Error("Unwrap should expose the first branch cause")
	}

	empty := &CascadeError{FolderID: "root"}
	if empty.Unwrap() != nil {
		t.Error("Unwrap of empty branch list should be nil")
	}
}
