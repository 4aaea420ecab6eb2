package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
)

func (f *folderFixture) mustAddFile(t *testing.T, folderID, name string) *models.File {
	t.Helper()
	file := &models.File{FolderID: folderID, Name: name, StorageKey: "blob-" + name}
	if err := f.files.Create(context.Background(), file); err != nil {
		t.Fatalf("create file %q failed: %v", name, err)
	}
	f.blobs.objects[file.StorageKey] = []byte(name)
	return file
}

func TestDeleteFolderRecursive(t *testing.T) {
	fx := newFolderFixture()

	// Root with two files, a child with one file, and a grandchild.
	root := fx.mustCreate(t, "Root", nil)
	child := fx.mustCreate(t, "Child", &root.ID)
	grandchild := fx.mustCreate(t, "Grandchild", &child.ID)
	fx.mustAddFile(t, root.ID, "r1")
	fx.mustAddFile(t, root.ID, "r2")
	fx.mustAddFile(t, child.ID, "c1")
	fx.mustAddFile(t, grandchild.ID, "g1")

	// An unrelated sibling tree must survive.
	other := fx.mustCreate(t, "Other", nil)
	kept := fx.mustAddFile(t, other.ID, "o1")

	if err := fx.svc.DeleteFolderRecursive(context.Background(), root.ID); err != nil {
		t.Fatalf("DeleteFolderRecursive failed: %v", err)
	}

	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		if _, err := fx.folders.GetByID(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("folder %s still present after cascade", id)
		}
	}
	if files, _ := fx.files.ListByFolder(context.Background(), root.ID); len(files) != 0 {
		t.Errorf("root files still present: %+v", files)
	}
	if _, err := fx.files.GetByID(context.Background(), kept.ID); err != nil {
		t.Errorf("unrelated file deleted: %v", err)
	}
	if otherFolder, err := fx.folders.GetByID(context.Background(), other.ID); err != nil || otherFolder.Name != "Other" {
		t.Errorf("unrelated folder affected: %v", err)
	}

	// Blobs of the deleted subtree are gone, the survivor's remains.
	if fx.blobs.len() != 1 {
		t.Errorf("blob count = %d, want 1 surviving object", fx.blobs.len())
	}
}

func TestDeleteFolderRecursiveRecordsActivity(t *testing.T) {
	fx := newFolderFixture()
	folder := fx.mustCreate(t, "Doomed", nil)

	if err := fx.svc.DeleteFolderRecursive(context.Background(), folder.ID); err != nil {
		t.Fatalf("DeleteFolderRecursive failed: %v", err)
	}

	entries := fx.activity.byAction(models.ActionDeleteFolder)
	if len(entries) != 1 {
		t.Fatalf("got %d delete-folder activities, want 1", len(entries))
	}
	if entries[0].Metadata["folderId"] != folder.ID || entries[0].Metadata["folderName"] != "Doomed" {
		t.Errorf("activity metadata = %+v", entries[0].Metadata)
	}
}

func TestDeleteFolderRecursiveRecordsActivityPerFolder(t *testing.T) {
	fx := newFolderFixture()
	root := fx.mustCreate(t, "Root", nil)
	child := fx.mustCreate(t, "Child", &root.ID)

	if err := fx.svc.DeleteFolderRecursive(context.Background(), root.ID); err != nil {
		t.Fatalf("DeleteFolderRecursive failed: %v", err)
	}

	// Every deleted folder leaves its own audit entry, children included.
	entries := fx.activity.byAction(models.ActionDeleteFolder)
	if len(entries) != 2 {
		t.Fatalf("got %d delete-folder activities, want 2", len(entries))
	}
	byID := make(map[string]string)
	for _, e := range entries {
		byID[e.Metadata["folderId"].(string)] = e.Metadata["folderName"].(string)
	}
	if byID[root.ID] != "Root" || byID[child.ID] != "Child" {
		t.Errorf("activity entries = %+v, want one per deleted folder", byID)
	}
}

func TestDeleteFolderRecursiveIdempotent(t *testing.T) {
	fx := newFolderFixture()
	folder := fx.mustCreate(t, "Once", nil)

	if err := fx.svc.DeleteFolderRecursive(context.Background(), folder.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := fx.svc.DeleteFolderRecursive(context.Background(), folder.ID); err != nil {
		t.Errorf("second delete = %v, want nil", err)
	}
	if err := fx.svc.DeleteFolderRecursive(context.Background(), "never-existed"); err != nil {
		t.Errorf("deleting unknown folder = %v, want nil", err)
	}
}

func TestDeleteFolderRecursivePartialFailure(t *testing.T) {
	fx := newFolderFixture()
	root := fx.mustCreate(t, "Root", nil)
	goodChild := fx.mustCreate(t, "Good", &root.ID)
	badChild := fx.mustCreate(t, "Bad", &root.ID)
	underBad := fx.mustCreate(t, "Under Bad", &badChild.ID)
	stuck := fx.mustAddFile(t, badChild.ID, "stuck")
	spared := fx.mustAddFile(t, underBad.ID, "spared")

	fx.files.failDelete[stuck.ID] = fmt.Errorf("storage offline")

	err := fx.svc.DeleteFolderRecursive(context.Background(), root.ID)
	if err == nil {
		t.Fatal("expected cascade error, got nil")
	}
	if !errors.Is(err, domain.ErrPartialCascade) {
		t.Errorf("errors.Is(err, ErrPartialCascade) = false for %v", err)
	}

	var cascadeErr *domain.CascadeError
	if !errors.As(err, &cascadeErr) {
		t.Fatalf("error is not a *CascadeError: %v", err)
	}
	if cascadeErr.FolderID != root.ID {
		t.Errorf("cascade FolderID = %s, want %s", cascadeErr.FolderID, root.ID)
	}
	if len(cascadeErr.Branches) != 1 {
		t.Fatalf("got %d branch failures, want 1: %+v", len(cascadeErr.Branches), cascadeErr.Branches)
	}
	if b := cascadeErr.Branches[0]; b.FolderID != badChild.ID || b.FileID != stuck.ID {
		t.Errorf("branch failure = %+v, want folder %s file %s", b, badChild.ID, stuck.ID)
	}
	if !strings.Contains(err.Error(), "storage offline") {
		t.Errorf("error message %q does not mention the cause", err.Error())
	}

	// The failed branch's ancestors stay; the clean branch is gone.
	if _, err := fx.folders.GetByID(context.Background(), root.ID); err != nil {
		t.Error("root removed despite failed branch")
	}
	if _, err := fx.folders.GetByID(context.Background(), badChild.ID); err != nil {
		t.Error("failing child removed despite stuck file")
	}
	if _, err := fx.folders.GetByID(context.Background(), goodChild.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("clean sibling branch not deleted")
	}

	// The branch aborts at the stuck file, so everything below the
	// failing folder is never touched.
	if _, err := fx.folders.GetByID(context.Background(), underBad.ID); err != nil {
		t.Error("subtree below failing folder removed, want untouched")
	}
	if _, err := fx.files.GetByID(context.Background(), spared.ID); err != nil {
		t.Error("file below failing folder removed, want untouched")
	}

	// Only folders that actually went away leave an audit entry.
	if entries := fx.activity.byAction(models.ActionDeleteFolder); len(entries) != 1 {
		t.Errorf("got %d delete activities for failed cascade, want 1 for the clean branch", len(entries))
	}

	// Clearing the fault lets a retry finish the job.
	delete(fx.files.failDelete, stuck.ID)
	if err := fx.svc.DeleteFolderRecursive(context.Background(), root.ID); err != nil {
		t.Fatalf("retry after fault cleared failed: %v", err)
	}
	if _, err := fx.folders.GetByID(context.Background(), root.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("root still present after successful retry")
	}
	if _, err := fx.folders.GetByID(context.Background(), underBad.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("deep folder still present after successful retry")
	}
}
