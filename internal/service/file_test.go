package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/services"
)

type fileFixture struct {
	folders  *memFolderRepo
	files    *memFileRepo
	activity *memActivityRepo
	blobs    *memBlobStore
	svc      services.FileService
}

func newFileFixture() *fileFixture {
	f := &fileFixture{
		folders:  newMemFolderRepo(),
		files:    newMemFileRepo(),
		activity: newMemActivityRepo(),
		blobs:    newMemBlobStore(),
	}
	f.svc = NewFileService(f.files, f.folders, f.activity, f.blobs, testLogger())
	return f
}

func (f *fileFixture) mustCreateFolder(t *testing.T, name string, limit *int) *models.Folder {
	t.Helper()
	folder := &models.Folder{Name: name, UploadLimit: limit}
	if err := f.folders.Create(context.Background(), folder); err != nil {
		t.Fatalf("create folder failed: %v", err)
	}
	return folder
}

func (f *fileFixture) upload(t *testing.T, folderID, name, content string) (*models.File, error) {
	t.Helper()
	return f.svc.Upload(context.Background(), &services.UploadFileRequest{
		FolderID:    folderID,
		Name:        name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	})
}

func TestUpload(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Docs", nil)

	file, err := fx.upload(t, folder.ID, "report", "hello")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if file.FolderID != folder.ID {
		t.Errorf("FolderID = %s, want %s", file.FolderID, folder.ID)
	}
	if file.Tags == nil || len(file.Tags) != 0 {
		t.Errorf("Tags = %v, want empty non-nil slice", file.Tags)
	}
	if file.StorageKey == "" {
		t.Error("StorageKey not assigned")
	}

	// Content round-trips through the blob store.
	rc, err := fx.blobs.Get(context.Background(), file.StorageKey)
	if err != nil {
		t.Fatalf("blob missing: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "hello" {
		t.Errorf("blob content = %q, want hello", data)
	}

	// Folder counter incremented.
	got, _ := fx.folders.GetByID(context.Background(), folder.ID)
	if got.FileCount != 1 {
		t.Errorf("folder FileCount = %d, want 1", got.FileCount)
	}

	if entries := fx.activity.byAction(models.ActionUploadFile); len(entries) != 1 {
		t.Errorf("got %d upload activities, want 1", len(entries))
	}
}

func TestUploadValidation(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Docs", nil)

	if _, err := fx.upload(t, folder.ID, "bad.name!", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid name = %v, want ErrValidation", err)
	}
	if _, err := fx.upload(t, "missing-folder", "report", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing folder = %v, want ErrNotFound", err)
	}
}

func TestUploadLimit(t *testing.T) {
	limit := 2
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Capped", &limit)

	for i := 0; i < limit; i++ {
		if _, err := fx.upload(t, folder.ID, fmt.Sprintf("file%d", i), "x"); err != nil {
			t.Fatalf("upload %d failed: %v", i, err)
		}
	}

	// The counter now equals the limit; the next upload is refused before
	// any content is stored.
	blobsBefore := fx.blobs.len()
	_, err := fx.upload(t, folder.ID, "overflow", "x")
	if !errors.Is(err, domain.ErrLimitExceeded) {
		t.Fatalf("upload past limit = %v, want ErrLimitExceeded", err)
	}
	if fx.blobs.len() != blobsBefore {
		t.Error("content stored despite refused upload")
	}

	// Deleting a file frees a slot.
	files, _ := fx.files.ListByFolder(context.Background(), folder.ID)
	if err := fx.svc.DeleteFile(context.Background(), files[0].ID); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if _, err := fx.upload(t, folder.ID, "replacement", "x"); err != nil {
		t.Errorf("upload after freeing a slot failed: %v", err)
	}
}

func TestUploadNoRecordOnContentFailure(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Flaky", nil)
	fx.blobs.failPut = fmt.Errorf("bucket unavailable")

	_, err := fx.upload(t, folder.ID, "report", "x")
	if err == nil {
		t.Fatal("expected upload failure")
	}
	if files, _ := fx.files.ListByFolder(context.Background(), folder.ID); len(files) != 0 {
		t.Errorf("file record written despite failed content store: %+v", files)
	}
	got, _ := fx.folders.GetByID(context.Background(), folder.ID)
	if got.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", got.FileCount)
	}
}

func TestDownload(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Docs", nil)
	file, err := fx.upload(t, folder.ID, "report", "the content")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	got, rc, err := fx.svc.Download(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer rc.Close()

	if got.Name != "report" {
		t.Errorf("name = %q, want report", got.Name)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "the content" {
		t.Errorf("content = %q, want %q", data, "the content")
	}

	if _, _, err := fx.svc.Download(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("download of missing file = %v, want ErrNotFound", err)
	}
}

func TestRenameFile(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Docs", nil)
	file, _ := fx.upload(t, folder.ID, "report", "x")

	renamed, err := fx.svc.RenameFile(context.Background(), file.ID, "final report")
	if err != nil {
		t.Fatalf("RenameFile failed: %v", err)
	}
	if renamed.Name != "final report" {
		t.Errorf("name = %q, want %q", renamed.Name, "final report")
	}

	if _, err := fx.svc.RenameFile(context.Background(), file.ID, "bad/name"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid rename = %v, want ErrValidation", err)
	}

	// File names have no length ceiling, unlike folders.
	long := strings.Repeat("n", 80)
	if _, err := fx.svc.RenameFile(context.Background(), file.ID, long); err != nil {
		t.Errorf("long file name rejected: %v", err)
	}
}

func TestUpdateTags(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Docs", nil)
	file, _ := fx.upload(t, folder.ID, "report", "x")

	// Order preserved, duplicates allowed.
	tags := []string{"b", "a", "b"}
	updated, err := fx.svc.UpdateTags(context.Background(), file.ID, tags)
	if err != nil {
		t.Fatalf("UpdateTags failed: %v", err)
	}
	if len(updated.Tags) != 3 || updated.Tags[0] != "b" || updated.Tags[1] != "a" || updated.Tags[2] != "b" {
		t.Errorf("tags = %v, want %v", updated.Tags, tags)
	}

	// nil clears to empty, not null.
	updated, err = fx.svc.UpdateTags(context.Background(), file.ID, nil)
	if err != nil {
		t.Fatalf("UpdateTags(nil) failed: %v", err)
	}
	if updated.Tags == nil || len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want empty non-nil slice", updated.Tags)
	}
}

func TestDeleteFile(t *testing.T) {
	fx := newFileFixture()
	folder := fx.mustCreateFolder(t, "Docs", nil)
	file, _ := fx.upload(t, folder.ID, "report", "x")

	if err := fx.svc.DeleteFile(context.Background(), file.ID); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}

	if _, err := fx.files.GetByID(context.Background(), file.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("file record still present")
	}
	got, _ := fx.folders.GetByID(context.Background(), folder.ID)
	if got.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", got.FileCount)
	}
	if fx.blobs.len() != 0 {
		t.Errorf("blob count = %d, want 0", fx.blobs.len())
	}
	if entries := fx.activity.byAction(models.ActionDeleteFile); len(entries) != 1 {
		t.Errorf("got %d delete activities, want 1", len(entries))
	}

	// Deleting again is a no-op.
	if err := fx.svc.DeleteFile(context.Background(), file.ID); err != nil {
		t.Errorf("second delete = %v, want nil", err)
	}
}
