package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
)

// memFolderRepo is an in-memory FolderRepository. failDelete lets cascade
// tests force branch failures for specific folder IDs.
type memFolderRepo struct {
	mu         sync.Mutex
	folders    map[string]*models.Folder
	seq        int
	failDelete map[string]error
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{
		folders:    make(map[string]*models.Folder),
		failDelete: make(map[string]error),
	}
}

func (r *memFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	r.seq++
	// Distinct timestamps keep created_at ordering deterministic.
	folder.CreatedAt = time.Unix(int64(r.seq), 0)
	folder.UpdatedAt = folder.CreatedAt
	if folder.Assignees == nil {
		folder.Assignees = []models.Assignee{}
	}
	cp := *folder
	r.folders[folder.ID] = &cp
	return nil
}

func (r *memFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (r *memFolderRepo) GetByName(ctx context.Context, name string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.Name == name {
			out = append(out, *f)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *memFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	cp := *folder
	cp.UpdatedAt = time.Now()
	r.folders[folder.ID] = &cp
	return nil
}

func (r *memFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failDelete[id]; ok {
		return err
	}
	delete(r.folders, id)
	return nil
}

func (r *memFolderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Folder{}
	for _, f := range r.folders {
		if parentID == nil {
			if f.ParentID == nil {
				out = append(out, *f)
			}
		} else if f.ParentID != nil && *f.ParentID == *parentID {
			out = append(out, *f)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *memFolderRepo) ListAll(ctx context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Folder, 0, len(r.folders))
	for _, f := range r.folders {
		out = append(out, *f)
	}
	sortByCreated(out)
	return out, nil
}

func (r *memFolderRepo) AddAssignee(ctx context.Context, folderID string, assignee models.Assignee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	for _, existing := range f.Assignees {
		if existing == assignee {
			return nil
		}
	}
	f.Assignees = append(f.Assignees, assignee)
	return nil
}

func (r *memFolderRepo) RemoveAssignee(ctx context.Context, folderID string, assignee models.Assignee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	kept := f.Assignees[:0]
	for _, existing := range f.Assignees {
		if existing != assignee {
			kept = append(kept, existing)
		}
	}
	f.Assignees = kept
	return nil
}

func (r *memFolderRepo) AdjustFileCount(ctx context.Context, folderID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	f.FileCount += delta
	if f.FileCount < 0 {
		f.FileCount = 0
	}
	return nil
}

func sortByCreated(folders []models.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})
}

// memFileRepo is an in-memory FileRepository with per-ID delete failures.
type memFileRepo struct {
	mu         sync.Mutex
	files      map[string]*models.File
	failDelete map[string]error
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{
		files:      make(map[string]*models.File),
		failDelete: make(map[string]error),
	}
}

func (r *memFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt
	cp := *file
	r.files[file.ID] = &cp
	return nil
}

func (r *memFileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (r *memFileRepo) Update(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.ID]; !ok {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	cp := *file
	r.files[file.ID] = &cp
	return nil
}

func (r *memFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failDelete[id]; ok {
		return err
	}
	delete(r.files, id)
	return nil
}

func (r *memFileRepo) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.File{}
	for _, f := range r.files {
		if f.FolderID == folderID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFileRepo) CountByFolder(ctx context.Context, folderID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.files {
		if f.FolderID == folderID {
			n++
		}
	}
	return n, nil
}

// memActivityRepo records activity entries in memory.
type memActivityRepo struct {
	mu      sync.Mutex
	entries []models.Activity
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{}
}

func (r *memActivityRepo) Record(ctx context.Context, action string, metadata map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, models.Activity{
		ID:        uuid.New().String(),
		Action:    action,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *memActivityRepo) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Activity, len(r.entries))
	copy(out, r.entries)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memActivityRepo) byAction(action string) []models.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Activity
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// memBlobStore keeps objects in memory; Delete for a listed key fails.
type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (s *memBlobStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if s.failPut != nil {
		return s.failPut
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memBlobStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// passthroughTxManager runs the function without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// manualFeed is a ChangeFeed driven by the test.
type manualFeed struct {
	changes chan repositories.CollectionChange
}

func newManualFeed() *manualFeed {
	return &manualFeed{changes: make(chan repositories.CollectionChange)}
}

func (f *manualFeed) Watch(ctx context.Context, fn func(repositories.CollectionChange)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change := <-f.changes:
			fn(change)
		}
	}
}
