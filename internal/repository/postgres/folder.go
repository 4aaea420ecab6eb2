package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docuvault/internal/domain"
	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{pool: config.Pool}
}

const folderColumns = "id, parent_id, name, assignees, upload_limit, file_count, created_at, updated_at"

func scanFolder(row pgx.Row, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&folder.Assignees,
		&folder.UploadLimit,
		&folder.FileCount,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
}

// Create inserts a new folder record
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	if folder.Assignees == nil {
		folder.Assignees = []models.Assignee{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, name, assignees, upload_limit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING file_count, created_at, updated_at
	`, tableFolders)

	return withRetry(ctx, func(ctx context.Context) error {
		err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
			folder.ID,
			folder.ParentID,
			folder.Name,
			folder.Assignees,
			folder.UploadLimit,
		).Scan(&folder.FileCount, &folder.CreatedAt, &folder.UpdatedAt)

		if err != nil {
			if isPgDuplicateError(err) {
				return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
			}
			return fmt.Errorf("create folder: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, folderColumns, tableFolders)

	var folder models.Folder
	err := withRetry(ctx, func(ctx context.Context) error {
		return scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), &folder)
	})

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// GetByName retrieves every folder carrying the given name
func (r *PostgresFolderRepository) GetByName(ctx context.Context, name string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE name = $1 ORDER BY created_at ASC
	`, folderColumns, tableFolders)

	return r.queryFolders(ctx, query, name)
}

// Update persists folder field changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, upload_limit = $3, updated_at = now()
		WHERE id = $4
	`, tableFolders)

	return withRetry(ctx, func(ctx context.Context) error {
		result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
			folder.ParentID,
			folder.Name,
			folder.UploadLimit,
			folder.ID,
		)
		if err != nil {
			if isPgDuplicateError(err) {
				return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
			}
			return fmt.Errorf("update folder: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return nil
	})
}

// Delete removes a folder record. Deleting an absent folder is a no-op so
// cascade deletions stay idempotent.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tableFolders)

	return withRetry(ctx, func(ctx context.Context) error {
		if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id); err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		return nil
	})
}

// ListChildren lists immediate child folders; nil parentID lists roots
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID == nil {
		query := fmt.Sprintf(`
			SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY created_at ASC
		`, folderColumns, tableFolders)
		return r.queryFolders(ctx, query)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE parent_id = $1 ORDER BY created_at ASC
	`, folderColumns, tableFolders)
	return r.queryFolders(ctx, query, *parentID)
}

// ListAll retrieves the whole forest as a flat list ordered by created_at
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY created_at ASC
	`, folderColumns, tableFolders)
	return r.queryFolders(ctx, query)
}

// AddAssignee unions an assignee into the folder's assignee set. The store
// has no native array-union for jsonb, so the set semantics are emulated
// with a row-locked read-modify-write; callers wrap this in a transaction.
func (r *PostgresFolderRepository) AddAssignee(ctx context.Context, folderID string, assignee models.Assignee) error {
	selectQuery := fmt.Sprintf(`SELECT assignees FROM %s WHERE id = $1 FOR UPDATE`, tableFolders)
	updateQuery := fmt.Sprintf(`UPDATE %s SET assignees = $1, updated_at = now() WHERE id = $2`, tableFolders)

	exec := GetExecutor(ctx, r.pool)

	var assignees []models.Assignee
	if err := exec.QueryRow(ctx, selectQuery, folderID).Scan(&assignees); err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		return fmt.Errorf("lock assignees: %w", err)
	}

	for _, existing := range assignees {
		if existing == assignee {
			return nil // already present, set semantics
		}
	}
	assignees = append(assignees, assignee)

	if _, err := exec.Exec(ctx, updateQuery, assignees, folderID); err != nil {
		return fmt.Errorf("update assignees: %w", err)
	}
	return nil
}

// RemoveAssignee removes an exact-match assignee; no-op when absent
func (r *PostgresFolderRepository) RemoveAssignee(ctx context.Context, folderID string, assignee models.Assignee) error {
	selectQuery := fmt.Sprintf(`SELECT assignees FROM %s WHERE id = $1 FOR UPDATE`, tableFolders)
	updateQuery := fmt.Sprintf(`UPDATE %s SET assignees = $1, updated_at = now() WHERE id = $2`, tableFolders)

	exec := GetExecutor(ctx, r.pool)

	var assignees []models.Assignee
	if err := exec.QueryRow(ctx, selectQuery, folderID).Scan(&assignees); err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		return fmt.Errorf("lock assignees: %w", err)
	}

	kept := assignees[:0]
	for _, existing := range assignees {
		if existing != assignee {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(assignees) {
		return nil
	}

	if _, err := exec.Exec(ctx, updateQuery, kept, folderID); err != nil {
		return fmt.Errorf("update assignees: %w", err)
	}
	return nil
}

// AdjustFileCount shifts the denormalized file counter by delta
func (r *PostgresFolderRepository) AdjustFileCount(ctx context.Context, folderID string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET file_count = GREATEST(file_count + $1, 0), updated_at = now()
		WHERE id = $2
	`, tableFolders)

	return withRetry(ctx, func(ctx context.Context) error {
		if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, delta, folderID); err != nil {
			return fmt.Errorf("adjust file count: %w", err)
		}
		return nil
	})
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	var folders []models.Folder

	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list folders: %w", err)
		}
		defer rows.Close()

		folders = folders[:0]
		for rows.Next() {
			var folder models.Folder
			if err := scanFolder(rows, &folder); err != nil {
				return fmt.Errorf("scan folder: %w", err)
			}
			folders = append(folders, folder)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate folders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return folders, nil
}
