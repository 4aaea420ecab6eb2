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

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{pool: config.Pool}
}

const fileColumns = "id, folder_id, name, tags, content_type, size, storage_key, created_at, updated_at"

func scanFile(row pgx.Row, file *models.File) error {
	return row.Scan(
		&file.ID,
		&file.FolderID,
		&file.Name,
		&file.Tags,
		&file.ContentType,
		&file.Size,
		&file.StorageKey,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
}

// Create inserts a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.Tags == nil {
		file.Tags = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, folder_id, name, tags, content_type, size, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, tableFiles)

	return withRetry(ctx, func(ctx context.Context) error {
		err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
			file.ID,
			file.FolderID,
			file.Name,
			file.Tags,
			file.ContentType,
			file.Size,
			file.StorageKey,
		).Scan(&file.CreatedAt, &file.UpdatedAt)

		if err != nil {
			if isPgForeignKeyError(err) {
				return fmt.Errorf("folder %s: %w", file.FolderID, domain.ErrNotFound)
			}
			return fmt.Errorf("create file: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, tableFiles)

	var file models.File
	err := withRetry(ctx, func(ctx context.Context) error {
		return scanFile(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), &file)
	})

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// Update persists file field changes
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $1, tags = $2, updated_at = now() WHERE id = $3
	`, tableFiles)

	return withRetry(ctx, func(ctx context.Context) error {
		result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, file.Name, file.Tags, file.ID)
		if err != nil {
			return fmt.Errorf("update file: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
		}
		return nil
	})
}

// Delete removes a file record. Deleting an absent file is a no-op so
// cascade deletions stay idempotent.
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tableFiles)

	return withRetry(ctx, func(ctx context.Context) error {
		if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id); err != nil {
			return fmt.Errorf("delete file: %w", err)
		}
		return nil
	})
}

// ListByFolder lists the files directly owned by a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE folder_id = $1 ORDER BY name ASC
	`, fileColumns, tableFiles)

	var files []models.File
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID)
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}
		defer rows.Close()

		files = files[:0]
		for rows.Next() {
			var file models.File
			if err := scanFile(rows, &file); err != nil {
				return fmt.Errorf("scan file: %w", err)
			}
			files = append(files, file)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate files: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// CountByFolder counts the files directly owned by a folder
func (r *PostgresFileRepository) CountByFolder(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE folder_id = $1`, tableFiles)

	var count int
	err := withRetry(ctx, func(ctx context.Context) error {
		return GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}

	return count, nil
}
