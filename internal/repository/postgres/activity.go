package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
)

// PostgresActivityRepository implements the ActivityRepository interface
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(config *RepositoryConfig) repositories.ActivityRepository {
	return &PostgresActivityRepository{pool: config.Pool}
}

// Record appends an activity entry
func (r *PostgresActivityRepository) Record(ctx context.Context, action string, metadata map[string]any) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, action, metadata) VALUES ($1, $2, $3)
	`, tableActivity)

	return withRetry(ctx, func(ctx context.Context) error {
		if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, uuid.New().String(), action, metadata); err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		return nil
	})
}

// ListRecent returns the most recent entries, newest first
func (r *PostgresActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	query := fmt.Sprintf(`
		SELECT id, action, metadata, created_at FROM %s
		ORDER BY created_at DESC LIMIT $1
	`, tableActivity)

	var entries []models.Activity
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, limit)
		if err != nil {
			return fmt.Errorf("list activity: %w", err)
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			var entry models.Activity
			if err := rows.Scan(&entry.ID, &entry.Action, &entry.Metadata, &entry.CreatedAt); err != nil {
				return fmt.Errorf("scan activity: %w", err)
			}
			entries = append(entries, entry)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
