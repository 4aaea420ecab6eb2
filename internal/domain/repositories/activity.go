package repositories

import (
	"context"

	"docuvault/internal/domain/models"
)

// ActivityRepository persists audit-log entries. Callers treat failures as
// non-fatal: a mutation that succeeded is reported as succeeded even when
// its activity record could not be written.
type ActivityRepository interface {
	// Record appends an activity entry
	Record(ctx context.Context, action string, metadata map[string]any) error

	// ListRecent returns the most recent entries, newest first
	ListRecent(ctx context.Context, limit int) ([]models.Activity, error)
}
