package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"docuvault/internal/domain/repositories"
)

// changeChannel is the NOTIFY channel the migration triggers publish to.
const changeChannel = "docuvault_changes"

// ChangeListener implements repositories.ChangeFeed over Postgres
// LISTEN/NOTIFY. The folders and files tables carry triggers (installed by
// the migrations) that notify on every row mutation.
type ChangeListener struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewChangeListener creates a new change listener
func NewChangeListener(config *RepositoryConfig) repositories.ChangeFeed {
	return &ChangeListener{pool: config.Pool, logger: config.Logger}
}

type changePayload struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         string `json:"id"`
}

// Watch blocks until ctx is cancelled, invoking fn for every collection
// change. Dropped connections are re-established with a short delay; changes
// occurring during the gap are missed, which is acceptable because consumers
// recompute from the collections rather than applying deltas.
func (l *ChangeListener) Watch(ctx context.Context, fn func(repositories.CollectionChange)) error {
	for {
		err := l.listen(ctx, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			l.logger.Warn("change listener disconnected, retrying", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context, fn func(repositories.CollectionChange)) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return fmt.Errorf("listen %s: %w", changeChannel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		var payload changePayload
		if err := json.Unmarshal([]byte(notification.Payload), &payload); err != nil {
			l.logger.Warn("malformed change notification", "payload", notification.Payload)
			continue
		}

		fn(repositories.CollectionChange{
			Collection: payload.Collection,
			Op:         payload.Op,
			RecordID:   payload.ID,
		})
	}
}
