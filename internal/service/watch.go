package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"docuvault/internal/domain/models"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"
)

// Watcher recomputes the dashboard snapshot whenever the change feed
// signals a collection mutation and fans the result out to subscribers.
//
// Every recomputation is stamped with a monotonically increasing sequence
// number taken at dispatch. Computations run concurrently and may finish
// out of order; a result is published only if its sequence is still ahead
// of the newest one already applied, so stale in-flight snapshots are
// dropped rather than delivered.
type Watcher struct {
	stats  services.StatsService
	feed   repositories.ChangeFeed
	logger *slog.Logger

	seq     atomic.Uint64
	applied atomic.Uint64

	mu          sync.RWMutex
	subscribers map[string]chan models.DashboardSnapshot
	latest      *models.DashboardSnapshot
}

// NewWatcher creates a new dashboard watcher
func NewWatcher(stats services.StatsService, feed repositories.ChangeFeed, logger *slog.Logger) *Watcher {
	return &Watcher{
		stats:       stats,
		feed:        feed,
		logger:      logger,
		subscribers: make(map[string]chan models.DashboardSnapshot),
	}
}

// Run computes an initial snapshot, then blocks watching the change feed
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.trigger(ctx)

	return w.feed.Watch(ctx, func(change repositories.CollectionChange) {
		w.logger.Debug("collection change",
			"collection", change.Collection,
			"op", change.Op,
			"record_id", change.RecordID,
		)
		w.trigger(ctx)
	})
}

// trigger dispatches one snapshot computation in the background.
func (w *Watcher) trigger(ctx context.Context) {
	seq := w.seq.Add(1)

	go func() {
		snapshot, err := w.stats.Snapshot(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Error("snapshot computation failed", "seq", seq, "error", err)
			}
			return
		}
		snapshot.Seq = seq
		w.publish(snapshot)
	}()
}

// publish delivers a snapshot unless a newer one already went out.
func (w *Watcher) publish(snapshot *models.DashboardSnapshot) {
	for {
		applied := w.applied.Load()
		if snapshot.Seq <= applied {
			w.logger.Debug("dropping stale snapshot", "seq", snapshot.Seq, "applied", applied)
			return
		}
		if w.applied.CompareAndSwap(applied, snapshot.Seq) {
			break
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// The CAS and this critical section are not one atomic step: a later
	// publisher can win the CAS and take the lock first. Re-check against
	// what is already installed so an overtaken snapshot never lands.
	if w.latest != nil && w.latest.Seq >= snapshot.Seq {
		w.logger.Debug("dropping overtaken snapshot", "seq", snapshot.Seq, "latest", w.latest.Seq)
		return
	}
	w.latest = snapshot

	// Sends happen under the lock so Unsubscribe cannot close a channel
	// mid-delivery. Slow consumers skip ticks rather than stall the watcher.
	for _, ch := range w.subscribers {
		select {
		case ch <- *snapshot:
		default:
		}
	}
}

// Subscribe registers a snapshot consumer. The latest snapshot, when one
// exists, is delivered immediately. The caller must Unsubscribe with the
// returned id when done.
func (w *Watcher) Subscribe() (string, <-chan models.DashboardSnapshot) {
	id := uuid.New().String()
	ch := make(chan models.DashboardSnapshot, 4)

	w.mu.Lock()
	w.subscribers[id] = ch
	latest := w.latest
	w.mu.Unlock()

	if latest != nil {
		ch <- *latest
	}

	return id, ch
}

// Unsubscribe removes a consumer and closes its channel.
func (w *Watcher) Unsubscribe(id string) {
	w.mu.Lock()
	ch, ok := w.subscribers[id]
	if ok {
		delete(w.subscribers, id)
	}
	w.mu.Unlock()

	if ok {
		close(ch)
	}
}

// Latest returns the most recently published snapshot, or nil before the
// first computation completes.
func (w *Watcher) Latest() *models.DashboardSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}
