package repositories

import "context"

// CollectionChange is one mutation notification from the document store.
type CollectionChange struct {
	Collection string // "folders" or "files"
	Op         string // "INSERT", "UPDATE", "DELETE"
	RecordID   string
}

// ChangeFeed delivers push notifications on collection mutations. Watch
// blocks until ctx is cancelled, invoking fn for every change. Notifications
// are a wake-up signal only; consumers re-read the collections themselves.
type ChangeFeed interface {
	Watch(ctx context.Context, fn func(CollectionChange)) error
}
