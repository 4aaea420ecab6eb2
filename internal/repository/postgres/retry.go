package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

const (
	maxRetries     = 3
	retryBase      = 100 * time.Millisecond
	attemptTimeout = 5 * time.Second
)

// withRetry runs op with a per-attempt timeout and bounded exponential
// backoff. Only errors pgx reports as safe to retry (the statement never
// reached the server) are retried, so mutations are never replayed.
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		err := op(attemptCtx)
		if err != nil && pgconn.SafeToRetry(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
