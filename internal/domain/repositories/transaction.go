package repositories

import "context"

// TxFn runs with a transaction bound to ctx; repository calls made through
// that ctx join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager scopes a unit of work to one transaction. Used where
// a read-modify-write must not interleave, like assignee set updates.
type TransactionManager interface {
	// ExecTx runs fn in a transaction, committing on nil and rolling back
	// on error or panic
	ExecTx(ctx context.Context, fn TxFn) error
}
