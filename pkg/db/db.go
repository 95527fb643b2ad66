// Package db holds the storage-agnostic transaction contract used by every
// repository. A TxFunc receives a context bound to the running transaction;
// repositories called with that context join it.
package db

import "context"

type TxFunc func(ctx context.Context) error

type TransactionManager interface {
	// ExecuteTransaction runs fn atomically. When ctx is already bound to a
	// transaction, fn joins it instead of opening a nested one. fn may be
	// invoked more than once if the store retries on a write conflict.
	ExecuteTransaction(ctx context.Context, fn TxFunc) error
}
