// Package memory is the in-process store used by tests and by
// STORE_DRIVER=memory. One mutex serializes every transaction, which is
// trivially serializable; participants snapshot their tables when a
// transaction starts and restore them if it fails.
package memory

import (
	"context"
	"sync"

	"courtside/pkg/db"
)

type txKey struct{}

// Participant is a table that can roll back to the state it had when a
// transaction began.
type Participant interface {
	Snapshot() (restore func())
}

type Store struct {
	mu           sync.Mutex
	participants []Participant
}

func NewStore() *Store {
	return &Store{}
}

var _ db.TransactionManager = (*Store)(nil)

// Register adds a table to the rollback set. Call it before serving traffic.
func (s *Store) Register(p Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append(s.participants, p)
}

func (s *Store) ExecuteTransaction(ctx context.Context, fn db.TxFunc) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restores := make([]func(), 0, len(s.participants))
	for _, p := range s.participants {
		restores = append(restores, p.Snapshot())
	}

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// Lock guards a single repository call. Inside a transaction the store mutex
// is already held, so it is a no-op.
func (s *Store) Lock(ctx context.Context) func() {
	if InTransaction(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func InTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// Table is a keyed collection of values with snapshot support.
type Table[T any] struct {
	Rows map[string]T
}

func NewTable[T any](store *Store) *Table[T] {
	t := &Table[T]{Rows: make(map[string]T)}
	store.Register(t)
	return t
}

func (t *Table[T]) Snapshot() func() {
	saved := make(map[string]T, len(t.Rows))
	for k, v := range t.Rows {
		saved[k] = v
	}
	return func() { t.Rows = saved }
}

// Page applies limit/offset to an already ordered slice.
func Page[T any](items []T, limit int, offset int64) []T {
	if offset >= int64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
