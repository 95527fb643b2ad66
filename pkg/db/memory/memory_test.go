package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestExecuteTransaction_RollsBackOnError(t *testing.T) {
	store := NewStore()
	table := NewTable[int](store)
	table.Rows["a"] = 1

	boom := errors.New("boom")
	err := store.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
		table.Rows["a"] = 2
		table.Rows["b"] = 3
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if table.Rows["a"] != 1 {
		t.Errorf("expected a=1 after rollback, got %d", table.Rows["a"])
	}
	if _, ok := table.Rows["b"]; ok {
		t.Error("expected b to be rolled back")
	}
}

func TestExecuteTransaction_NestedJoinsOuter(t *testing.T) {
	store := NewStore()
	table := NewTable[int](store)

	err := store.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
		return store.ExecuteTransaction(ctx, func(inner context.Context) error {
			if !InTransaction(inner) {
				t.Error("inner context should be bound to the transaction")
			}
			unlock := store.Lock(inner)
			defer unlock()
			table.Rows["x"] = 42
			return nil
		})
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows["x"] != 42 {
		t.Errorf("expected nested write to commit, got %d", table.Rows["x"])
	}
}

func TestExecuteTransaction_Serializes(t *testing.T) {
	store := NewStore()
	table := NewTable[int](store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
				table.Rows["counter"] = table.Rows["counter"] + 1
				return nil
			})
		}()
	}
	wg.Wait()

	if table.Rows["counter"] != 50 {
		t.Errorf("expected 50 increments, got %d", table.Rows["counter"])
	}
}
