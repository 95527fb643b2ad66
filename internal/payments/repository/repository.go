package repository

import (
	"context"
	"time"

	"courtside/pkg/model"
)

const (
	LedgerCollectionName = "Ledger_entries"
	GuardCollectionName  = "Ledger_guards"
	WalletCollectionName = "Wallets"
)

type LedgerRepository interface {
	// Insert fails with ErrChargeExists when entry carries a charge slot that
	// is already taken.
	Insert(ctx context.Context, entry *model.LedgerEntry) error
	FindByID(ctx context.Context, id string) (*model.LedgerEntry, error)
	// FindByReservation returns the entries oldest first.
	FindByReservation(ctx context.Context, reservationID string) ([]model.LedgerEntry, error)
	// Finalize applies the PENDING -> SUCCEEDED|FAILED write and returns the
	// updated entry, or ErrNotPending. A FAILED charge releases its slot.
	Finalize(ctx context.Context, id string, f model.Finalization) (*model.LedgerEntry, error)
	FindPendingCharges(ctx context.Context, createdBefore time.Time, limit int) ([]model.LedgerEntry, error)
	// Guard serializes ledger writes for one reservation inside a transaction.
	Guard(ctx context.Context, reservationID string) error
}

type WalletRepository interface {
	// Find returns an empty wallet for users who never topped up.
	Find(ctx context.Context, userID string) (*model.Wallet, error)
	Credit(ctx context.Context, userID string, amountCents int64, now time.Time) (*model.Wallet, error)
	// Debit fails with ErrInsufficientBalance unless balance >= amount.
	Debit(ctx context.Context, userID string, amountCents int64, now time.Time) (*model.Wallet, error)
}
