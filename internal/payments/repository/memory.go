package repository

import (
	"context"
	"sort"
	"time"

	paymentserrors "courtside/internal/payments/errors"
	"courtside/pkg/db/memory"
	"courtside/pkg/model"
)

type memoryLedgerRepository struct {
	store   *memory.Store
	entries *memory.Table[model.LedgerEntry]
}

func NewMemoryLedgerRepository(store *memory.Store) LedgerRepository {
	return &memoryLedgerRepository{
		store:   store,
		entries: memory.NewTable[model.LedgerEntry](store),
	}
}

func (r *memoryLedgerRepository) Insert(ctx context.Context, entry *model.LedgerEntry) error {
	defer r.store.Lock(ctx)()
	if entry.ChargeSlot != "" {
		for _, existing := range r.entries.Rows {
			if existing.ChargeSlot == entry.ChargeSlot {
				return paymentserrors.ErrChargeExists
			}
		}
	}
	r.entries.Rows[entry.ID] = *entry
	return nil
}

func (r *memoryLedgerRepository) FindByID(ctx context.Context, id string) (*model.LedgerEntry, error) {
	defer r.store.Lock(ctx)()
	entry, ok := r.entries.Rows[id]
	if !ok {
		return nil, paymentserrors.ErrEntryNotFound
	}
	return &entry, nil
}

func (r *memoryLedgerRepository) FindByReservation(ctx context.Context, reservationID string) ([]model.LedgerEntry, error) {
	return r.filter(ctx, func(e model.LedgerEntry) bool { return e.ReservationID == reservationID }, 0), nil
}

func (r *memoryLedgerRepository) Finalize(ctx context.Context, id string, f model.Finalization) (*model.LedgerEntry, error) {
	defer r.store.Lock(ctx)()
	entry, ok := r.entries.Rows[id]
	if !ok {
		return nil, paymentserrors.ErrEntryNotFound
	}
	if entry.Status != model.LedgerPending {
		return nil, paymentserrors.ErrNotPending
	}

	entry.Status = f.Status
	at := f.At
	entry.FinalizedAt = &at
	if f.ExternalReference != "" {
		entry.ExternalReference = f.ExternalReference
	}
	if f.Status == model.LedgerFailed {
		entry.FailureKind = f.FailureKind
		entry.FailureReason = f.FailureReason
		entry.ChargeSlot = ""
	}
	r.entries.Rows[id] = entry
	return &entry, nil
}

func (r *memoryLedgerRepository) FindPendingCharges(ctx context.Context, createdBefore time.Time, limit int) ([]model.LedgerEntry, error) {
	return r.filter(ctx, func(e model.LedgerEntry) bool {
		return e.Direction == model.DirectionCharge && e.Status == model.LedgerPending && e.CreatedAt.Before(createdBefore)
	}, limit), nil
}

// Guard is a no-op: the store mutex already serializes transactions.
func (r *memoryLedgerRepository) Guard(context.Context, string) error {
	return nil
}

// filter returns matches ordered oldest first.
func (r *memoryLedgerRepository) filter(ctx context.Context, keep func(model.LedgerEntry) bool, limit int) []model.LedgerEntry {
	defer r.store.Lock(ctx)()
	entries := []model.LedgerEntry{}
	for _, e := range r.entries.Rows {
		if keep(e) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return memory.Page(entries, limit, 0)
}

type memoryWalletRepository struct {
	store   *memory.Store
	wallets *memory.Table[model.Wallet]
}

func NewMemoryWalletRepository(store *memory.Store) WalletRepository {
	return &memoryWalletRepository{
		store:   store,
		wallets: memory.NewTable[model.Wallet](store),
	}
}

func (r *memoryWalletRepository) Find(ctx context.Context, userID string) (*model.Wallet, error) {
	defer r.store.Lock(ctx)()
	wallet, ok := r.wallets.Rows[userID]
	if !ok {
		return &model.Wallet{UserID: userID}, nil
	}
	return &wallet, nil
}

func (r *memoryWalletRepository) Credit(ctx context.Context, userID string, amountCents int64, now time.Time) (*model.Wallet, error) {
	defer r.store.Lock(ctx)()
	wallet := r.wallets.Rows[userID]
	wallet.UserID = userID
	wallet.BalanceCents += amountCents
	wallet.UpdatedAt = now
	r.wallets.Rows[userID] = wallet
	return &wallet, nil
}

func (r *memoryWalletRepository) Debit(ctx context.Context, userID string, amountCents int64, now time.Time) (*model.Wallet, error) {
	defer r.store.Lock(ctx)()
	wallet, ok := r.wallets.Rows[userID]
	if !ok || wallet.BalanceCents < amountCents {
		return nil, paymentserrors.ErrInsufficientBalance
	}
	wallet.BalanceCents -= amountCents
	wallet.UpdatedAt = now
	r.wallets.Rows[userID] = wallet
	return &wallet, nil
}
