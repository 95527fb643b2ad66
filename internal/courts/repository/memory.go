package repository

import (
	"context"
	"sort"

	courtserrors "courtside/internal/courts/errors"
	"courtside/pkg/db/memory"
	"courtside/pkg/model"
)

type memoryCourtRepository struct {
	store  *memory.Store
	courts *memory.Table[model.Court]
}

func NewMemoryCourtRepository(store *memory.Store) CourtRepository {
	return &memoryCourtRepository{
		store:  store,
		courts: memory.NewTable[model.Court](store),
	}
}

func (r *memoryCourtRepository) Create(ctx context.Context, court *model.Court) error {
	defer r.store.Lock(ctx)()
	r.courts.Rows[court.ID] = *court
	return nil
}

func (r *memoryCourtRepository) FindByID(ctx context.Context, id string) (*model.Court, error) {
	defer r.store.Lock(ctx)()
	court, ok := r.courts.Rows[id]
	if !ok {
		return nil, courtserrors.ErrNotFound
	}
	return &court, nil
}

func (r *memoryCourtRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.Court, error) {
	defer r.store.Lock(ctx)()
	courts := make([]model.Court, 0, len(r.courts.Rows))
	for _, c := range r.courts.Rows {
		courts = append(courts, c)
	}
	sort.Slice(courts, func(i, j int) bool { return courts[i].Name < courts[j].Name })
	return memory.Page(courts, limit, offset), nil
}

func (r *memoryCourtRepository) Count(ctx context.Context) (int64, error) {
	defer r.store.Lock(ctx)()
	return int64(len(r.courts.Rows)), nil
}

func (r *memoryCourtRepository) Update(ctx context.Context, court *model.Court) error {
	defer r.store.Lock(ctx)()
	existing, ok := r.courts.Rows[court.ID]
	if !ok {
		return courtserrors.ErrNotFound
	}
	updated := *court
	updated.BookingVersion = existing.BookingVersion
	r.courts.Rows[court.ID] = updated
	return nil
}

func (r *memoryCourtRepository) BumpBookingVersion(ctx context.Context, id string) error {
	defer r.store.Lock(ctx)()
	court, ok := r.courts.Rows[id]
	if !ok {
		return courtserrors.ErrNotFound
	}
	court.BookingVersion++
	r.courts.Rows[id] = court
	return nil
}
