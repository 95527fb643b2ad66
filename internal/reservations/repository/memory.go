package repository

import (
	"context"
	"sort"
	"time"

	reservationerrors "courtside/internal/reservations/errors"
	"courtside/pkg/db/memory"
	"courtside/pkg/model"
)

type memoryReservationRepository struct {
	store        *memory.Store
	reservations *memory.Table[model.Reservation]
}

func NewMemoryReservationRepository(store *memory.Store) ReservationRepository {
	return &memoryReservationRepository{
		store:        store,
		reservations: memory.NewTable[model.Reservation](store),
	}
}

func (r *memoryReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	defer r.store.Lock(ctx)()
	r.reservations.Rows[reservation.ID] = *reservation
	return nil
}

func (r *memoryReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	defer r.store.Lock(ctx)()
	reservation, ok := r.reservations.Rows[id]
	if !ok {
		return nil, reservationerrors.ErrNotFound
	}
	return &reservation, nil
}

func (r *memoryReservationRepository) Update(ctx context.Context, reservation *model.Reservation, expectedVersion int64) error {
	defer r.store.Lock(ctx)()
	existing, ok := r.reservations.Rows[reservation.ID]
	if !ok {
		return reservationerrors.ErrNotFound
	}
	if existing.Version != expectedVersion {
		return reservationerrors.ErrVersionConflict
	}
	r.reservations.Rows[reservation.ID] = *reservation
	return nil
}

func (r *memoryReservationRepository) FindOverlapping(ctx context.Context, courtID string, start, end time.Time) ([]model.Reservation, error) {
	return r.filter(ctx, byStart, func(res model.Reservation) bool {
		return res.CourtID == courtID && res.Status.Occupies() && res.Overlaps(start, end)
	}), nil
}

func (r *memoryReservationRepository) FindByCourtRange(ctx context.Context, courtID string, from, to time.Time) ([]model.Reservation, error) {
	return r.filter(ctx, byStart, func(res model.Reservation) bool {
		return res.CourtID == courtID && res.Overlaps(from, to)
	}), nil
}

func (r *memoryReservationRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]model.Reservation, error) {
	reservations := r.filter(ctx, func(a, b model.Reservation) bool { return a.Start.After(b.Start) }, func(res model.Reservation) bool {
		return res.UserID == userID
	})
	return memory.Page(reservations, limit, offset), nil
}

func (r *memoryReservationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return int64(len(r.filter(ctx, byStart, func(res model.Reservation) bool {
		return res.UserID == userID
	}))), nil
}

func (r *memoryReservationRepository) FindNoShowCandidates(ctx context.Context, endedBy time.Time, limit int) ([]model.Reservation, error) {
	reservations := r.filter(ctx, func(a, b model.Reservation) bool { return a.End.Before(b.End) }, func(res model.Reservation) bool {
		return res.Status == model.ReservationPaid && !res.End.After(endedBy)
	})
	return memory.Page(reservations, limit, 0), nil
}

func byStart(a, b model.Reservation) bool {
	return a.Start.Before(b.Start)
}

func (r *memoryReservationRepository) filter(ctx context.Context, less func(a, b model.Reservation) bool, keep func(model.Reservation) bool) []model.Reservation {
	defer r.store.Lock(ctx)()
	reservations := []model.Reservation{}
	for _, res := range r.reservations.Rows {
		if keep(res) {
			reservations = append(reservations, res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return less(reservations[i], reservations[j]) })
	return reservations
}
