package repository

import (
	"context"
	"time"

	"courtside/pkg/model"
)

const CollectionName = "Reservations"

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	// Update replaces the reservation if its stored version still equals
	// expectedVersion. The caller sets the new Version on reservation.
	Update(ctx context.Context, reservation *model.Reservation, expectedVersion int64) error
	// FindOverlapping returns reservations on the court that hold their slot
	// and intersect [start, end).
	FindOverlapping(ctx context.Context, courtID string, start, end time.Time) ([]model.Reservation, error)
	FindByCourtRange(ctx context.Context, courtID string, from, to time.Time) ([]model.Reservation, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]model.Reservation, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// FindNoShowCandidates returns PAID reservations that ended at or before
	// endedBy.
	FindNoShowCandidates(ctx context.Context, endedBy time.Time, limit int) ([]model.Reservation, error)
}
