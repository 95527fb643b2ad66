package repository

import (
	"context"

	"courtside/pkg/model"
)

const CollectionName = "Courts"

type CourtRepository interface {
	Create(ctx context.Context, court *model.Court) error
	FindByID(ctx context.Context, id string) (*model.Court, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]model.Court, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, court *model.Court) error
	// BumpBookingVersion writes the court's guard field. Every transaction that
	// claims or releases a slot on the court calls it first, so two such
	// transactions on one court can never commit concurrently.
	BumpBookingVersion(ctx context.Context, id string) error
}
