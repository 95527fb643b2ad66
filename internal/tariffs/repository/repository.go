package repository

import (
	"context"
	"time"

	"courtside/pkg/model"
)

const (
	TariffCollectionName     = "Tariffs"
	EnrollmentCollectionName = "Tariff_enrollments"
	PromoCollectionName      = "Promo_codes"
)

type TariffRepository interface {
	Create(ctx context.Context, tariff *model.Tariff) error
	FindByID(ctx context.Context, id string) (*model.Tariff, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]model.Tariff, error)
	Count(ctx context.Context) (int64, error)
	FindActive(ctx context.Context) ([]model.Tariff, error)
	// FindLapsedIDs returns ids of tariffs whose validity ended at or before now.
	FindLapsedIDs(ctx context.Context, now time.Time) ([]string, error)
	Update(ctx context.Context, tariff *model.Tariff) error
}

type EnrollmentRepository interface {
	// Create fails with ErrDuplicateEnrollment when the pair already has a
	// blocking enrollment.
	Create(ctx context.Context, enrollment *model.TariffEnrollment) error
	FindByID(ctx context.Context, id string) (*model.TariffEnrollment, error)
	FindByUser(ctx context.Context, userID string) ([]model.TariffEnrollment, error)
	FindByStatus(ctx context.Context, status model.EnrollmentStatus, limit int, offset int64) ([]model.TariffEnrollment, error)
	CountByStatus(ctx context.Context, status model.EnrollmentStatus) (int64, error)
	// UpdateStatus replaces the enrollment if its stored status still equals
	// expected, otherwise ErrStatusChanged.
	UpdateStatus(ctx context.Context, enrollment *model.TariffEnrollment, expected model.EnrollmentStatus) error
	// FindDueForExpiry returns PENDING or APPROVED enrollments that expired by
	// now or belong to one of lapsedTariffIDs.
	FindDueForExpiry(ctx context.Context, now time.Time, lapsedTariffIDs []string, limit int) ([]model.TariffEnrollment, error)
}

type PromoRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]model.PromoCode, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, code string, active bool) error
}
