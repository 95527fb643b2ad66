package repository

import (
	"context"
	"slices"
	"sort"
	"time"

	tariffserrors "courtside/internal/tariffs/errors"
	"courtside/pkg/db/memory"
	"courtside/pkg/model"
)

type memoryTariffRepository struct {
	store   *memory.Store
	tariffs *memory.Table[model.Tariff]
}

func NewMemoryTariffRepository(store *memory.Store) TariffRepository {
	return &memoryTariffRepository{
		store:   store,
		tariffs: memory.NewTable[model.Tariff](store),
	}
}

func (r *memoryTariffRepository) Create(ctx context.Context, tariff *model.Tariff) error {
	defer r.store.Lock(ctx)()
	r.tariffs.Rows[tariff.ID] = *tariff
	return nil
}

func (r *memoryTariffRepository) FindByID(ctx context.Context, id string) (*model.Tariff, error) {
	defer r.store.Lock(ctx)()
	tariff, ok := r.tariffs.Rows[id]
	if !ok {
		return nil, tariffserrors.ErrTariffNotFound
	}
	return &tariff, nil
}

func (r *memoryTariffRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.Tariff, error) {
	tariffs := r.filter(ctx, func(model.Tariff) bool { return true })
	slices.Reverse(tariffs)
	return memory.Page(tariffs, limit, offset), nil
}

func (r *memoryTariffRepository) Count(ctx context.Context) (int64, error) {
	defer r.store.Lock(ctx)()
	return int64(len(r.tariffs.Rows)), nil
}

func (r *memoryTariffRepository) FindActive(ctx context.Context) ([]model.Tariff, error) {
	return r.filter(ctx, func(t model.Tariff) bool { return t.Active }), nil
}

func (r *memoryTariffRepository) FindLapsedIDs(ctx context.Context, now time.Time) ([]string, error) {
	ids := []string{}
	for _, t := range r.filter(ctx, func(t model.Tariff) bool { return t.ValidUntil != nil && !t.ValidUntil.After(now) }) {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (r *memoryTariffRepository) Update(ctx context.Context, tariff *model.Tariff) error {
	defer r.store.Lock(ctx)()
	if _, ok := r.tariffs.Rows[tariff.ID]; !ok {
		return tariffserrors.ErrTariffNotFound
	}
	r.tariffs.Rows[tariff.ID] = *tariff
	return nil
}

// filter returns matches ordered oldest first.
func (r *memoryTariffRepository) filter(ctx context.Context, keep func(model.Tariff) bool) []model.Tariff {
	defer r.store.Lock(ctx)()
	tariffs := []model.Tariff{}
	for _, t := range r.tariffs.Rows {
		if keep(t) {
			tariffs = append(tariffs, t)
		}
	}
	sort.Slice(tariffs, func(i, j int) bool {
		if tariffs[i].CreatedAt.Equal(tariffs[j].CreatedAt) {
			return tariffs[i].ID < tariffs[j].ID
		}
		return tariffs[i].CreatedAt.Before(tariffs[j].CreatedAt)
	})
	return tariffs
}

type memoryEnrollmentRepository struct {
	store       *memory.Store
	enrollments *memory.Table[model.TariffEnrollment]
}

func NewMemoryEnrollmentRepository(store *memory.Store) EnrollmentRepository {
	return &memoryEnrollmentRepository{
		store:       store,
		enrollments: memory.NewTable[model.TariffEnrollment](store),
	}
}

func (r *memoryEnrollmentRepository) Create(ctx context.Context, enrollment *model.TariffEnrollment) error {
	defer r.store.Lock(ctx)()
	if r.blockingKeyTaken(enrollment) {
		return tariffserrors.ErrDuplicateEnrollment
	}
	r.enrollments.Rows[enrollment.ID] = *enrollment
	return nil
}

func (r *memoryEnrollmentRepository) FindByID(ctx context.Context, id string) (*model.TariffEnrollment, error) {
	defer r.store.Lock(ctx)()
	enrollment, ok := r.enrollments.Rows[id]
	if !ok {
		return nil, tariffserrors.ErrEnrollmentNotFound
	}
	return &enrollment, nil
}

func (r *memoryEnrollmentRepository) FindByUser(ctx context.Context, userID string) ([]model.TariffEnrollment, error) {
	enrollments := r.filter(ctx, func(e model.TariffEnrollment) bool { return e.UserID == userID })
	slices.Reverse(enrollments)
	return enrollments, nil
}

func (r *memoryEnrollmentRepository) FindByStatus(ctx context.Context, status model.EnrollmentStatus, limit int, offset int64) ([]model.TariffEnrollment, error) {
	enrollments := r.filter(ctx, func(e model.TariffEnrollment) bool { return e.Status == status })
	return memory.Page(enrollments, limit, offset), nil
}

func (r *memoryEnrollmentRepository) CountByStatus(ctx context.Context, status model.EnrollmentStatus) (int64, error) {
	return int64(len(r.filter(ctx, func(e model.TariffEnrollment) bool { return e.Status == status }))), nil
}

func (r *memoryEnrollmentRepository) UpdateStatus(ctx context.Context, enrollment *model.TariffEnrollment, expected model.EnrollmentStatus) error {
	defer r.store.Lock(ctx)()
	existing, ok := r.enrollments.Rows[enrollment.ID]
	if !ok || existing.Status != expected {
		return tariffserrors.ErrStatusChanged
	}
	if r.blockingKeyTaken(enrollment) {
		return tariffserrors.ErrDuplicateEnrollment
	}
	r.enrollments.Rows[enrollment.ID] = *enrollment
	return nil
}

func (r *memoryEnrollmentRepository) FindDueForExpiry(ctx context.Context, now time.Time, lapsedTariffIDs []string, limit int) ([]model.TariffEnrollment, error) {
	enrollments := r.filter(ctx, func(e model.TariffEnrollment) bool {
		if !e.Status.Blocking() {
			return false
		}
		expired := e.ExpiresAt != nil && !e.ExpiresAt.After(now)
		return expired || slices.Contains(lapsedTariffIDs, e.TariffID)
	})
	return memory.Page(enrollments, limit, 0), nil
}

// blockingKeyTaken mirrors the unique sparse index on blocking_key.
func (r *memoryEnrollmentRepository) blockingKeyTaken(enrollment *model.TariffEnrollment) bool {
	if enrollment.BlockingKey == "" {
		return false
	}
	for id, e := range r.enrollments.Rows {
		if id != enrollment.ID && e.BlockingKey == enrollment.BlockingKey {
			return true
		}
	}
	return false
}

// filter returns matches ordered by request time.
func (r *memoryEnrollmentRepository) filter(ctx context.Context, keep func(model.TariffEnrollment) bool) []model.TariffEnrollment {
	defer r.store.Lock(ctx)()
	enrollments := []model.TariffEnrollment{}
	for _, e := range r.enrollments.Rows {
		if keep(e) {
			enrollments = append(enrollments, e)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		if enrollments[i].RequestedAt.Equal(enrollments[j].RequestedAt) {
			return enrollments[i].ID < enrollments[j].ID
		}
		return enrollments[i].RequestedAt.Before(enrollments[j].RequestedAt)
	})
	return enrollments
}

type memoryPromoRepository struct {
	store  *memory.Store
	promos *memory.Table[model.PromoCode]
}

func NewMemoryPromoRepository(store *memory.Store) PromoRepository {
	return &memoryPromoRepository{
		store:  store,
		promos: memory.NewTable[model.PromoCode](store),
	}
}

func (r *memoryPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	defer r.store.Lock(ctx)()
	if _, ok := r.promos.Rows[promo.Code]; ok {
		return tariffserrors.ErrDuplicatePromo
	}
	r.promos.Rows[promo.Code] = *promo
	return nil
}

func (r *memoryPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	defer r.store.Lock(ctx)()
	promo, ok := r.promos.Rows[code]
	if !ok {
		return nil, tariffserrors.ErrPromoNotFound
	}
	return &promo, nil
}

func (r *memoryPromoRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.PromoCode, error) {
	defer r.store.Lock(ctx)()
	promos := make([]model.PromoCode, 0, len(r.promos.Rows))
	for _, p := range r.promos.Rows {
		promos = append(promos, p)
	}
	sort.Slice(promos, func(i, j int) bool { return promos[i].Code < promos[j].Code })
	return memory.Page(promos, limit, offset), nil
}

func (r *memoryPromoRepository) Count(ctx context.Context) (int64, error) {
	defer r.store.Lock(ctx)()
	return int64(len(r.promos.Rows)), nil
}

func (r *memoryPromoRepository) SetActive(ctx context.Context, code string, active bool) error {
	defer r.store.Lock(ctx)()
	promo, ok := r.promos.Rows[code]
	if !ok {
		return tariffserrors.ErrPromoNotFound
	}
	promo.Active = active
	r.promos.Rows[code] = promo
	return nil
}
