package repository

import (
	"context"
	"sort"
	"time"

	maintenanceerrors "courtside/internal/maintenance/errors"
	"courtside/pkg/db/memory"
	"courtside/pkg/model"
)

type memoryMaintenanceRepository struct {
	store   *memory.Store
	windows *memory.Table[model.MaintenanceWindow]
}

func NewMemoryMaintenanceRepository(store *memory.Store) MaintenanceRepository {
	return &memoryMaintenanceRepository{
		store:   store,
		windows: memory.NewTable[model.MaintenanceWindow](store),
	}
}

func (r *memoryMaintenanceRepository) Create(ctx context.Context, window *model.MaintenanceWindow) error {
	defer r.store.Lock(ctx)()
	r.windows.Rows[window.ID] = *window
	return nil
}

func (r *memoryMaintenanceRepository) FindByID(ctx context.Context, id string) (*model.MaintenanceWindow, error) {
	defer r.store.Lock(ctx)()
	window, ok := r.windows.Rows[id]
	if !ok {
		return nil, maintenanceerrors.ErrNotFound
	}
	return &window, nil
}

func (r *memoryMaintenanceRepository) Delete(ctx context.Context, id string) error {
	defer r.store.Lock(ctx)()
	if _, ok := r.windows.Rows[id]; !ok {
		return maintenanceerrors.ErrNotFound
	}
	delete(r.windows.Rows, id)
	return nil
}

func (r *memoryMaintenanceRepository) FindOverlapping(ctx context.Context, courtID string, start, end time.Time) ([]model.MaintenanceWindow, error) {
	defer r.store.Lock(ctx)()
	windows := []model.MaintenanceWindow{}
	for _, w := range r.windows.Rows {
		if w.CourtID == courtID && w.Overlaps(start, end) {
			windows = append(windows, w)
		}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })
	return windows, nil
}
