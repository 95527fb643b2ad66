package repository

import (
	"context"
	"time"

	"courtside/pkg/model"
)

const CollectionName = "Maintenance_windows"

type MaintenanceRepository interface {
	Create(ctx context.Context, window *model.MaintenanceWindow) error
	FindByID(ctx context.Context, id string) (*model.MaintenanceWindow, error)
	Delete(ctx context.Context, id string) error
	// FindOverlapping returns the court's windows intersecting [start, end),
	// ordered by start.
	FindOverlapping(ctx context.Context, courtID string, start, end time.Time) ([]model.MaintenanceWindow, error)
}
