package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	maintenanceerrors "courtside/internal/maintenance/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMaintenanceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMaintenanceRepository(cfg *config.Config) MaintenanceRepository {
	return &mongoMaintenanceRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
	}
}

func (r *mongoMaintenanceRepository) Create(ctx context.Context, window *model.MaintenanceWindow) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, window); err != nil {
		return fmt.Errorf("failed to create maintenance window: %w", err)
	}
	return nil
}

func (r *mongoMaintenanceRepository) FindByID(ctx context.Context, id string) (*model.MaintenanceWindow, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var window model.MaintenanceWindow
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&window); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, maintenanceerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find maintenance window: %w", err)
	}
	return &window, nil
}

func (r *mongoMaintenanceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete maintenance window: %w", err)
	}
	if result.DeletedCount == 0 {
		return maintenanceerrors.ErrNotFound
	}
	return nil
}

func (r *mongoMaintenanceRepository) FindOverlapping(ctx context.Context, courtID string, start, end time.Time) ([]model.MaintenanceWindow, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"court_id": courtID,
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find maintenance windows: %w", err)
	}
	defer cursor.Close(ctx)

	windows := []model.MaintenanceWindow{}
	if err = cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance windows: %w", err)
	}
	return windows, nil
}
