package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	tariffserrors "courtside/internal/tariffs/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTariffRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTariffRepository(cfg *config.Config) TariffRepository {
	return &mongoTariffRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(TariffCollectionName),
	}
}

func (r *mongoTariffRepository) Create(ctx context.Context, tariff *model.Tariff) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, tariff); err != nil {
		return fmt.Errorf("failed to create tariff: %w", err)
	}
	return nil
}

func (r *mongoTariffRepository) FindByID(ctx context.Context, id string) (*model.Tariff, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var tariff model.Tariff
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tariff); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tariffserrors.ErrTariffNotFound
		}
		return nil, fmt.Errorf("failed to find tariff: %w", err)
	}
	return &tariff, nil
}

func (r *mongoTariffRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.Tariff, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoTariffRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tariffs: %w", err)
	}
	return count, nil
}

func (r *mongoTariffRepository) FindActive(ctx context.Context) ([]model.Tariff, error) {
	return r.find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *mongoTariffRepository) FindLapsedIDs(ctx context.Context, now time.Time) ([]string, error) {
	tariffs, err := r.find(ctx, bson.M{"valid_until": bson.M{"$lte": now}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tariffs))
	for _, t := range tariffs {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (r *mongoTariffRepository) Update(ctx context.Context, tariff *model.Tariff) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tariff.ID}, tariff)
	if err != nil {
		return fmt.Errorf("failed to update tariff: %w", err)
	}
	if result.MatchedCount == 0 {
		return tariffserrors.ErrTariffNotFound
	}
	return nil
}

func (r *mongoTariffRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Tariff, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find tariffs: %w", err)
	}
	defer cursor.Close(ctx)

	tariffs := []model.Tariff{}
	if err = cursor.All(ctx, &tariffs); err != nil {
		return nil, fmt.Errorf("failed to decode tariffs: %w", err)
	}
	return tariffs, nil
}
