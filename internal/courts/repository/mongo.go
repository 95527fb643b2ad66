package repository

import (
	"context"
	"errors"
	"fmt"

	courtserrors "courtside/internal/courts/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCourtRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCourtRepository(cfg *config.Config) CourtRepository {
	return &mongoCourtRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
	}
}

func (r *mongoCourtRepository) Create(ctx context.Context, court *model.Court) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, court); err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}
	return nil
}

func (r *mongoCourtRepository) FindByID(ctx context.Context, id string) (*model.Court, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var court model.Court
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&court)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, courtserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find court: %w", err)
	}
	return &court, nil
}

func (r *mongoCourtRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.Court, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find courts: %w", err)
	}
	defer cursor.Close(ctx)

	courts := []model.Court{}
	if err = cursor.All(ctx, &courts); err != nil {
		return nil, fmt.Errorf("failed to decode courts: %w", err)
	}
	return courts, nil
}

func (r *mongoCourtRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count courts: %w", err)
	}
	return count, nil
}

func (r *mongoCourtRepository) Update(ctx context.Context, court *model.Court) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":              court.Name,
		"opens":             court.Opens,
		"closes":            court.Closes,
		"hourly_rate_cents": court.HourlyRateCents,
		"active":            court.Active,
		"updated_at":        court.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": court.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update court: %w", err)
	}
	if result.MatchedCount == 0 {
		return courtserrors.ErrNotFound
	}
	return nil
}

func (r *mongoCourtRepository) BumpBookingVersion(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"booking_version": 1}})
	if err != nil {
		return fmt.Errorf("failed to bump court booking version: %w", err)
	}
	if result.MatchedCount == 0 {
		return courtserrors.ErrNotFound
	}
	return nil
}
