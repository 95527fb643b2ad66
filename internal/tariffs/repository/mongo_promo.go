package repository

import (
	"context"
	"errors"
	"fmt"

	tariffserrors "courtside/internal/tariffs/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPromoRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPromoRepository(cfg *config.Config) PromoRepository {
	return &mongoPromoRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(PromoCollectionName),
	}
}

func (r *mongoPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, promo); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tariffserrors.ErrDuplicatePromo
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

func (r *mongoPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promo model.PromoCode
	if err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&promo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tariffserrors.ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}
	return &promo, nil
}

func (r *mongoPromoRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.PromoCode, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find promo codes: %w", err)
	}
	defer cursor.Close(ctx)

	promos := []model.PromoCode{}
	if err = cursor.All(ctx, &promos); err != nil {
		return nil, fmt.Errorf("failed to decode promo codes: %w", err)
	}
	return promos, nil
}

func (r *mongoPromoRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count promo codes: %w", err)
	}
	return count, nil
}

func (r *mongoPromoRepository) SetActive(ctx context.Context, code string, active bool) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	if result.MatchedCount == 0 {
		return tariffserrors.ErrPromoNotFound
	}
	return nil
}
