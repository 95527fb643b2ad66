package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentserrors "courtside/internal/payments/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoWalletRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWalletRepository(cfg *config.Config) WalletRepository {
	return &mongoWalletRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(WalletCollectionName),
	}
}

func (r *mongoWalletRepository) Find(ctx context.Context, userID string) (*model.Wallet, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var wallet model.Wallet
	if err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&wallet); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.Wallet{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}
	return &wallet, nil
}

func (r *mongoWalletRepository) Credit(ctx context.Context, userID string, amountCents int64, now time.Time) (*model.Wallet, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var wallet model.Wallet
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"balance_cents": amountCents}, "$set": bson.M{"updated_at": now}},
		opts,
	).Decode(&wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	return &wallet, nil
}

// Debit is a conditional $inc: the filter only matches while the balance
// covers the amount.
func (r *mongoWalletRepository) Debit(ctx context.Context, userID string, amountCents int64, now time.Time) (*model.Wallet, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var wallet model.Wallet
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "balance_cents": bson.M{"$gte": amountCents}},
		bson.M{"$inc": bson.M{"balance_cents": -amountCents}, "$set": bson.M{"updated_at": now}},
		opts,
	).Decode(&wallet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	return &wallet, nil
}
