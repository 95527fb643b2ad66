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

type mongoLedgerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	guards     *mongo.Collection
}

func NewMongoLedgerRepository(cfg *config.Config) LedgerRepository {
	return &mongoLedgerRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(LedgerCollectionName),
		guards:     cfg.Database().Collection(GuardCollectionName),
	}
}

// Insert relies on the unique partial index on charge_slot.
func (r *mongoLedgerRepository) Insert(ctx context.Context, entry *model.LedgerEntry) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paymentserrors.ErrChargeExists
		}
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (r *mongoLedgerRepository) FindByID(ctx context.Context, id string) (*model.LedgerEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var entry model.LedgerEntry
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find ledger entry: %w", err)
	}
	return &entry, nil
}

func (r *mongoLedgerRepository) FindByReservation(ctx context.Context, reservationID string) ([]model.LedgerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"reservation_id": reservationID}, opts)
}

func (r *mongoLedgerRepository) Finalize(ctx context.Context, id string, f model.Finalization) (*model.LedgerEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{
		"status":       f.Status,
		"finalized_at": f.At,
	}
	if f.ExternalReference != "" {
		set["external_reference"] = f.ExternalReference
	}
	update := bson.M{"$set": set}
	if f.Status == model.LedgerFailed {
		set["failure_kind"] = f.FailureKind
		set["failure_reason"] = f.FailureReason
		update["$unset"] = bson.M{"charge_slot": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var entry model.LedgerEntry
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": model.LedgerPending}, update, opts).Decode(&entry)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to finalize ledger entry: %w", err)
		}
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to check ledger entry: %w", err)
		}
		if count == 0 {
			return nil, paymentserrors.ErrEntryNotFound
		}
		return nil, paymentserrors.ErrNotPending
	}
	return &entry, nil
}

func (r *mongoLedgerRepository) FindPendingCharges(ctx context.Context, createdBefore time.Time, limit int) ([]model.LedgerEntry, error) {
	filter := bson.M{
		"direction":  model.DirectionCharge,
		"status":     model.LedgerPending,
		"created_at": bson.M{"$lt": createdBefore},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

// Guard bumps a per-reservation counter so concurrent ledger transactions on
// the same reservation write-conflict.
func (r *mongoLedgerRepository) Guard(ctx context.Context, reservationID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.guards.UpdateOne(ctx,
		bson.M{"_id": reservationID},
		bson.M{"$inc": bson.M{"version": 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to guard ledger: %w", err)
	}
	return nil
}

func (r *mongoLedgerRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.LedgerEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []model.LedgerEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return entries, nil
}
