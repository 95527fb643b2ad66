package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationerrors "courtside/internal/reservations/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
	}
}

var releasedStatuses = bson.A{model.ReservationCancelled, model.ReservationNoShow}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &reservation, nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, reservation *model.Reservation, expectedVersion int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": reservation.ID, "version": expectedVersion}, reservation)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": reservation.ID})
		if err != nil {
			return fmt.Errorf("failed to check reservation: %w", err)
		}
		if count == 0 {
			return reservationerrors.ErrNotFound
		}
		return reservationerrors.ErrVersionConflict
	}
	return nil
}

func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, courtID string, start, end time.Time) ([]model.Reservation, error) {
	filter := bson.M{
		"court_id": courtID,
		"status":   bson.M{"$nin": releasedStatuses},
		"start":    bson.M{"$lt": end},
		"end":      bson.M{"$gt": start},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
}

func (r *mongoReservationRepository) FindByCourtRange(ctx context.Context, courtID string, from, to time.Time) ([]model.Reservation, error) {
	filter := bson.M{
		"court_id": courtID,
		"start":    bson.M{"$lt": to},
		"end":      bson.M{"$gt": from},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
}

func (r *mongoReservationRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]model.Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoReservationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) FindNoShowCandidates(ctx context.Context, endedBy time.Time, limit int) ([]model.Reservation, error) {
	filter := bson.M{
		"status": model.ReservationPaid,
		"end":    bson.M{"$lte": endedBy},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "end", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []model.Reservation{}
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}
