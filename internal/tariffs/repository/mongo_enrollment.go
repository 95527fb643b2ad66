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

type mongoEnrollmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEnrollmentRepository(cfg *config.Config) EnrollmentRepository {
	return &mongoEnrollmentRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(EnrollmentCollectionName),
	}
}

var blockingStatuses = bson.A{model.EnrollmentPending, model.EnrollmentApproved}

// Create relies on the unique sparse index on blocking_key.
func (r *mongoEnrollmentRepository) Create(ctx context.Context, enrollment *model.TariffEnrollment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, enrollment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tariffserrors.ErrDuplicateEnrollment
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *mongoEnrollmentRepository) FindByID(ctx context.Context, id string) (*model.TariffEnrollment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var enrollment model.TariffEnrollment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&enrollment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tariffserrors.ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}
	return &enrollment, nil
}

func (r *mongoEnrollmentRepository) FindByUser(ctx context.Context, userID string) ([]model.TariffEnrollment, error) {
	return r.find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}}))
}

func (r *mongoEnrollmentRepository) FindByStatus(ctx context.Context, status model.EnrollmentStatus, limit int, offset int64) ([]model.TariffEnrollment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return r.find(ctx, bson.M{"status": status}, opts)
}

func (r *mongoEnrollmentRepository) CountByStatus(ctx context.Context, status model.EnrollmentStatus) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

func (r *mongoEnrollmentRepository) UpdateStatus(ctx context.Context, enrollment *model.TariffEnrollment, expected model.EnrollmentStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": enrollment.ID, "status": expected}, enrollment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tariffserrors.ErrDuplicateEnrollment
		}
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	if result.MatchedCount == 0 {
		return tariffserrors.ErrStatusChanged
	}
	return nil
}

func (r *mongoEnrollmentRepository) FindDueForExpiry(ctx context.Context, now time.Time, lapsedTariffIDs []string, limit int) ([]model.TariffEnrollment, error) {
	due := bson.A{bson.M{"expires_at": bson.M{"$lte": now}}}
	if len(lapsedTariffIDs) > 0 {
		due = append(due, bson.M{"tariff_id": bson.M{"$in": lapsedTariffIDs}})
	}
	filter := bson.M{
		"status": bson.M{"$in": blockingStatuses},
		"$or":    due,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *mongoEnrollmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.TariffEnrollment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	enrollments := []model.TariffEnrollment{}
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}
	return enrollments, nil
}
