package repository

import (
	"context"
	"fmt"

	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAuditRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAuditRepository(cfg *config.Config) AuditRepository {
	return &mongoAuditRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
	}
}

func (r *mongoAuditRepository) Insert(ctx context.Context, event *model.AuditEvent) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

func (r *mongoAuditRepository) FindBySubject(ctx context.Context, subjectType model.SubjectType, subjectID string, limit int, offset int64) ([]model.AuditEvent, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, subjectFilter(subjectType, subjectID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []model.AuditEvent{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}
	return events, nil
}

func (r *mongoAuditRepository) CountBySubject(ctx context.Context, subjectType model.SubjectType, subjectID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, subjectFilter(subjectType, subjectID))
	if err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

func subjectFilter(subjectType model.SubjectType, subjectID string) bson.M {
	return bson.M{"subject_type": subjectType, "subject_id": subjectID}
}
