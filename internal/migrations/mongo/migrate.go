package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	auditrepo "courtside/internal/audit/repository"
	courtsrepo "courtside/internal/courts/repository"
	maintenancerepo "courtside/internal/maintenance/repository"
	"courtside/internal/migrations/mongo/validators"
	paymentsrepo "courtside/internal/payments/repository"
	reservationsrepo "courtside/internal/reservations/repository"
	tariffsrepo "courtside/internal/tariffs/repository"
	"courtside/pkg/logger"
)

var (
	CourtsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	MaintenanceIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "court_id", Value: 1},
			{Key: "start", Value: 1},
			{Key: "end", Value: 1},
		}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "court_id", Value: 1},
			{Key: "start", Value: 1},
			{Key: "end", Value: 1},
		}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end", Value: 1}}},
	}

	TariffsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "valid_until", Value: 1}}},
	}

	// blocking_key is only set on PENDING and APPROVED enrollments.
	EnrollmentsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "blocking_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("one_blocking_enrollment"),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "requested_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "requested_at", Value: 1}}},
		{Keys: bson.D{{Key: "tariff_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	PromoIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
	}

	// charge_slot is only set on PENDING and SUCCEEDED charges.
	LedgerIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "charge_slot", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"charge_slot": bson.M{"$exists": true}}).
				SetName("one_active_charge"),
		},
		{Keys: bson.D{{Key: "reservation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "direction", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	AuditIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "subject_type", Value: 1},
			{Key: "subject_id", Value: 1},
			{Key: "created_at", Value: 1},
		}},
	}
)

type collection struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	collections := map[string]collection{
		courtsrepo.CollectionName:            {Indexes: CourtsIndexes, Validator: validators.CourtValidator},
		maintenancerepo.CollectionName:       {Indexes: MaintenanceIndexes, Validator: validators.MaintenanceValidator},
		reservationsrepo.CollectionName:      {Indexes: ReservationsIndexes, Validator: validators.ReservationValidator},
		tariffsrepo.TariffCollectionName:     {Indexes: TariffsIndexes, Validator: validators.TariffValidator},
		tariffsrepo.EnrollmentCollectionName: {Indexes: EnrollmentsIndexes, Validator: validators.EnrollmentValidator},
		tariffsrepo.PromoCollectionName:      {Indexes: PromoIndexes, Validator: validators.PromoValidator},
		paymentsrepo.LedgerCollectionName:    {Indexes: LedgerIndexes, Validator: validators.LedgerValidator},
		paymentsrepo.WalletCollectionName:    {Validator: validators.WalletValidator},
		paymentsrepo.GuardCollectionName:     {},
		auditrepo.CollectionName:             {Indexes: AuditIndexes, Validator: validators.AuditValidator},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
