// Package mongo provisions collections, schema validators and indexes.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookline/internal/migrations/mongo/validators"
	"bookline/pkg/logger"
	"bookline/pkg/model"
)

var (
	OrganizationsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "calendar_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	OrganizationAdminsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "is_active", Value: 1},
		}},
	}

	AvailabilityRulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "weekday", Value: 1},
		}},
	}

	BlackoutDatesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// The partial unique index is the single authority on double booking:
	// only PENDING and CONFIRMED documents participate, so a canceled
	// booking frees its slot for reuse. Requires MongoDB 6.0+ for $in in
	// partialFilterExpression.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": model.ActiveBookingStatuses()},
				}),
		},
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_user_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	SubscriptionsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ScheduledRemindersIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "sent", Value: 1},
			{Key: "remind_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running MongoDB migrations", "database", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Organizations": {
			Indexes:   OrganizationsIndexes,
			Validator: validators.OrganizationValidator,
		},
		"OrganizationAdmins": {
			Indexes:   OrganizationAdminsIndexes,
			Validator: validators.OrganizationAdminValidator,
		},
		"Services": {
			Indexes:   ServicesIndexes,
			Validator: validators.ServiceValidator,
		},
		"AvailabilityRules": {
			Indexes:   AvailabilityRulesIndexes,
			Validator: validators.AvailabilityRuleValidator,
		},
		"BlackoutDates": {
			Indexes:   BlackoutDatesIndexes,
			Validator: validators.BlackoutDateValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Subscriptions": {
			Indexes:   SubscriptionsIndexes,
			Validator: validators.SubscriptionValidator,
		},
		"ScheduledReminders": {
			Indexes:   ScheduledRemindersIndexes,
			Validator: validators.ScheduledReminderValidator,
		},
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
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating collection validator", "collection", name, "error", err)
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
