package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	availerrors "bookline/internal/availability/errors"
	"bookline/pkg/config"
	"bookline/pkg/model"
)

const BlackoutsCollectionName = "BlackoutDates"

type BlackoutRepository interface {
	Create(ctx context.Context, blackout *model.BlackoutDate) error
	FindInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error)
	Delete(ctx context.Context, id string) error
}

type mongoBlackoutRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlackoutRepository(cfg *config.Config) BlackoutRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlackoutRepository{
		cfg:        cfg,
		collection: db.Collection(BlackoutsCollectionName),
	}
}

func (r *mongoBlackoutRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBlackoutRepository) Create(ctx context.Context, blackout *model.BlackoutDate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, blackout)
	if err != nil {
		return fmt.Errorf("failed to create blackout date: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		blackout.ID = oid.Hex()
	}
	return nil
}

// FindInRange returns blackouts that intersect the half-open window [from, to).
func (r *mongoBlackoutRepository) FindInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.BlackoutDate, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": organizationID,
		"start_time":      bson.M{"$lt": to},
		"end_time":        bson.M{"$gt": from},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blackout dates: %w", err)
	}
	defer cursor.Close(ctx)

	var blackouts []*model.BlackoutDate
	if err = cursor.All(ctx, &blackouts); err != nil {
		return nil, fmt.Errorf("failed to decode blackout dates: %w", err)
	}

	return blackouts, nil
}

func (r *mongoBlackoutRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete blackout date: %w", err)
	}
	if result.DeletedCount == 0 {
		return availerrors.ErrBlackoutNotFound
	}

	return nil
}
