package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	suberrors "bookline/internal/subscriptions/errors"
	"bookline/pkg/config"
	"bookline/pkg/model"
)

const CollectionName = "Subscriptions"

type SubscriptionRepository interface {
	FindByOrganization(ctx context.Context, organizationID string) (*model.Subscription, error)
	Upsert(ctx context.Context, sub *model.Subscription) error
	UpdateStatus(ctx context.Context, organizationID string, status string) error
}

type mongoSubscriptionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSubscriptionRepository(cfg *config.Config) SubscriptionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSubscriptionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSubscriptionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSubscriptionRepository) FindByOrganization(ctx context.Context, organizationID string) (*model.Subscription, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var sub model.Subscription
	err := r.collection.FindOne(ctx, bson.M{"organization_id": organizationID}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, suberrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return &sub, nil
}

// Upsert writes the single subscription record of an organization. The
// unique index on organization_id keeps concurrent upserts from producing
// two records.
func (r *mongoSubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"plan":                 sub.Plan,
			"status":               sub.Status,
			"current_period_start": sub.CurrentPeriodStart,
			"current_period_end":   sub.CurrentPeriodEnd,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"organization_id": sub.OrganizationID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

func (r *mongoSubscriptionRepository) UpdateStatus(ctx context.Context, organizationID string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"organization_id": organizationID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if result.MatchedCount == 0 {
		return suberrors.ErrNotFound
	}

	return nil
}
