package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	remindererrors "bookline/internal/reminders/errors"
	"bookline/pkg/config"
	"bookline/pkg/model"
)

const CollectionName = "ScheduledReminders"

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.ScheduledReminder) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledReminder, error)
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
	DeleteUnsent(ctx context.Context) (int64, error)
}

type mongoReminderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReminderRepository(cfg *config.Config) ReminderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReminderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoReminderRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReminderRepository) Create(ctx context.Context, reminder *model.ScheduledReminder) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, reminder)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reminder.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledReminder, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"sent":      false,
		"remind_at": bson.M{"$lte": now},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "remind_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var reminders []*model.ScheduledReminder
	if err = cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}

	return reminders, nil
}

// MarkSent claims a reminder. The filter includes sent=false so overlapping
// worker passes cannot both claim the same reminder; only the writer that
// flipped the flag sees true.
func (r *mongoReminderRepository) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", remindererrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "sent": false},
		bson.M{"$set": bson.M{"sent": true, "sent_at": at}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *mongoReminderRepository) DeleteUnsent(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"sent": false})
	if err != nil {
		return 0, fmt.Errorf("failed to delete unsent reminders: %w", err)
	}

	return result.DeletedCount, nil
}
