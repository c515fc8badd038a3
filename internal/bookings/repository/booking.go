package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingerrors "bookline/internal/bookings/errors"
	"bookline/pkg/config"
	"bookline/pkg/model"
)

const CollectionName = "Bookings"

// StatusCounts is the per-status breakdown returned by Stats.
type StatusCounts map[string]int64

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error)
	FindPendingByOrganization(ctx context.Context, organizationID string) ([]*model.Booking, error)
	FindActiveFrom(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error)
	FindUpcomingByClient(ctx context.Context, organizationID string, clientUserID int64, from time.Time) ([]*model.Booking, error)
	FindConfirmedFrom(ctx context.Context, from time.Time) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, fromStatus, toStatus string) (bool, error)
	CancelActive(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context, organizationID string, since time.Time) (StatusCounts, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create inserts an active booking. The partial unique index on
// (organization_id, start_time) over PENDING and CONFIRMED documents is the
// authority on double booking, so a duplicate key error surfaces as
// ErrSlotTaken regardless of how many writers raced.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindActiveInRange returns PENDING and CONFIRMED bookings overlapping the
// half-open window [from, to).
func (r *mongoBookingRepository) FindActiveInRange(ctx context.Context, organizationID string, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": organizationID,
		"status":          bson.M{"$in": model.ActiveBookingStatuses()},
		"start_time":      bson.M{"$lt": to},
		"end_time":        bson.M{"$gt": from},
	}

	return r.findSortedByStart(ctx, filter)
}

func (r *mongoBookingRepository) FindPendingByOrganization(ctx context.Context, organizationID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": organizationID,
		"status":          model.BookingPending,
	}

	return r.findSortedByStart(ctx, filter)
}

func (r *mongoBookingRepository) FindActiveFrom(ctx context.Context, organizationID string, from time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": organizationID,
		"status":          bson.M{"$in": model.ActiveBookingStatuses()},
		"start_time":      bson.M{"$gte": from},
	}

	return r.findSortedByStart(ctx, filter)
}

func (r *mongoBookingRepository) FindUpcomingByClient(ctx context.Context, organizationID string, clientUserID int64, from time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": organizationID,
		"client_user_id":  clientUserID,
		"status":          bson.M{"$in": model.ActiveBookingStatuses()},
		"start_time":      bson.M{"$gte": from},
	}

	return r.findSortedByStart(ctx, filter)
}

// FindConfirmedFrom returns CONFIRMED bookings across all organizations
// starting at or after the given instant. The reminder rebuild pass uses it.
func (r *mongoBookingRepository) FindConfirmedFrom(ctx context.Context, from time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.BookingConfirmed,
		"start_time": bson.M{"$gte": from},
	}

	return r.findSortedByStart(ctx, filter)
}

func (r *mongoBookingRepository) findSortedByStart(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus performs a compare-and-set on the status field. It reports
// false when the booking was not in fromStatus at write time, which is how
// concurrent transitions lose cleanly.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": fromStatus},
		bson.M{"$set": bson.M{"status": toStatus, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// CancelActive cancels a booking unless it is already CANCELED.
func (r *mongoBookingRepository) CancelActive(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": bson.M{"$ne": model.BookingCanceled}},
		bson.M{"$set": bson.M{"status": model.BookingCanceled, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *mongoBookingRepository) Stats(ctx context.Context, organizationID string, since time.Time) (StatusCounts, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organization_id": organizationID,
			"created_at":      bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking stats: %w", err)
	}

	counts := make(StatusCounts, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
