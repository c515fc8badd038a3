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

	orgerrors "bookline/internal/organizations/errors"
	"bookline/pkg/config"
	mongotx "bookline/pkg/db/mongo"
	"bookline/pkg/model"
)

const (
	CollectionName       = "Organizations"
	AdminsCollectionName = "OrganizationAdmins"
)

// Collections owned by other repositories, referenced here only for the
// cascade delete of a tenant.
const (
	servicesCollection      = "Services"
	rulesCollection         = "AvailabilityRules"
	blackoutsCollection     = "BlackoutDates"
	bookingsCollection      = "Bookings"
	subscriptionsCollection = "Subscriptions"
	remindersCollection     = "ScheduledReminders"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	FindByID(ctx context.Context, id string) (*model.Organization, error)
	FindByCalendarToken(ctx context.Context, token string) (*model.Organization, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, error)
	Update(ctx context.Context, id string, updates *model.OrganizationUpdate) error
	DeleteCascade(ctx context.Context, id string) error
	AddAdmin(ctx context.Context, admin *model.OrganizationAdmin) error
	IsAdmin(ctx context.Context, organizationID string, userID int64) (bool, error)
	FindAdmins(ctx context.Context, organizationID string) ([]*model.OrganizationAdmin, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoOrganizationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	admins     *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoOrganizationRepository(cfg *config.Config) OrganizationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOrganizationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		admins:     db.Collection(AdminsCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoOrganizationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoOrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	org.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, org)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return orgerrors.ErrTokenTaken
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		org.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOrganizationRepository) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", orgerrors.ErrInvalidID, id)
	}

	var org model.Organization
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orgerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	return &org, nil
}

func (r *mongoOrganizationRepository) FindByCalendarToken(ctx context.Context, token string) (*model.Organization, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var org model.Organization
	err := r.collection.FindOne(ctx, bson.M{"calendar_token": token}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orgerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization by token: %w", err)
	}

	return &org, nil
}

func (r *mongoOrganizationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find organizations: %w", err)
	}
	defer cursor.Close(ctx)

	var orgs []*model.Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}

	return orgs, nil
}

func (r *mongoOrganizationRepository) Update(ctx context.Context, id string, updates *model.OrganizationUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", orgerrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if updates.Name != "" {
		set["name"] = updates.Name
	}
	if updates.Timezone != "" {
		set["timezone"] = updates.Timezone
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if result.MatchedCount == 0 {
		return orgerrors.ErrNotFound
	}

	return nil
}

// DeleteCascade removes the organization and everything it owns in one
// transaction. Reminders hang off bookings, so booking IDs are collected
// first.
func (r *mongoOrganizationRepository) DeleteCascade(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", orgerrors.ErrInvalidID, id)
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		cursor, err := r.db.Collection(bookingsCollection).Find(sessCtx,
			bson.M{"organization_id": id},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return fmt.Errorf("failed to list bookings for cascade: %w", err)
		}
		var bookingDocs []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(sessCtx, &bookingDocs); err != nil {
			return fmt.Errorf("failed to decode bookings for cascade: %w", err)
		}

		if len(bookingDocs) > 0 {
			bookingIDs := make([]string, 0, len(bookingDocs))
			for _, d := range bookingDocs {
				bookingIDs = append(bookingIDs, d.ID.Hex())
			}
			if _, err := r.db.Collection(remindersCollection).DeleteMany(sessCtx,
				bson.M{"booking_id": bson.M{"$in": bookingIDs}}); err != nil {
				return fmt.Errorf("failed to delete reminders: %w", err)
			}
		}

		for _, coll := range []string{
			bookingsCollection,
			servicesCollection,
			rulesCollection,
			blackoutsCollection,
			subscriptionsCollection,
		} {
			if _, err := r.db.Collection(coll).DeleteMany(sessCtx, bson.M{"organization_id": id}); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", coll, err)
			}
		}

		if _, err := r.admins.DeleteMany(sessCtx, bson.M{"organization_id": id}); err != nil {
			return fmt.Errorf("failed to delete organization admins: %w", err)
		}

		result, err := r.collection.DeleteOne(sessCtx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to delete organization: %w", err)
		}
		if result.DeletedCount == 0 {
			return orgerrors.ErrNotFound
		}
		return nil
	})
}

func (r *mongoOrganizationRepository) AddAdmin(ctx context.Context, admin *model.OrganizationAdmin) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.admins.InsertOne(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to add organization admin: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		admin.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOrganizationRepository) IsAdmin(ctx context.Context, organizationID string, userID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.admins.CountDocuments(ctx, bson.M{
		"organization_id": organizationID,
		"user_id":         userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check organization admin: %w", err)
	}
	return count > 0, nil
}

func (r *mongoOrganizationRepository) FindAdmins(ctx context.Context, organizationID string) ([]*model.OrganizationAdmin, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.admins.Find(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		return nil, fmt.Errorf("failed to find organization admins: %w", err)
	}
	defer cursor.Close(ctx)

	var admins []*model.OrganizationAdmin
	if err = cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode organization admins: %w", err)
	}

	return admins, nil
}

func (r *mongoOrganizationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
