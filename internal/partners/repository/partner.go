package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	partnerserrors "rentora/internal/partners/errors"
	"rentora/pkg/config"
	"rentora/pkg/model"
)

const (
	CollectionName = "Partners"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *model.Partner) error
	FindByID(ctx context.Context, id string) (*model.Partner, error)
	UpdateLocation(ctx context.Context, id string, location model.GeoPoint, at time.Time) error
}

type mongoPartnerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPartnerRepository(cfg *config.Config) PartnerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPartnerRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPartnerRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPartnerRepository) Create(ctx context.Context, partner *model.Partner) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	partner.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, partner)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		partner.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPartnerRepository) FindByID(ctx context.Context, id string) (*model.Partner, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", partnerserrors.ErrInvalidID, id)
	}

	var partner model.Partner
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&partner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, partnerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find partner: %w", err)
	}

	return &partner, nil
}

// UpdateLocation is an unconditional single-document overwrite: GPS pings are
// last-writer-wins, so stale pings are discarded implicitly by ordering and
// no lock is needed.
func (r *mongoPartnerRepository) UpdateLocation(ctx context.Context, id string, location model.GeoPoint, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", partnerserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"location":    location,
			"last_gps_at": at,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update partner location: %w", err)
	}

	if result.MatchedCount == 0 {
		return partnerserrors.ErrNotFound
	}

	return nil
}
