package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listingCollectionName = "listings"

type listingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ListingRepository {
	return &listingRepository{
		collection: client.Database(cfg.Database).Collection(listingCollectionName),
	}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	_, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, listingID string) (*entity.Listing, error) {
	var listing entity.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing by ID %s: %w", listingID, err)
	}
	return &listing, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, params repository.UpdateListingStatusParams) error {
	update := bson.M{
		"$set": bson.M{
			"status":     params.Status,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.versionedUpdate(ctx, params.ListingID, params.Version, update)
}

func (r *listingRepository) RecordHighestBid(ctx context.Context, params repository.RecordHighestBidParams) error {
	update := bson.M{
		"$set": bson.M{
			"highest_bid": entity.HighestBid{
				BidderID: params.BidderID,
				Amount:   params.Amount,
			},
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.versionedUpdate(ctx, params.ListingID, params.Version, update)
}

func (r *listingRepository) UpdateExpiresAt(ctx context.Context, params repository.UpdateExpiresAtParams) error {
	update := bson.M{
		"$set": bson.M{
			"expires_at": params.ExpiresAt.UTC(),
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.versionedUpdate(ctx, params.ListingID, params.Version, update)
}

// versionedUpdate applies an update only when the stored version matches,
// and distinguishes a missing document from a lost optimistic-lock race.
func (r *listingRepository) versionedUpdate(ctx context.Context, listingID string, version int, update bson.M) error {
	filter := bson.M{
		"_id":     listingID,
		"version": version,
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", listingID, err)
	}

	if result.MatchedCount == 0 {
		var existing entity.Listing
		errFind := r.collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&existing)
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		if errFind == nil && existing.Version != version {
			return repository.ErrOptimisticLock
		}
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *listingRepository) FindExpired(ctx context.Context, now time.Time) ([]*entity.Listing, error) {
	filter := bson.M{
		"status":     entity.StatusActive,
		"expires_at": bson.M{"$lte": now.UTC()},
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "expires_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*entity.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode expired listings: %w", err)
	}
	return listings, nil
}
