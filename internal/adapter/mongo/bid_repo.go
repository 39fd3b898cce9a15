package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bidCollectionName = "bids"

type bidRepository struct {
	collection *mongo.Collection
}

func NewBidRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.BidRepository {
	return &bidRepository{
		collection: client.Database(cfg.Database).Collection(bidCollectionName),
	}
}

func (r *bidRepository) Append(ctx context.Context, bid *entity.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	_, err := r.collection.InsertOne(ctx, bid)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to append bid for listing %s: %w", bid.ListingID, err)
	}
	return nil
}

func (r *bidRepository) Latest(ctx context.Context, listingID string) (*entity.Bid, error) {
	// Accepted amounts strictly increase, so the highest amount is the most
	// recently appended entry.
	findOptions := options.FindOne().SetSort(bson.D{{Key: "amount", Value: -1}})

	var bid entity.Bid
	err := r.collection.FindOne(ctx, bson.M{"listing_id": listingID}, findOptions).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest bid for listing %s: %w", listingID, err)
	}
	return &bid, nil
}

func (r *bidRepository) History(ctx context.Context, listingID string) ([]*entity.Bid, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "submitted_at", Value: 1},
		{Key: "amount", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids for listing %s: %w", listingID, err)
	}
	defer cursor.Close(ctx)

	var bids []*entity.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("failed to decode bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}
