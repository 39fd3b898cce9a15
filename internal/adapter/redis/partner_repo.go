package redis

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

// The profile service maintains one set per seller under this prefix; the
// tender service only reads membership.
const partnerKeyPrefix = "partners:"

type partnerRepository struct {
	client *redis.Client
}

func NewPartnerRepository(client *redis.Client) repository.PartnerRepository {
	return &partnerRepository{client: client}
}

func (r *partnerRepository) IsPartner(ctx context.Context, sellerID, viewerID string) (bool, error) {
	if sellerID == "" || viewerID == "" {
		return false, nil
	}

	ok, err := r.client.SIsMember(ctx, partnerKeyPrefix+sellerID, viewerID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check partner relationship for seller %s: %w", sellerID, err)
	}
	return ok, nil
}
