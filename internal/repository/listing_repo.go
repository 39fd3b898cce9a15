package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/domain/entity"
)

type UpdateListingStatusParams struct {
	ListingID string
	Status    entity.ListingStatus
	Version   int
}

type RecordHighestBidParams struct {
	ListingID string
	BidderID  string
	Amount    float64
	Version   int
}

type UpdateExpiresAtParams struct {
	ListingID string
	ExpiresAt time.Time
	Version   int
}

// ListingRepository is the listing store. It holds listing records and
// performs no time-based or bidding logic; all status and highest-bid writes
// are version-checked so competing writers surface as ErrOptimisticLock.
type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, listingID string) (*entity.Listing, error)
	UpdateStatus(ctx context.Context, params UpdateListingStatusParams) error
	RecordHighestBid(ctx context.Context, params RecordHighestBidParams) error
	UpdateExpiresAt(ctx context.Context, params UpdateExpiresAtParams) error
	FindExpired(ctx context.Context, now time.Time) ([]*entity.Listing, error)
}
