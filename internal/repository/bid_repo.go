package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/domain/entity"
)

// BidRepository is the append-only bid ledger. Append is the sole writer;
// entries are never updated or deleted.
type BidRepository interface {
	Append(ctx context.Context, bid *entity.Bid) error
	Latest(ctx context.Context, listingID string) (*entity.Bid, error)
	History(ctx context.Context, listingID string) ([]*entity.Bid, error)
}
