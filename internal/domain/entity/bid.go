package entity

import (
	"errors"
	"time"
)

// Bid is one entry of the append-only tender ledger. Bids are immutable once
// accepted and are never deleted.
type Bid struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	ListingID   string    `bson:"listing_id" json:"listing_id"`
	BidderID    string    `bson:"bidder_id" json:"bidder_id"`
	Amount      float64   `bson:"amount" json:"amount"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}

func NewBid(listingID, bidderID string, amount float64, submittedAt time.Time) (*Bid, error) {
	if listingID == "" {
		return nil, errors.New("listing ID cannot be empty")
	}
	if bidderID == "" {
		return nil, errors.New("bidder ID cannot be empty")
	}
	if amount <= 0 {
		return nil, errors.New("bid amount must be positive")
	}
	return &Bid{
		ListingID:   listingID,
		BidderID:    bidderID,
		Amount:      amount,
		SubmittedAt: submittedAt.UTC(),
	}, nil
}
