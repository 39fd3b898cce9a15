package entity

import "time"

// NATS subjects for tender lifecycle events.
const (
	SubjectBidAccepted      = "tender.bid.accepted"
	SubjectListingWon       = "tender.listing.won"
	SubjectListingUnsold    = "tender.listing.unsold"
	SubjectDeadlineExtended = "tender.deadline.extended"
)

type BidAcceptedEvent struct {
	ListingID  string    `json:"listing_id"`
	BidderID   string    `json:"bidder_id"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ListingWonEvent struct {
	ListingID  string    `json:"listing_id"`
	WinnerID   string    `json:"winner_id"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ListingUnsoldEvent struct {
	ListingID  string    `json:"listing_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type DeadlineExtendedEvent struct {
	ListingID    string    `json:"listing_id"`
	NewExpiresAt time.Time `json:"new_expires_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}
