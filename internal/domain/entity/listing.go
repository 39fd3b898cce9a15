package entity

import (
	"errors"
	"fmt"
	"time"
)

type ListingStatus string

const (
	StatusDraft     ListingStatus = "DRAFT"
	StatusActive    ListingStatus = "ACTIVE"
	StatusWon       ListingStatus = "WON"
	StatusUnsold    ListingStatus = "UNSOLD"
	StatusCancelled ListingStatus = "CANCELLED"
)

var ErrInvalidTransition = errors.New("invalid listing status transition")

// HighestBid is the denormalized cache of the current leading bid. It is
// written only by the tender service after a ledger append succeeds.
type HighestBid struct {
	BidderID string  `bson:"bidder_id" json:"bidder_id"`
	Amount   float64 `bson:"amount" json:"amount"`
}

type Listing struct {
	ID                  string        `bson:"_id,omitempty" json:"id"`
	SellerID            string        `bson:"seller_id" json:"seller_id"`
	Title               string        `bson:"title" json:"title"`
	StartingPrice       float64       `bson:"starting_price" json:"starting_price"`
	Status              ListingStatus `bson:"status" json:"status"`
	ExpiresAt           *time.Time    `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	PartnerVisibleUntil *time.Time    `bson:"partner_visible_until,omitempty" json:"partner_visible_until,omitempty"`
	HighestBid          *HighestBid   `bson:"highest_bid,omitempty" json:"highest_bid,omitempty"`
	CreatedAt           time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `bson:"updated_at" json:"updated_at"`
	Version             int           `bson:"version" json:"version"`
}

func NewListing(sellerID, title string, startingPrice float64, status ListingStatus, timeLimit, partnerWindow time.Duration, now time.Time) (*Listing, error) {
	if sellerID == "" {
		return nil, errors.New("seller ID cannot be empty")
	}
	if title == "" {
		return nil, errors.New("title cannot be empty")
	}
	if startingPrice < 0 {
		return nil, errors.New("starting price cannot be negative")
	}
	if status != StatusDraft && status != StatusActive {
		return nil, fmt.Errorf("listing cannot be created with status %s", status)
	}
	if timeLimit < 0 {
		return nil, errors.New("time limit must be positive")
	}
	if partnerWindow < 0 {
		return nil, errors.New("partner window must be positive")
	}

	now = now.UTC()
	listing := &Listing{
		SellerID:      sellerID,
		Title:         title,
		StartingPrice: startingPrice,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	if timeLimit > 0 {
		expiresAt := now.Add(timeLimit)
		listing.ExpiresAt = &expiresAt
	}
	if partnerWindow > 0 {
		visibleUntil := now.Add(partnerWindow)
		listing.PartnerVisibleUntil = &visibleUntil
	}
	return listing, nil
}

// Expired reports whether the bidding deadline has passed. A listing without
// a deadline never expires.
func (l *Listing) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// InPartnerWindow reports whether the listing is still restricted to the
// seller's partners.
func (l *Listing) InPartnerWindow(now time.Time) bool {
	return l.PartnerVisibleUntil != nil && now.Before(*l.PartnerVisibleUntil)
}

// AcceptsBid applies the price floor: the first bid may match the starting
// price, every later bid must strictly exceed the current highest bid.
func (l *Listing) AcceptsBid(amount float64) bool {
	if l.HighestBid != nil {
		return amount > l.HighestBid.Amount
	}
	return amount >= l.StartingPrice
}

func (l *Listing) IsTerminal() bool {
	switch l.Status {
	case StatusWon, StatusUnsold, StatusCancelled:
		return true
	default:
		return false
	}
}

func (l *Listing) UpdateStatus(newStatus ListingStatus) error {
	if l.Status == newStatus {
		return nil
	}
	validTransitions := map[ListingStatus][]ListingStatus{
		StatusDraft:     {StatusActive, StatusCancelled},
		StatusActive:    {StatusWon, StatusUnsold, StatusCancelled},
		StatusWon:       {},
		StatusUnsold:    {},
		StatusCancelled: {},
	}
	allowed, ok := validTransitions[l.Status]
	if !ok {
		return fmt.Errorf("%w: unknown status %s", ErrInvalidTransition, l.Status)
	}
	for _, s := range allowed {
		if s == newStatus {
			l.Status = newStatus
			l.UpdatedAt = time.Now().UTC()
			l.Version++
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, newStatus)
}
