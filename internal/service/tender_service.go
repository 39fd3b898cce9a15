package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/repository"
)

// Bid rejection reasons, used as metric labels.
const (
	rejectNotFound   = "not_found"
	rejectNotActive  = "not_active"
	rejectExpired    = "expired"
	rejectNotVisible = "not_visible"
	rejectSelfBid    = "self_bid"
	rejectStaleBid   = "stale_bid"
)

type CreateListingParams struct {
	SellerID      string
	Title         string
	StartingPrice float64
	Status        entity.ListingStatus
	TimeLimit     time.Duration
	PartnerWindow time.Duration
}

type SubmitBidParams struct {
	ListingID string
	BidderID  string
	Amount    float64
}

type ExtendDeadlineParams struct {
	ListingID    string
	SellerID     string
	NewExpiresAt time.Time
}

type TenderService interface {
	CreateListing(ctx context.Context, params CreateListingParams) (*entity.Listing, error)
	PublishListing(ctx context.Context, listingID, sellerID string) (*entity.Listing, error)
	SubmitBid(ctx context.Context, params SubmitBidParams) (*entity.Bid, error)
	ResolveExpiry(ctx context.Context, listingID string) error
	ExtendDeadline(ctx context.Context, params ExtendDeadlineParams) error
	CancelListing(ctx context.Context, listingID, sellerID string) error
	GetListing(ctx context.Context, listingID string) (*entity.Listing, error)
	BidHistory(ctx context.Context, listingID string) ([]*entity.Bid, error)
	CanView(ctx context.Context, listingID, viewerID string) (bool, error)
}

type tenderService struct {
	listings  repository.ListingRepository
	bids      repository.BidRepository
	gate      *VisibilityGate
	publisher nats.MessagePublisher
	metrics   *metrics.Manager
	clock     clock.Clock
	log       logger.Logger
	locks     *lockTable
}

func NewTenderService(
	listings repository.ListingRepository,
	bids repository.BidRepository,
	gate *VisibilityGate,
	publisher nats.MessagePublisher,
	m *metrics.Manager,
	clk clock.Clock,
	log logger.Logger,
) TenderService {
	return &tenderService{
		listings:  listings,
		bids:      bids,
		gate:      gate,
		publisher: publisher,
		metrics:   m,
		clock:     clk,
		log:       log,
		locks:     newLockTable(),
	}
}

func (s *tenderService) CreateListing(ctx context.Context, params CreateListingParams) (*entity.Listing, error) {
	listing, err := entity.NewListing(
		params.SellerID,
		params.Title,
		params.StartingPrice,
		params.Status,
		params.TimeLimit,
		params.PartnerWindow,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		s.log.Errorf("CreateListing: failed to store listing for seller %s: %v", params.SellerID, err)
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.log.Infof("Listing %s created by seller %s with status %s", listing.ID, listing.SellerID, listing.Status)
	return listing, nil
}

func (s *tenderService) PublishListing(ctx context.Context, listingID, sellerID string) (*entity.Listing, error) {
	s.locks.lock(listingID)
	defer s.locks.unlock(listingID)

	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		s.log.Warnf("PublishListing: user %s attempted to publish listing %s owned by %s", sellerID, listingID, listing.SellerID)
		return nil, ErrForbidden
	}

	currentVersion := listing.Version
	if err := listing.UpdateStatus(entity.StatusActive); err != nil {
		return nil, err
	}
	err = s.listings.UpdateStatus(ctx, repository.UpdateListingStatusParams{
		ListingID: listingID,
		Status:    entity.StatusActive,
		Version:   currentVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish listing %s: %w", listingID, err)
	}

	s.log.Infof("Listing %s published by seller %s", listingID, sellerID)
	return listing, nil
}

// SubmitBid validates a bid against the listing and the ledger inside the
// per-listing critical section, so a concurrent sweep can never observe a
// half-applied bid. A bid that discovers an expired deadline resolves the
// listing before reporting the expiry.
func (s *tenderService) SubmitBid(ctx context.Context, params SubmitBidParams) (*entity.Bid, error) {
	s.locks.lock(params.ListingID)
	defer s.locks.unlock(params.ListingID)

	listing, err := s.listings.GetByID(ctx, params.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.rejectBid(rejectNotFound)
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to load listing %s: %w", params.ListingID, err)
	}

	now := s.clock.Now()

	if listing.Status != entity.StatusActive {
		s.rejectBid(rejectNotActive)
		return nil, ErrListingNotActive
	}

	if listing.Expired(now) {
		if err := s.resolveLocked(ctx, listing, now); err != nil {
			s.log.Warnf("SubmitBid: failed to resolve expired listing %s: %v", listing.ID, err)
		}
		s.rejectBid(rejectExpired)
		return nil, ErrAuctionExpired
	}

	if listing.InPartnerWindow(now) {
		visible, err := s.gate.CanView(ctx, listing, params.BidderID)
		if err != nil {
			return nil, err
		}
		if !visible {
			s.rejectBid(rejectNotVisible)
			return nil, ErrNotVisibleYet
		}
	}

	if params.BidderID == listing.SellerID {
		s.rejectBid(rejectSelfBid)
		return nil, ErrSelfBid
	}
	if !listing.AcceptsBid(params.Amount) {
		s.rejectBid(rejectStaleBid)
		return nil, ErrStaleBid
	}

	bid, err := entity.NewBid(listing.ID, params.BidderID, params.Amount, now)
	if err != nil {
		return nil, err
	}
	if err := s.bids.Append(ctx, bid); err != nil {
		s.log.Errorf("SubmitBid: ledger append failed for listing %s: %v", listing.ID, err)
		return nil, fmt.Errorf("failed to append bid for listing %s: %w", listing.ID, err)
	}

	// The ledger entry is the source of truth; the cache write follows it
	// and is safe to retry, so cache and ledger cannot diverge.
	err = s.listings.RecordHighestBid(ctx, repository.RecordHighestBidParams{
		ListingID: listing.ID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Version:   listing.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("bid %s appended but highest-bid cache update failed: %w", bid.ID, err)
	}

	s.publish(ctx, entity.SubjectBidAccepted, entity.BidAcceptedEvent{
		ListingID:  listing.ID,
		BidderID:   bid.BidderID,
		Amount:     bid.Amount,
		OccurredAt: now,
	})
	s.metrics.BidsAcceptedTotal.Inc()
	s.log.Infof("Bid accepted on listing %s: bidder %s, amount %.2f", listing.ID, bid.BidderID, bid.Amount)
	return bid, nil
}

// ResolveExpiry finalizes an expired listing as won or unsold. It is
// idempotent: already-resolved and not-yet-expired listings are a no-op, so
// the periodic sweep may re-invoke it freely.
func (s *tenderService) ResolveExpiry(ctx context.Context, listingID string) error {
	s.locks.lock(listingID)
	defer s.locks.unlock(listingID)

	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if listing.Status != entity.StatusActive {
		return nil
	}
	if !listing.Expired(now) {
		return nil
	}
	return s.resolveLocked(ctx, listing, now)
}

// resolveLocked performs the terminal transition. Callers must hold the
// listing's lock and have verified status and expiry.
func (s *tenderService) resolveLocked(ctx context.Context, listing *entity.Listing, now time.Time) error {
	winner, err := s.bids.Latest(ctx, listing.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to read bid ledger for listing %s: %w", listing.ID, err)
	}

	newStatus := entity.StatusUnsold
	if winner != nil {
		newStatus = entity.StatusWon
	}

	currentVersion := listing.Version
	if err := listing.UpdateStatus(newStatus); err != nil {
		return err
	}
	err = s.listings.UpdateStatus(ctx, repository.UpdateListingStatusParams{
		ListingID: listing.ID,
		Status:    newStatus,
		Version:   currentVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to store %s status for listing %s: %w", newStatus, listing.ID, err)
	}

	if winner != nil {
		s.publish(ctx, entity.SubjectListingWon, entity.ListingWonEvent{
			ListingID:  listing.ID,
			WinnerID:   winner.BidderID,
			Amount:     winner.Amount,
			OccurredAt: now,
		})
		s.metrics.ListingsWonTotal.Inc()
		s.log.Infof("Listing %s resolved as won by %s at %.2f", listing.ID, winner.BidderID, winner.Amount)
	} else {
		s.publish(ctx, entity.SubjectListingUnsold, entity.ListingUnsoldEvent{
			ListingID:  listing.ID,
			OccurredAt: now,
		})
		s.metrics.ListingsUnsoldTotal.Inc()
		s.log.Infof("Listing %s resolved as unsold", listing.ID)
	}
	return nil
}

func (s *tenderService) ExtendDeadline(ctx context.Context, params ExtendDeadlineParams) error {
	s.locks.lock(params.ListingID)
	defer s.locks.unlock(params.ListingID)

	listing, err := s.loadListing(ctx, params.ListingID)
	if err != nil {
		return err
	}
	if listing.SellerID != params.SellerID {
		s.log.Warnf("ExtendDeadline: user %s attempted to extend listing %s owned by %s", params.SellerID, listing.ID, listing.SellerID)
		return ErrForbidden
	}

	now := s.clock.Now()
	if listing.Status != entity.StatusActive || listing.Expired(now) {
		return ErrTooLate
	}
	if !params.NewExpiresAt.After(now) {
		return fmt.Errorf("new deadline must be in the future")
	}

	err = s.listings.UpdateExpiresAt(ctx, repository.UpdateExpiresAtParams{
		ListingID: listing.ID,
		ExpiresAt: params.NewExpiresAt.UTC(),
		Version:   listing.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to extend deadline for listing %s: %w", listing.ID, err)
	}

	s.publish(ctx, entity.SubjectDeadlineExtended, entity.DeadlineExtendedEvent{
		ListingID:    listing.ID,
		NewExpiresAt: params.NewExpiresAt.UTC(),
		OccurredAt:   now,
	})
	s.log.Infof("Listing %s deadline extended to %s by seller %s", listing.ID, params.NewExpiresAt.UTC(), params.SellerID)
	return nil
}

func (s *tenderService) CancelListing(ctx context.Context, listingID, sellerID string) error {
	s.locks.lock(listingID)
	defer s.locks.unlock(listingID)

	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerID != sellerID {
		s.log.Warnf("CancelListing: user %s attempted to cancel listing %s owned by %s", sellerID, listingID, listing.SellerID)
		return ErrForbidden
	}

	currentVersion := listing.Version
	if err := listing.UpdateStatus(entity.StatusCancelled); err != nil {
		return err
	}
	err = s.listings.UpdateStatus(ctx, repository.UpdateListingStatusParams{
		ListingID: listingID,
		Status:    entity.StatusCancelled,
		Version:   currentVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to cancel listing %s: %w", listingID, err)
	}

	s.log.Infof("Listing %s cancelled by seller %s", listingID, sellerID)
	return nil
}

func (s *tenderService) GetListing(ctx context.Context, listingID string) (*entity.Listing, error) {
	return s.loadListing(ctx, listingID)
}

func (s *tenderService) BidHistory(ctx context.Context, listingID string) ([]*entity.Bid, error) {
	if _, err := s.loadListing(ctx, listingID); err != nil {
		return nil, err
	}
	history, err := s.bids.History(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bid history for listing %s: %w", listingID, err)
	}
	return history, nil
}

func (s *tenderService) CanView(ctx context.Context, listingID, viewerID string) (bool, error) {
	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return false, err
	}
	return s.gate.CanView(ctx, listing, viewerID)
}

func (s *tenderService) loadListing(ctx context.Context, listingID string) (*entity.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to load listing %s: %w", listingID, err)
	}
	return listing, nil
}

// publish delivers an event to the notification sink. Delivery failures are
// logged, not propagated: the state change already happened.
func (s *tenderService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.log.Warnf("Failed to publish event to %s: %v", subject, err)
	}
}

func (s *tenderService) rejectBid(reason string) {
	s.metrics.BidsRejectedTotal.WithLabelValues(reason).Inc()
}
