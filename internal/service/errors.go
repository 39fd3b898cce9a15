package service

import "errors"

// Typed outcomes of tender operations. All are expected, per-listing results
// returned to the caller; none is retried internally.
var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrListingNotActive = errors.New("listing is not active")
	ErrAuctionExpired   = errors.New("auction has expired")
	ErrNotVisibleYet    = errors.New("listing is not yet visible to this viewer")
	ErrStaleBid         = errors.New("bid does not beat the current price floor")
	ErrSelfBid          = errors.New("seller cannot bid on their own listing")
	ErrTooLate          = errors.New("deadline can no longer be extended")
	ErrForbidden        = errors.New("user not authorized to perform this action")
)
