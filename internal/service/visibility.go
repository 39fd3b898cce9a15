package service

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/repository"
)

// VisibilityGate decides whether a viewer may see or bid on a listing that
// is inside its partner-exclusive window. The same predicate serves bid
// submission and listing display so both call sites agree.
type VisibilityGate struct {
	partners repository.PartnerRepository
	clock    clock.Clock
}

func NewVisibilityGate(partners repository.PartnerRepository, clk clock.Clock) *VisibilityGate {
	return &VisibilityGate{
		partners: partners,
		clock:    clk,
	}
}

// CanView returns true for everyone once the partner window has closed. The
// transition is monotonic: a window never re-closes. During the window only
// the seller and recorded partners pass; anonymous viewers (empty viewerID)
// never do.
func (g *VisibilityGate) CanView(ctx context.Context, listing *entity.Listing, viewerID string) (bool, error) {
	if !listing.InPartnerWindow(g.clock.Now()) {
		return true, nil
	}
	if viewerID == "" {
		return false, nil
	}
	if viewerID == listing.SellerID {
		return true, nil
	}

	isPartner, err := g.partners.IsPartner(ctx, listing.SellerID, viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve partner relationship: %w", err)
	}
	return isPartner, nil
}
