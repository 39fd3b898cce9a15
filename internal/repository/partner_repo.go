package repository

import "context"

// PartnerRepository answers whether a viewer is a recorded partner of a
// seller. Partner relationships are managed by the profile service and are
// read-only here.
type PartnerRepository interface {
	IsPartner(ctx context.Context, sellerID, viewerID string) (bool, error)
}
