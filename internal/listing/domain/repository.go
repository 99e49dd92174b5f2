package domain

import (
	"context"
	"time"
)

// SearchResult is one page of listings plus the pagination totals the API
// returns alongside it.
type SearchResult struct {
	Listings   []*Listing
	TotalItems int64
	TotalPages int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) (string, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)

	// Search executes a normalized filter. When the filter carries a
	// reference point the implementation ranks by proximity and falls back
	// to recency ordering, at most once, if geo indexing is structurally
	// unavailable; that failure never crosses this boundary.
	Search(ctx context.Context, filter SearchFilter) (*SearchResult, error)

	// SetPromotion writes the full promotion triple in one update and
	// returns the resulting listing.
	SetPromotion(ctx context.Context, id string, promoted, inPortal bool, until *time.Time) (*Listing, error)

	// ClearExpiredPromotions unpromotes every listing whose window has
	// passed, in a single bulk update, and reports how many were cleared.
	ClearExpiredPromotions(ctx context.Context, now time.Time) (int64, error)

	SetModeration(ctx context.Context, id string, status ListingStatus, reviewed bool) (*Listing, error)

	// FindPortalPromoted returns up to limit portal-promoted listings with
	// an unexpired window, most recently (re)promoted first.
	FindPortalPromoted(ctx context.Context, now time.Time, limit int) ([]*Listing, error)

	// FindActiveFill returns up to limit non-promoted active listings by
	// recency, excluding the given ids.
	FindActiveFill(ctx context.Context, limit int, excludeIDs []string) ([]*Listing, error)
}

type FavoriteRepository interface {
	Add(ctx context.Context, favorite *Favorite) error
	Remove(ctx context.Context, ownerEmail, listingID string) error
	FindByOwner(ctx context.Context, ownerEmail string) ([]*Favorite, error)
	RemoveByListing(ctx context.Context, listingID string) error
}

// EntitlementLookup resolves the external subscription fact gating promotion
// activation. A nil expiry means the principal holds no entitlement.
type EntitlementLookup interface {
	ExpiryFor(ctx context.Context, ownerEmail string) (*time.Time, error)
}
