package usecase

import (
	"context"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
)

type EventPublisher interface {
	PublishListingCreated(ctx context.Context, listing *domain.Listing) error
	PublishListingUpdated(ctx context.Context, listing *domain.Listing) error
	PublishListingDeleted(ctx context.Context, listingID string) error
	PublishListingPromoted(ctx context.Context, listing *domain.Listing) error
}

type ListingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

type MediaStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

type PromotionMailer interface {
	SendPromotionActivated(toEmail, listingName string, until time.Time) error
}

// PromotionSweeper is the slice of the promotion lifecycle the search side
// needs: opportunistic expiry cleanup before promotion-dependent reads.
type PromotionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}
