package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

type PhotoUseCase struct {
	repo    domain.ListingRepository
	storage MediaStorage
	cache   ListingCache
	logger  *zap.Logger
}

func NewPhotoUseCase(repo domain.ListingRepository, storage MediaStorage, cache ListingCache, logger *zap.Logger) *PhotoUseCase {
	return &PhotoUseCase{
		repo:    repo,
		storage: storage,
		cache:   cache,
		logger:  logger,
	}
}

// AddPhoto uploads one image to the media store and appends its public URL to
// the listing. Only the owner may attach media, and the photo count is
// bounded.
func (uc *PhotoUseCase) AddPhoto(ctx context.Context, listingID string, requester *domain.Principal, fileName string, data []byte) (*domain.Listing, error) {
	if requester == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty photo payload", domain.ErrInvalidInput)
	}

	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("PhotoUseCase.AddPhoto: %w", err)
	}
	if !requester.Owns(listing) {
		return nil, domain.ErrForbidden
	}
	if len(listing.Photos) >= domain.MaxPhotos {
		return nil, fmt.Errorf("%w: photo limit of %d reached", domain.ErrInvalidInput, domain.MaxPhotos)
	}

	url, err := uc.storage.Upload(ctx, fileName, data)
	if err != nil {
		uc.logger.Error("Photo upload failed", zap.Error(err), zap.String("listing_id", listingID))
		return nil, fmt.Errorf("PhotoUseCase.AddPhoto: upload failed: %w", err)
	}

	listing.Photos = append(listing.Photos, url)
	listing.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("PhotoUseCase.AddPhoto: %w", err)
	}

	if uc.cache != nil {
		if delErr := uc.cache.DeleteListing(ctx, listingID); delErr != nil {
			uc.logger.Warn("Failed to invalidate listing cache after photo upload",
				zap.Error(delErr),
				zap.String("listing_id", listingID),
			)
		}
	}
	return listing, nil
}
