package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

type ListingUseCase struct {
	repo      domain.ListingRepository
	favorites domain.FavoriteRepository
	cache     ListingCache
	publisher EventPublisher
	logger    *zap.Logger
}

func NewListingUseCase(
	repo domain.ListingRepository,
	favorites domain.FavoriteRepository,
	cache ListingCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *ListingUseCase {
	return &ListingUseCase{
		repo:      repo,
		favorites: favorites,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

type CreateListingInput struct {
	Name        string
	Category    string
	Headline    string
	Description string
	Contact     string
	Phone       string
	Locality    string
	Region      string
	Area        string
	VideoURL    string
	Location    *domain.GeoPoint
}

func (uc *ListingUseCase) Create(ctx context.Context, owner *domain.Principal, input CreateListingInput) (*domain.Listing, error) {
	if owner == nil || owner.Email == "" {
		return nil, domain.ErrAuthenticationRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(input.Description) > domain.MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
	}

	now := time.Now()
	listing := &domain.Listing{
		OwnerEmail:  owner.Email,
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Headline:    input.Headline,
		Description: input.Description,
		Contact:     input.Contact,
		Phone:       input.Phone,
		Locality:    input.Locality,
		Region:      input.Region,
		Area:        input.Area,
		VideoURL:    input.VideoURL,
		Location:    input.Location,
		Photos:      []string{},
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := uc.repo.Create(ctx, listing)
	if err != nil {
		uc.logger.Error("Failed to create listing", zap.Error(err), zap.String("owner", owner.Email))
		return nil, fmt.Errorf("ListingUseCase.Create: %w", err)
	}
	listing.ID = id

	if uc.publisher != nil {
		if pubErr := uc.publisher.PublishListingCreated(ctx, listing); pubErr != nil {
			uc.logger.Warn("Failed to publish listing created event",
				zap.Error(pubErr),
				zap.String("listing_id", listing.ID),
			)
		}
	}
	return listing, nil
}

func (uc *ListingUseCase) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("Listing cache lookup failed", zap.Error(err), zap.String("listing_id", id))
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase.GetByID: %w", err)
	}

	if uc.cache != nil {
		if setErr := uc.cache.SetListing(ctx, listing); setErr != nil {
			uc.logger.Warn("Failed to cache listing", zap.Error(setErr), zap.String("listing_id", id))
		}
	}
	return listing, nil
}

type UpdateListingInput struct {
	Name        *string
	Category    *string
	Headline    *string
	Description *string
	Contact     *string
	Phone       *string
	Locality    *string
	Region      *string
	Area        *string
	VideoURL    *string
	Location    *domain.GeoPoint
}

func (uc *ListingUseCase) Update(ctx context.Context, id string, requester *domain.Principal, input UpdateListingInput) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase.Update: %w", err)
	}
	if !requester.Owns(listing) && !requester.HasCapability(domain.CapabilityModerate) {
		return nil, domain.ErrForbidden
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		listing.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		if len(*input.Description) > domain.MaxDescriptionLength {
			return nil, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
		}
		listing.Description = *input.Description
	}
	if input.Category != nil {
		listing.Category = *input.Category
	}
	if input.Headline != nil {
		listing.Headline = *input.Headline
	}
	if input.Contact != nil {
		listing.Contact = *input.Contact
	}
	if input.Phone != nil {
		listing.Phone = *input.Phone
	}
	if input.Locality != nil {
		listing.Locality = *input.Locality
	}
	if input.Region != nil {
		listing.Region = *input.Region
	}
	if input.Area != nil {
		listing.Area = *input.Area
	}
	if input.VideoURL != nil {
		listing.VideoURL = *input.VideoURL
	}
	if input.Location != nil {
		listing.Location = input.Location
	}
	listing.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error("Failed to update listing", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("ListingUseCase.Update: %w", err)
	}
	uc.invalidate(ctx, id)

	if uc.publisher != nil {
		if pubErr := uc.publisher.PublishListingUpdated(ctx, listing); pubErr != nil {
			uc.logger.Warn("Failed to publish listing updated event",
				zap.Error(pubErr),
				zap.String("listing_id", id),
			)
		}
	}
	return listing, nil
}

// Delete removes a listing and its favorites so no favorite is left pointing
// at a deleted id.
func (uc *ListingUseCase) Delete(ctx context.Context, id string, requester *domain.Principal) error {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ListingUseCase.Delete: %w", err)
	}
	if !requester.Owns(listing) && !requester.HasCapability(domain.CapabilityModerate) {
		return domain.ErrForbidden
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("Failed to delete listing", zap.Error(err), zap.String("listing_id", id))
		return fmt.Errorf("ListingUseCase.Delete: %w", err)
	}

	if uc.favorites != nil {
		if favErr := uc.favorites.RemoveByListing(ctx, id); favErr != nil && !errors.Is(favErr, domain.ErrFavoriteNotFound) {
			uc.logger.Warn("Failed to remove favorites of deleted listing",
				zap.Error(favErr),
				zap.String("listing_id", id),
			)
		}
	}
	uc.invalidate(ctx, id)

	if uc.publisher != nil {
		if pubErr := uc.publisher.PublishListingDeleted(ctx, id); pubErr != nil {
			uc.logger.Warn("Failed to publish listing deleted event",
				zap.Error(pubErr),
				zap.String("listing_id", id),
			)
		}
	}
	return nil
}

// SetStatus is the moderation transition; only principals holding the
// moderate capability may call it.
func (uc *ListingUseCase) SetStatus(ctx context.Context, id string, requester *domain.Principal, status domain.ListingStatus, reviewed *bool) (*domain.Listing, error) {
	if !requester.HasCapability(domain.CapabilityModerate) {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase.SetStatus: %w", err)
	}

	markReviewed := listing.Reviewed
	if reviewed != nil {
		markReviewed = *reviewed
	}

	updated, err := uc.repo.SetModeration(ctx, id, status, markReviewed)
	if err != nil {
		uc.logger.Error("Failed to set moderation state", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("ListingUseCase.SetStatus: %w", err)
	}
	uc.invalidate(ctx, id)

	if uc.publisher != nil {
		if pubErr := uc.publisher.PublishListingUpdated(ctx, updated); pubErr != nil {
			uc.logger.Warn("Failed to publish listing updated event",
				zap.Error(pubErr),
				zap.String("listing_id", id),
			)
		}
	}
	return updated, nil
}

func (uc *ListingUseCase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("Failed to invalidate listing cache", zap.Error(err), zap.String("listing_id", id))
	}
}
