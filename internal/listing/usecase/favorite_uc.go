package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

type FavoriteUseCase struct {
	favorites domain.FavoriteRepository
	listings  domain.ListingRepository
	logger    *zap.Logger
}

func NewFavoriteUseCase(favorites domain.FavoriteRepository, listings domain.ListingRepository, logger *zap.Logger) *FavoriteUseCase {
	return &FavoriteUseCase{
		favorites: favorites,
		listings:  listings,
		logger:    logger,
	}
}

func (uc *FavoriteUseCase) Add(ctx context.Context, requester *domain.Principal, listingID string) (*domain.Favorite, error) {
	if requester == nil || requester.Email == "" {
		return nil, domain.ErrAuthenticationRequired
	}

	// The listing must exist; a favorite never points at a missing id.
	if _, err := uc.listings.FindByID(ctx, listingID); err != nil {
		return nil, fmt.Errorf("FavoriteUseCase.Add: %w", err)
	}

	favorite := &domain.Favorite{
		OwnerEmail: requester.Email,
		ListingID:  listingID,
		CreatedAt:  time.Now(),
	}
	if err := uc.favorites.Add(ctx, favorite); err != nil {
		uc.logger.Error("Failed to add favorite",
			zap.Error(err),
			zap.String("listing_id", listingID),
			zap.String("owner", requester.Email),
		)
		return nil, fmt.Errorf("FavoriteUseCase.Add: %w", err)
	}
	return favorite, nil
}

func (uc *FavoriteUseCase) Remove(ctx context.Context, requester *domain.Principal, listingID string) error {
	if requester == nil || requester.Email == "" {
		return domain.ErrAuthenticationRequired
	}
	if err := uc.favorites.Remove(ctx, requester.Email, listingID); err != nil {
		return fmt.Errorf("FavoriteUseCase.Remove: %w", err)
	}
	return nil
}

func (uc *FavoriteUseCase) List(ctx context.Context, requester *domain.Principal) ([]*domain.Favorite, error) {
	if requester == nil || requester.Email == "" {
		return nil, domain.ErrAuthenticationRequired
	}
	favorites, err := uc.favorites.FindByOwner(ctx, requester.Email)
	if err != nil {
		return nil, fmt.Errorf("FavoriteUseCase.List: %w", err)
	}
	return favorites, nil
}
