package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

// PromotionUseCase owns every transition of the per-listing promotion triple
// (promoted, promotedInPortal, promotedUntil). Each write fully determines the
// triple, so concurrent toggles and sweeps are safe under last-write-wins.
type PromotionUseCase struct {
	repo         domain.ListingRepository
	entitlements domain.EntitlementLookup
	cache        ListingCache
	publisher    EventPublisher
	mailer       PromotionMailer
	logger       *zap.Logger
	now          func() time.Time
}

func NewPromotionUseCase(
	repo domain.ListingRepository,
	entitlements domain.EntitlementLookup,
	cache ListingCache,
	publisher EventPublisher,
	mailer PromotionMailer,
	logger *zap.Logger,
) *PromotionUseCase {
	return &PromotionUseCase{
		repo:         repo,
		entitlements: entitlements,
		cache:        cache,
		publisher:    publisher,
		mailer:       mailer,
		logger:       logger,
		now:          time.Now,
	}
}

// Activate promotes a listing for the requesting owner. Repeated activation
// extends an unexpired window instead of restarting it, and never backdates:
// the new expiry is the later of now and the current expiry, plus the fixed
// promotion window.
func (uc *PromotionUseCase) Activate(ctx context.Context, listingID string, requester *domain.Principal) (*domain.Listing, error) {
	if requester == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.Activate: %w", err)
	}
	if !requester.Owns(listing) {
		uc.logger.Warn("Promotion activation denied: requester is not the owner",
			zap.String("listing_id", listingID),
			zap.String("requester", requester.Email),
		)
		return nil, domain.ErrForbidden
	}

	now := uc.now()
	expiry, err := uc.entitlements.ExpiryFor(ctx, requester.Email)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.Activate: entitlement lookup failed: %w", err)
	}
	if expiry == nil || !expiry.After(now) {
		uc.logger.Info("Promotion activation denied: no valid entitlement",
			zap.String("listing_id", listingID),
			zap.String("requester", requester.Email),
		)
		return nil, domain.ErrEntitlementRequired
	}

	base := now
	if listing.PromotedUntil != nil && listing.PromotedUntil.After(base) {
		base = *listing.PromotedUntil
	}
	until := base.Add(domain.PromotionWindow)

	updated, err := uc.repo.SetPromotion(ctx, listing.ID, true, true, &until)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.Activate: failed to set promotion: %w", err)
	}
	uc.afterPromotionChange(ctx, updated)

	if uc.mailer != nil {
		if mailErr := uc.mailer.SendPromotionActivated(updated.OwnerEmail, updated.Name, until); mailErr != nil {
			uc.logger.Warn("Failed to send promotion activation email",
				zap.Error(mailErr),
				zap.String("listing_id", updated.ID),
			)
		}
	}
	return updated, nil
}

// Deactivate clears the promotion triple unconditionally for the owner.
func (uc *PromotionUseCase) Deactivate(ctx context.Context, listingID string, requester *domain.Principal) (*domain.Listing, error) {
	if requester == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.Deactivate: %w", err)
	}
	if !requester.Owns(listing) {
		return nil, domain.ErrForbidden
	}

	updated, err := uc.repo.SetPromotion(ctx, listing.ID, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.Deactivate: failed to clear promotion: %w", err)
	}
	uc.afterPromotionChange(ctx, updated)
	return updated, nil
}

// SetPromotedAdmin toggles the plain promotion flag without ownership or
// entitlement checks. The consistency rule still holds: enabling stamps a
// fresh window, disabling the last active flag clears the timestamp.
func (uc *PromotionUseCase) SetPromotedAdmin(ctx context.Context, listingID string, requester *domain.Principal, enabled bool) (*domain.Listing, error) {
	return uc.setFlagAdmin(ctx, listingID, requester, enabled, false)
}

// SetPromotedInPortalAdmin toggles the portal promotion flag, same rules as
// SetPromotedAdmin.
func (uc *PromotionUseCase) SetPromotedInPortalAdmin(ctx context.Context, listingID string, requester *domain.Principal, enabled bool) (*domain.Listing, error) {
	return uc.setFlagAdmin(ctx, listingID, requester, enabled, true)
}

func (uc *PromotionUseCase) setFlagAdmin(ctx context.Context, listingID string, requester *domain.Principal, enabled, portal bool) (*domain.Listing, error) {
	if !requester.HasCapability(domain.CapabilityModerate) {
		return nil, domain.ErrForbidden
	}

	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.setFlagAdmin: %w", err)
	}

	promoted, inPortal := listing.Promoted, listing.PromotedInPortal
	if portal {
		inPortal = enabled
	} else {
		promoted = enabled
	}

	var until *time.Time
	switch {
	case enabled:
		u := uc.now().Add(domain.PromotionWindow)
		until = &u
	case promoted || inPortal:
		// The other flag stays promoted; keep its window.
		until = listing.PromotedUntil
	}

	updated, err := uc.repo.SetPromotion(ctx, listing.ID, promoted, inPortal, until)
	if err != nil {
		return nil, fmt.Errorf("PromotionUseCase.setFlagAdmin: failed to set promotion: %w", err)
	}
	uc.afterPromotionChange(ctx, updated)
	return updated, nil
}

// SweepExpired clears promotion state on every listing whose window has
// passed. It is idempotent and only ever moves state toward unpromoted, so
// concurrent sweeps from racing requests are harmless.
func (uc *PromotionUseCase) SweepExpired(ctx context.Context) (int64, error) {
	cleared, err := uc.repo.ClearExpiredPromotions(ctx, uc.now())
	if err != nil {
		return 0, fmt.Errorf("PromotionUseCase.SweepExpired: %w", err)
	}
	if cleared > 0 {
		uc.logger.Debug("Cleared expired promotions", zap.Int64("count", cleared))
	}
	return cleared, nil
}

func (uc *PromotionUseCase) afterPromotionChange(ctx context.Context, listing *domain.Listing) {
	if uc.cache != nil {
		if err := uc.cache.DeleteListing(ctx, listing.ID); err != nil {
			uc.logger.Warn("Failed to invalidate listing cache after promotion change",
				zap.Error(err),
				zap.String("listing_id", listing.ID),
			)
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishListingPromoted(ctx, listing); err != nil {
			uc.logger.Warn("Failed to publish promotion event",
				zap.Error(err),
				zap.String("listing_id", listing.ID),
			)
		}
	}
}
