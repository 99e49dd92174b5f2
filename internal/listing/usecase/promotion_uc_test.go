package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPromotionUC(repo *MockListingRepository, ent *MockEntitlementLookup, now time.Time) *PromotionUseCase {
	uc := NewPromotionUseCase(repo, ent, nil, nil, nil, zap.NewNop())
	uc.now = func() time.Time { return now }
	return uc
}

func owner() *domain.Principal {
	return &domain.Principal{ID: "u1", Email: "owner@example.com"}
}

func admin() *domain.Principal {
	return &domain.Principal{ID: "a1", Email: "admin@example.com", Capabilities: []domain.Capability{domain.CapabilityModerate}}
}

func TestActivate_FreshPromotionSetsThirtyDayWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	ent := new(MockEntitlementLookup)
	uc := newPromotionUC(repo, ent, now)

	listing := &domain.Listing{ID: "l1", OwnerEmail: "owner@example.com"}
	entitled := now.Add(60 * 24 * time.Hour)
	wantUntil := now.Add(domain.PromotionWindow)

	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	ent.On("ExpiryFor", mock.Anything, "owner@example.com").Return(&entitled, nil)
	repo.On("SetPromotion", mock.Anything, "l1", true, true, &wantUntil).
		Return(&domain.Listing{ID: "l1", OwnerEmail: "owner@example.com", Promoted: true, PromotedInPortal: true, PromotedUntil: &wantUntil}, nil)

	updated, err := uc.Activate(context.Background(), "l1", owner())
	require.NoError(t, err)
	assert.True(t, updated.Promoted)
	assert.True(t, updated.PromotedInPortal)
	require.NotNil(t, updated.PromotedUntil)
	assert.True(t, updated.PromotedUntil.Equal(wantUntil))
	assert.True(t, updated.PromotionConsistent())
	repo.AssertExpectations(t)
	ent.AssertExpectations(t)
}

func TestActivate_ExtendsUnexpiredWindowWithoutBackdating(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	ent := new(MockEntitlementLookup)
	uc := newPromotionUC(repo, ent, now)

	current := now.Add(10 * 24 * time.Hour)
	listing := &domain.Listing{ID: "l1", OwnerEmail: "owner@example.com", Promoted: true, PromotedInPortal: true, PromotedUntil: &current}
	entitled := now.Add(90 * 24 * time.Hour)
	wantUntil := current.Add(domain.PromotionWindow)

	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	ent.On("ExpiryFor", mock.Anything, "owner@example.com").Return(&entitled, nil)
	repo.On("SetPromotion", mock.Anything, "l1", true, true, &wantUntil).
		Return(&domain.Listing{ID: "l1", Promoted: true, PromotedInPortal: true, PromotedUntil: &wantUntil}, nil)

	updated, err := uc.Activate(context.Background(), "l1", owner())
	require.NoError(t, err)
	// Monotonic: the window never decreases on reactivation.
	assert.False(t, updated.PromotedUntil.Before(current))
	assert.True(t, updated.PromotedUntil.Equal(wantUntil))
}

func TestActivate_ExpiredWindowRestartsFromNow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	ent := new(MockEntitlementLookup)
	uc := newPromotionUC(repo, ent, now)

	stale := now.Add(-time.Second)
	listing := &domain.Listing{ID: "l1", OwnerEmail: "owner@example.com", Promoted: true, PromotedUntil: &stale}
	entitled := now.Add(30 * 24 * time.Hour)
	wantUntil := now.Add(domain.PromotionWindow)

	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	ent.On("ExpiryFor", mock.Anything, "owner@example.com").Return(&entitled, nil)
	repo.On("SetPromotion", mock.Anything, "l1", true, true, &wantUntil).
		Return(&domain.Listing{ID: "l1", Promoted: true, PromotedInPortal: true, PromotedUntil: &wantUntil}, nil)

	_, err := uc.Activate(context.Background(), "l1", owner())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivate_NonOwnerIsForbiddenWithoutStateChange(t *testing.T) {
	now := time.Now()
	repo := new(MockListingRepository)
	ent := new(MockEntitlementLookup)
	uc := newPromotionUC(repo, ent, now)

	listing := &domain.Listing{ID: "l1", OwnerEmail: "someone-else@example.com"}
	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)

	_, err := uc.Activate(context.Background(), "l1", owner())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "SetPromotion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ent.AssertNotCalled(t, "ExpiryFor", mock.Anything, mock.Anything)
}

func TestActivate_MissingOrExpiredEntitlement(t *testing.T) {
	now := time.Now()
	listing := &domain.Listing{ID: "l1", OwnerEmail: "owner@example.com"}

	t.Run("no entitlement", func(t *testing.T) {
		repo := new(MockListingRepository)
		ent := new(MockEntitlementLookup)
		uc := newPromotionUC(repo, ent, now)
		repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
		ent.On("ExpiryFor", mock.Anything, "owner@example.com").Return(nil, nil)

		_, err := uc.Activate(context.Background(), "l1", owner())
		assert.ErrorIs(t, err, domain.ErrEntitlementRequired)
	})

	t.Run("expired entitlement", func(t *testing.T) {
		repo := new(MockListingRepository)
		ent := new(MockEntitlementLookup)
		uc := newPromotionUC(repo, ent, now)
		expired := now.Add(-time.Minute)
		repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
		ent.On("ExpiryFor", mock.Anything, "owner@example.com").Return(&expired, nil)

		_, err := uc.Activate(context.Background(), "l1", owner())
		assert.ErrorIs(t, err, domain.ErrEntitlementRequired)
	})
}

func TestActivate_AnonymousRequester(t *testing.T) {
	uc := newPromotionUC(new(MockListingRepository), new(MockEntitlementLookup), time.Now())
	_, err := uc.Activate(context.Background(), "l1", nil)
	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)
}

func TestDeactivate_ClearsTripleUnconditionally(t *testing.T) {
	now := time.Now()
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), now)

	until := now.Add(5 * 24 * time.Hour)
	listing := &domain.Listing{ID: "l1", OwnerEmail: "owner@example.com", Promoted: true, PromotedInPortal: true, PromotedUntil: &until}
	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	repo.On("SetPromotion", mock.Anything, "l1", false, false, (*time.Time)(nil)).
		Return(&domain.Listing{ID: "l1", OwnerEmail: "owner@example.com"}, nil)

	updated, err := uc.Deactivate(context.Background(), "l1", owner())
	require.NoError(t, err)
	assert.False(t, updated.Promoted)
	assert.Nil(t, updated.PromotedUntil)
	assert.True(t, updated.PromotionConsistent())
}

func TestSetPromotedAdmin_RequiresModerateCapability(t *testing.T) {
	uc := newPromotionUC(new(MockListingRepository), new(MockEntitlementLookup), time.Now())
	_, err := uc.SetPromotedAdmin(context.Background(), "l1", owner(), true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSetPromotedAdmin_EnableStampsFreshWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), now)

	wantUntil := now.Add(domain.PromotionWindow)
	repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", OwnerEmail: "x@example.com"}, nil)
	repo.On("SetPromotion", mock.Anything, "l1", true, false, &wantUntil).
		Return(&domain.Listing{ID: "l1", Promoted: true, PromotedUntil: &wantUntil}, nil)

	updated, err := uc.SetPromotedAdmin(context.Background(), "l1", admin(), true)
	require.NoError(t, err)
	assert.True(t, updated.Promoted)
	repo.AssertExpectations(t)
}

func TestSetPromotedInPortalAdmin_DisableKeepsOtherFlagWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), now)

	until := now.Add(12 * 24 * time.Hour)
	listing := &domain.Listing{ID: "l1", Promoted: true, PromotedInPortal: true, PromotedUntil: &until}
	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	repo.On("SetPromotion", mock.Anything, "l1", true, false, &until).
		Return(&domain.Listing{ID: "l1", Promoted: true, PromotedUntil: &until}, nil)

	_, err := uc.SetPromotedInPortalAdmin(context.Background(), "l1", admin(), false)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetPromotedAdmin_DisableLastFlagClearsTimestamp(t *testing.T) {
	now := time.Now()
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), now)

	until := now.Add(12 * 24 * time.Hour)
	listing := &domain.Listing{ID: "l1", Promoted: true, PromotedUntil: &until}
	repo.On("FindByID", mock.Anything, "l1").Return(listing, nil)
	repo.On("SetPromotion", mock.Anything, "l1", false, false, (*time.Time)(nil)).
		Return(&domain.Listing{ID: "l1"}, nil)

	_, err := uc.SetPromotedAdmin(context.Background(), "l1", admin(), false)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSweepExpired_DelegatesBulkClear(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), now)

	repo.On("ClearExpiredPromotions", mock.Anything, now).Return(int64(3), nil)

	cleared, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
}

func TestSweepExpired_Idempotent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), now)

	// Second invocation over an already swept store clears nothing.
	repo.On("ClearExpiredPromotions", mock.Anything, now).Return(int64(2), nil).Once()
	repo.On("ClearExpiredPromotions", mock.Anything, now).Return(int64(0), nil).Once()

	first, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	second, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), first)
	assert.Equal(t, int64(0), second)
}

func TestSweepExpired_StoreFailureSurfaces(t *testing.T) {
	repo := new(MockListingRepository)
	uc := newPromotionUC(repo, new(MockEntitlementLookup), time.Now())

	repo.On("ClearExpiredPromotions", mock.Anything, mock.Anything).Return(int64(0), errors.New("store unavailable"))

	_, err := uc.SweepExpired(context.Background())
	assert.Error(t, err)
}
