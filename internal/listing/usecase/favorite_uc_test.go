package usecase

import (
	"context"
	"testing"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFavoriteUC(favorites *MockFavoriteRepository, listings *MockListingRepository) *FavoriteUseCase {
	return NewFavoriteUseCase(favorites, listings, zap.NewNop())
}

func TestFavoriteAdd_RequiresExistingListing(t *testing.T) {
	favorites := new(MockFavoriteRepository)
	listings := new(MockListingRepository)
	uc := newFavoriteUC(favorites, listings)

	listings.On("FindByID", mock.Anything, "missing").Return(nil, domain.ErrListingNotFound)

	_, err := uc.Add(context.Background(), owner(), "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	favorites.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestFavoriteAdd_Success(t *testing.T) {
	favorites := new(MockFavoriteRepository)
	listings := new(MockListingRepository)
	uc := newFavoriteUC(favorites, listings)

	listings.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	favorites.On("Add", mock.Anything, mock.MatchedBy(func(f *domain.Favorite) bool {
		return f.OwnerEmail == "owner@example.com" && f.ListingID == "l1"
	})).Return(nil)

	favorite, err := uc.Add(context.Background(), owner(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "l1", favorite.ListingID)
	favorites.AssertExpectations(t)
}

func TestFavoriteAdd_DuplicateSurfaces(t *testing.T) {
	favorites := new(MockFavoriteRepository)
	listings := new(MockListingRepository)
	uc := newFavoriteUC(favorites, listings)

	listings.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	favorites.On("Add", mock.Anything, mock.Anything).Return(domain.ErrDuplicateFavorite)

	_, err := uc.Add(context.Background(), owner(), "l1")
	assert.ErrorIs(t, err, domain.ErrDuplicateFavorite)
}

func TestFavoriteAdd_Anonymous(t *testing.T) {
	uc := newFavoriteUC(new(MockFavoriteRepository), new(MockListingRepository))

	_, err := uc.Add(context.Background(), nil, "l1")
	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)
}

func TestFavoriteRemove_MissingSurfacesNotFound(t *testing.T) {
	favorites := new(MockFavoriteRepository)
	uc := newFavoriteUC(favorites, new(MockListingRepository))

	favorites.On("Remove", mock.Anything, "owner@example.com", "l1").Return(domain.ErrFavoriteNotFound)

	err := uc.Remove(context.Background(), owner(), "l1")
	assert.ErrorIs(t, err, domain.ErrFavoriteNotFound)
}

func TestFavoriteList_ScopedToRequester(t *testing.T) {
	favorites := new(MockFavoriteRepository)
	uc := newFavoriteUC(favorites, new(MockListingRepository))

	stored := []*domain.Favorite{{ID: "f1", OwnerEmail: "owner@example.com", ListingID: "l1"}}
	favorites.On("FindByOwner", mock.Anything, "owner@example.com").Return(stored, nil)

	got, err := uc.List(context.Background(), owner())
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	favorites.AssertExpectations(t)
}
