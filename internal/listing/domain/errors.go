package domain

import "errors"

var (
	ErrListingNotFound        = errors.New("listing not found")
	ErrFavoriteNotFound       = errors.New("favorite not found")
	ErrDuplicateFavorite      = errors.New("favorite already exists")
	ErrInvalidInput           = errors.New("invalid input")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrEntitlementRequired    = errors.New("valid entitlement required")
	ErrForbidden              = errors.New("action forbidden")
)
