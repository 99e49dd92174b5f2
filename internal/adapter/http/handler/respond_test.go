package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/servilocal/listing-service/internal/listing/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"wrapped invalid input", fmt.Errorf("parse: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{"authentication required", domain.ErrAuthenticationRequired, http.StatusUnauthorized},
		{"entitlement required", domain.ErrEntitlementRequired, http.StatusPaymentRequired},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"listing not found", domain.ErrListingNotFound, http.StatusNotFound},
		{"favorite not found", domain.ErrFavoriteNotFound, http.StatusNotFound},
		{"duplicate favorite", domain.ErrDuplicateFavorite, http.StatusConflict},
		{"unknown error stays opaque", errors.New("mongo: socket closed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}
