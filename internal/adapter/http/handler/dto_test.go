package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/servilocal/listing-service/internal/listing/domain"
)

func TestToListingResponseFor_OwnerIdentityVisibility(t *testing.T) {
	listing := &domain.Listing{ID: "l1", Name: "Fontanería García", OwnerEmail: "owner@example.com"}

	cases := []struct {
		name      string
		viewer    *domain.Principal
		wantOwner string
	}{
		{"anonymous viewer", nil, ""},
		{"unrelated user", &domain.Principal{ID: "u2", Email: "stranger@example.com"}, ""},
		{"the owner", &domain.Principal{ID: "u1", Email: "owner@example.com"}, "owner@example.com"},
		{
			"a moderator",
			&domain.Principal{ID: "a1", Email: "admin@example.com", Capabilities: []domain.Capability{domain.CapabilityModerate}},
			"owner@example.com",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := toListingResponseFor(listing, tc.viewer)
			assert.Equal(t, tc.wantOwner, resp.OwnerEmail)
			// Only the identity field changes with the viewer.
			assert.Equal(t, "Fontanería García", resp.Name)
			assert.Equal(t, "l1", resp.ID)
		})
	}
}
