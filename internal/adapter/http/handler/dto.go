package handler

import (
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
)

type geoPointDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// listingResponse is the wire shape of a listing. Internal ranking state is
// never part of it; promotion flags are, since clients render the badge.
type listingResponse struct {
	ID               string       `json:"id"`
	OwnerEmail       string       `json:"owner_email,omitempty"`
	Name             string       `json:"name"`
	Category         string       `json:"category,omitempty"`
	Headline         string       `json:"headline,omitempty"`
	Description      string       `json:"description,omitempty"`
	Contact          string       `json:"contact,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Locality         string       `json:"locality,omitempty"`
	Region           string       `json:"region,omitempty"`
	Area             string       `json:"area,omitempty"`
	Photos           []string     `json:"photos"`
	VideoURL         string       `json:"video_url,omitempty"`
	Location         *geoPointDTO `json:"location,omitempty"`
	Status           string       `json:"status"`
	Reviewed         bool         `json:"reviewed"`
	Promoted         bool         `json:"promoted"`
	PromotedInPortal bool         `json:"promoted_in_portal"`
	PromotedUntil    *time.Time   `json:"promoted_until,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	resp := listingResponse{
		ID:               l.ID,
		OwnerEmail:       l.OwnerEmail,
		Name:             l.Name,
		Category:         l.Category,
		Headline:         l.Headline,
		Description:      l.Description,
		Contact:          l.Contact,
		Phone:            l.Phone,
		Locality:         l.Locality,
		Region:           l.Region,
		Area:             l.Area,
		Photos:           l.Photos,
		VideoURL:         l.VideoURL,
		Status:           string(l.Status),
		Reviewed:         l.Reviewed,
		Promoted:         l.Promoted,
		PromotedInPortal: l.PromotedInPortal,
		PromotedUntil:    l.PromotedUntil,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	if l.Location != nil {
		resp.Location = &geoPointDTO{Latitude: l.Location.Latitude, Longitude: l.Location.Longitude}
	}
	return resp
}

// toListingResponseFor renders a listing for a specific viewer. The owner
// identity stays visible only to the owner and to moderators; everyone else
// gets the same shape the public search projection produces.
func toListingResponseFor(l *domain.Listing, viewer *domain.Principal) listingResponse {
	resp := toListingResponse(l)
	if !viewer.Owns(l) && !viewer.HasCapability(domain.CapabilityModerate) {
		resp.OwnerEmail = ""
	}
	return resp
}

func toListingResponses(listings []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

type searchResponse struct {
	Data       []listingResponse `json:"data"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	TotalItems int64             `json:"totalItems"`
}

type portalResponse struct {
	Data []listingResponse `json:"data"`
}
