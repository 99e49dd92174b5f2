package handler

import (
	"net/http"
	"strconv"

	"github.com/servilocal/listing-service/internal/listing/domain"
)

// parseSearchFilter translates query parameters into a search filter. The
// geo pair is parsed exactly once, here at the boundary; numeric pagination
// values that fail to parse fall back to their defaults (and are clamped
// downstream), while a malformed coordinate is a validation error.
func parseSearchFilter(r *http.Request, principal *domain.Principal) (domain.SearchFilter, error) {
	q := r.URL.Query()

	filter := domain.SearchFilter{
		Term:     q.Get("search"),
		Category: q.Get("category"),
		Locality: q.Get("locality"),
		Region:   q.Get("region"),
		Area:     q.Get("area"),
		Page:     atoiOr(q.Get("page"), 0),
		Limit:    atoiOr(q.Get("limit"), 0),
		RadiusKm: atofOr(q.Get("radiusKm"), 0),
	}

	if q.Get("scope") == string(domain.ScopeMine) {
		filter.Scope = domain.ScopeMine
		if principal != nil {
			filter.OwnerEmail = principal.Email
		}
		filter.Status = domain.ListingStatus(q.Get("status"))
	}

	near, err := domain.ParseGeoPoint(q.Get("lat"), q.Get("lng"))
	if err != nil {
		return domain.SearchFilter{}, err
	}
	filter.Near = near

	return filter, nil
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func atofOr(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
