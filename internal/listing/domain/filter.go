package domain

import (
	"fmt"
	"strconv"
)

type Scope string

const (
	ScopePublic Scope = "public"
	ScopeMine   Scope = "mine"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50

	DefaultRadiusKm = 25.0
	MinRadiusKm     = 1.0
	MaxRadiusKm     = 300.0
)

// SearchFilter describes one store query. Pagination and radius are clamped,
// never rejected, so a normalized filter is always executable.
type SearchFilter struct {
	Term     string
	Category string
	Locality string
	Region   string
	Area     string

	Scope      Scope
	OwnerEmail string
	Status     ListingStatus

	Page  int
	Limit int

	Near     *GeoPoint
	RadiusKm float64
}

// Normalize clamps pagination and radius into their allowed ranges and drops
// locality-name filters when a reference point is present. Radius proximity
// supersedes name matching: combining both near a locality boundary yields
// empty or misleading result sets.
func (f *SearchFilter) Normalize() {
	if f.Scope != ScopeMine {
		f.Scope = ScopePublic
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.RadiusKm == 0 {
		f.RadiusKm = DefaultRadiusKm
	}
	if f.RadiusKm < MinRadiusKm {
		f.RadiusKm = MinRadiusKm
	}
	if f.RadiusKm > MaxRadiusKm {
		f.RadiusKm = MaxRadiusKm
	}
	if f.Near != nil {
		f.Locality = ""
		f.Region = ""
		f.Area = ""
	}
}

// Skip returns the number of documents to skip for the current page.
func (f *SearchFilter) Skip() int64 {
	return int64(f.Page-1) * int64(f.Limit)
}

// TotalPages converts a total count into a page count; an empty result is
// still one (empty) page.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		limit = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ParseGeoPoint validates raw lat/lng query input into a GeoPoint. Both values
// must be present and in range; an empty pair means no reference point.
func ParseGeoPoint(latRaw, lngRaw string) (*GeoPoint, error) {
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, fmt.Errorf("%w: lat and lng must be supplied together", ErrInvalidInput)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid lat %q", ErrInvalidInput, latRaw)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid lng %q", ErrInvalidInput, lngRaw)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	return &GeoPoint{Latitude: lat, Longitude: lng}, nil
}
