package domain

import "time"

type ListingStatus string

const (
	StatusPending ListingStatus = "pending"
	StatusActive  ListingStatus = "active"
	StatusPaused  ListingStatus = "paused"
	StatusRemoved ListingStatus = "removed"
)

// ValidStatus reports whether s is one of the moderation states a listing may hold.
func ValidStatus(s ListingStatus) bool {
	switch s {
	case StatusPending, StatusActive, StatusPaused, StatusRemoved:
		return true
	}
	return false
}

// PromotionWindow is the fixed extension applied on every promotion activation.
const PromotionWindow = 30 * 24 * time.Hour

const (
	MaxPhotos            = 10
	MaxDescriptionLength = 5000
)

// GeoPoint is a validated coordinate pair. It is produced exactly once at the
// request boundary; nothing downstream re-parses location input.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

type Listing struct {
	ID          string
	OwnerEmail  string
	Name        string
	Category    string
	Headline    string
	Description string
	Contact     string
	Phone       string
	Locality    string
	Region      string
	Area        string
	Photos      []string
	VideoURL    string
	Location    *GeoPoint
	Status      ListingStatus
	Reviewed    bool

	Promoted         bool
	PromotedInPortal bool
	PromotedUntil    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromotionTier returns the ranking tier of the listing at instant now:
// 2 for an unexpired portal promotion, 1 for an unexpired plain promotion,
// 0 otherwise.
func (l *Listing) PromotionTier(now time.Time) int {
	if l.PromotedUntil == nil || !l.PromotedUntil.After(now) {
		return 0
	}
	if l.PromotedInPortal {
		return 2
	}
	if l.Promoted {
		return 1
	}
	return 0
}

// PromotionConsistent reports whether the promotion triple satisfies the
// invariant: promotedUntil is set exactly when one of the flags is.
func (l *Listing) PromotionConsistent() bool {
	return (l.PromotedUntil != nil) == (l.Promoted || l.PromotedInPortal)
}

type Favorite struct {
	ID         string
	OwnerEmail string
	ListingID  string
	CreatedAt  time.Time
}

type Capability string

const CapabilityModerate Capability = "moderate"

// Principal is the verified caller identity, computed once per request from
// the bearer credential and passed down explicitly.
type Principal struct {
	ID           string
	Email        string
	Capabilities []Capability
}

func (p *Principal) HasCapability(c Capability) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Owns reports whether the principal is the owner of the listing.
func (p *Principal) Owns(l *Listing) bool {
	return p != nil && p.Email != "" && p.Email == l.OwnerEmail
}
