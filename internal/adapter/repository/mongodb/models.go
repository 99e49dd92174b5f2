package mongodb

import (
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// geoJSONPoint is the stored shape of a listing location; coordinates are
// [longitude, latitude] per GeoJSON.
type geoJSONPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

func toGeoJSON(p *domain.GeoPoint) *geoJSONPoint {
	if p == nil {
		return nil
	}
	return &geoJSONPoint{Type: "Point", Coordinates: []float64{p.Longitude, p.Latitude}}
}

func fromGeoJSON(p *geoJSONPoint) *domain.GeoPoint {
	if p == nil || len(p.Coordinates) != 2 {
		return nil
	}
	return &domain.GeoPoint{Longitude: p.Coordinates[0], Latitude: p.Coordinates[1]}
}

type listingDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	OwnerEmail  string               `bson:"owner_email,omitempty"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category,omitempty"`
	Headline    string               `bson:"headline,omitempty"`
	Description string               `bson:"description,omitempty"`
	Contact     string               `bson:"contact,omitempty"`
	Phone       string               `bson:"phone,omitempty"`
	Locality    string               `bson:"locality,omitempty"`
	Region      string               `bson:"region,omitempty"`
	Area        string               `bson:"area,omitempty"`
	Photos      []string             `bson:"photos"`
	VideoURL    string               `bson:"video_url,omitempty"`
	Location    *geoJSONPoint        `bson:"location,omitempty"`
	Status      domain.ListingStatus `bson:"status"`
	Reviewed    bool                 `bson:"reviewed"`

	Promoted         bool       `bson:"promoted"`
	PromotedInPortal bool       `bson:"promoted_in_portal"`
	PromotedUntil    *time.Time `bson:"promoted_until,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	doc := &listingDocument{
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
		Location:         toGeoJSON(l.Location),
		Status:           l.Status,
		Reviewed:         l.Reviewed,
		Promoted:         l.Promoted,
		PromotedInPortal: l.PromotedInPortal,
		PromotedUntil:    l.PromotedUntil,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if doc.Photos == nil {
		doc.Photos = []string{}
	}
	if l.ID != "" {
		objID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, l.ID)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toDomainListing(doc *listingDocument) *domain.Listing {
	return &domain.Listing{
		ID:               doc.ID.Hex(),
		OwnerEmail:       doc.OwnerEmail,
		Name:             doc.Name,
		Category:         doc.Category,
		Headline:         doc.Headline,
		Description:      doc.Description,
		Contact:          doc.Contact,
		Phone:            doc.Phone,
		Locality:         doc.Locality,
		Region:           doc.Region,
		Area:             doc.Area,
		Photos:           doc.Photos,
		VideoURL:         doc.VideoURL,
		Location:         fromGeoJSON(doc.Location),
		Status:           doc.Status,
		Reviewed:         doc.Reviewed,
		Promoted:         doc.Promoted,
		PromotedInPortal: doc.PromotedInPortal,
		PromotedUntil:    doc.PromotedUntil,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func toDomainListings(docs []listingDocument) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, toDomainListing(&docs[i]))
	}
	return listings
}

type favoriteDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OwnerEmail string             `bson:"owner_email"`
	ListingID  primitive.ObjectID `bson:"listing_id"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func toDomainFavorite(doc *favoriteDocument) *domain.Favorite {
	return &domain.Favorite{
		ID:         doc.ID.Hex(),
		OwnerEmail: doc.OwnerEmail,
		ListingID:  doc.ListingID.Hex(),
		CreatedAt:  doc.CreatedAt,
	}
}
