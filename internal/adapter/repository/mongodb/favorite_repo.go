package mongodb

import (
	"context"
	"fmt"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const favoriteCollectionName = "favorites"

type FavoriteRepository struct {
	collection *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) *FavoriteRepository {
	return &FavoriteRepository{collection: db.Collection(favoriteCollectionName)}
}

func (r *FavoriteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_email", Value: 1}, {Key: "listing_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create favorite index: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Add(ctx context.Context, favorite *domain.Favorite) error {
	listingID, err := primitive.ObjectIDFromHex(favorite.ListingID)
	if err != nil {
		return fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, favorite.ListingID)
	}

	doc := favoriteDocument{
		OwnerEmail: favorite.OwnerEmail,
		ListingID:  listingID,
		CreatedAt:  favorite.CreatedAt,
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateFavorite
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if insertedID, ok := res.InsertedID.(primitive.ObjectID); ok {
		favorite.ID = insertedID.Hex()
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, ownerEmail, listingID string) error {
	objID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, listingID)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"owner_email": ownerEmail, "listing_id": objID})
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepository) FindByOwner(ctx context.Context, ownerEmail string) ([]*domain.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_email": ownerEmail}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []favoriteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}

	favorites := make([]*domain.Favorite, 0, len(docs))
	for i := range docs {
		favorites = append(favorites, toDomainFavorite(&docs[i]))
	}
	return favorites, nil
}

// RemoveByListing deletes every favorite of a listing, called when the
// listing itself is deleted so no favorite points at a missing id.
func (r *FavoriteRepository) RemoveByListing(ctx context.Context, listingID string) error {
	objID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, listingID)
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": objID}); err != nil {
		return fmt.Errorf("failed to remove favorites by listing: %w", err)
	}
	return nil
}
