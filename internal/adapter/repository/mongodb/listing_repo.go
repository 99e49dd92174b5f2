package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

type ListingRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewListingRepository(db *mongo.Database, logger *zap.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingCollectionName),
		logger:     logger,
	}
}

// EnsureIndexes creates the indexes the search paths rely on. The 2dsphere
// index may legitimately be absent on fresh or partial deployments; proximity
// queries degrade to recency ordering until it exists.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "owner_email", Value: 1}}},
		{Keys: bson.D{{Key: "promoted_until", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}
	return nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) (string, error) {
	doc, err := toListingDocument(listing)
	if err != nil {
		return "", err
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert listing: %w", err)
	}
	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return fmt.Errorf("%w: listing id is required for update", domain.ErrInvalidInput)
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, id)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, id)
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing by id: %w", err)
	}
	return toDomainListing(&doc), nil
}

// Search executes a normalized filter. A proximity query that fails because
// the geo index is structurally unavailable is retried exactly once without
// the geo clause, under recency ordering; that failure never reaches the
// caller. Any other failure surfaces as a query error.
func (r *ListingRepository) Search(ctx context.Context, filter domain.SearchFilter) (*domain.SearchResult, error) {
	ctx, span := otel.Tracer("mongodb").Start(ctx, "ListingRepository.Search")
	defer span.End()

	result, err := searchWithFallback(filter.Near != nil,
		func(useGeo bool) (*domain.SearchResult, error) {
			return r.runSearch(ctx, filter, useGeo)
		},
		func(cause error) {
			r.logger.Warn("Geo index unavailable; retrying search without proximity ranking",
				zap.Error(cause),
				zap.Float64("radius_km", filter.RadiusKm),
			)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return result, nil
}

// searchWithFallback runs one attempt of run and, when that attempt was a
// proximity query rejected for a structurally missing geo index, retries
// exactly once without the geo clause. Any other error, and an error from the
// retry itself, surfaces unchanged. onFallback fires once per degradation so
// the caller can record it.
func searchWithFallback(useGeo bool, run func(useGeo bool) (*domain.SearchResult, error), onFallback func(error)) (*domain.SearchResult, error) {
	result, err := run(useGeo)
	if err != nil && useGeo && isGeoIndexUnavailable(err) {
		onFallback(err)
		result, err = run(false)
	}
	return result, err
}

func (r *ListingRepository) runSearch(ctx context.Context, filter domain.SearchFilter, useGeo bool) (*domain.SearchResult, error) {
	query := buildBaseQuery(filter)
	countFilter := buildBaseQuery(filter)
	if useGeo && filter.Near != nil {
		withNearClause(query, filter)
		withWithinClause(countFilter, filter)
	}

	findOpts := options.Find().
		SetSkip(filter.Skip()).
		SetLimit(int64(filter.Limit))
	if !useGeo || filter.Near == nil {
		// Proximity is the sort on geo queries; everything else is ranked.
		findOpts.SetSort(rankedSort())
	}
	if filter.Scope != domain.ScopeMine {
		findOpts.SetProjection(publicProjection())
	}

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	total, err := r.collection.CountDocuments(ctx, countFilter)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResult{
		Listings:   toDomainListings(docs),
		TotalItems: total,
		TotalPages: domain.TotalPages(total, filter.Limit),
	}, nil
}

// SetPromotion writes the full promotion triple in one update; there is no
// read-modify-write gap for concurrent toggles to exploit.
func (r *ListingRepository) SetPromotion(ctx context.Context, id string, promoted, inPortal bool, until *time.Time) (*domain.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, id)
	}

	set := bson.M{
		"promoted":           promoted,
		"promoted_in_portal": inPortal,
		"updated_at":         time.Now(),
	}
	update := bson.M{"$set": set}
	if until != nil {
		set["promoted_until"] = *until
	} else {
		update["$unset"] = bson.M{"promoted_until": ""}
	}

	var doc listingDocument
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to set promotion state: %w", err)
	}
	return toDomainListing(&doc), nil
}

// ClearExpiredPromotions is the lazy sweep: one bulk update that unpromotes
// everything whose window has passed. Safe to race; each run only moves state
// toward unpromoted based on a timestamp comparison.
func (r *ListingRepository) ClearExpiredPromotions(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"promoted": true},
			bson.M{"promoted_in_portal": true},
		},
		"promoted_until": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set":   bson.M{"promoted": false, "promoted_in_portal": false},
		"$unset": bson.M{"promoted_until": ""},
	}

	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired promotions: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *ListingRepository) SetModeration(ctx context.Context, id string, status domain.ListingStatus, reviewed bool) (*domain.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing id %q", domain.ErrInvalidInput, id)
	}

	var doc listingDocument
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{
			"status":     status,
			"reviewed":   reviewed,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to set moderation state: %w", err)
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) FindPortalPromoted(ctx context.Context, now time.Time, limit int) ([]*domain.Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "promoted_until", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(publicProjection())

	cursor, err := r.collection.Find(ctx, bson.M{
		"status":             domain.StatusActive,
		"promoted_in_portal": true,
		"promoted_until":     bson.M{"$gt": now},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find portal promotions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode portal promotions: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) FindActiveFill(ctx context.Context, limit int, excludeIDs []string) ([]*domain.Listing, error) {
	filter := bson.M{
		"status":             domain.StatusActive,
		"promoted":           false,
		"promoted_in_portal": false,
	}
	if len(excludeIDs) > 0 {
		objIDs := make([]primitive.ObjectID, 0, len(excludeIDs))
		for _, id := range excludeIDs {
			objID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				continue
			}
			objIDs = append(objIDs, objID)
		}
		filter["_id"] = bson.M{"$nin": objIDs}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(publicProjection())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find portal fill: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode portal fill: %w", err)
	}
	return toDomainListings(docs), nil
}
