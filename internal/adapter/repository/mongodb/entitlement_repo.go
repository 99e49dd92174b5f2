package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const subscriptionCollectionName = "subscriptions"

// EntitlementRepository reads the subscription facts written by the billing
// system. This service only consumes the expiry; it never writes here.
type EntitlementRepository struct {
	collection *mongo.Collection
}

func NewEntitlementRepository(db *mongo.Database) *EntitlementRepository {
	return &EntitlementRepository{collection: db.Collection(subscriptionCollectionName)}
}

type subscriptionDocument struct {
	OwnerEmail string    `bson:"owner_email"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

// ExpiryFor returns the latest subscription expiry for the principal, or nil
// when no subscription exists at all.
func (r *EntitlementRepository) ExpiryFor(ctx context.Context, ownerEmail string) (*time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "expires_at", Value: -1}})

	var doc subscriptionDocument
	err := r.collection.FindOne(ctx, bson.M{"owner_email": ownerEmail}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	return &doc.ExpiresAt, nil
}
