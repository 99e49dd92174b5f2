package mongodb

import (
	"errors"
	"regexp"
	"strings"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// earthRadiusKm converts a radius in kilometers to the radians $centerSphere
// expects.
const earthRadiusKm = 6378.1

// buildBaseQuery translates the non-geo parts of a filter. Public scope is
// pinned to active listings; "mine" scope filters by owner and leaves status
// to the caller.
func buildBaseQuery(f domain.SearchFilter) bson.M {
	query := bson.M{}

	if f.Scope == domain.ScopeMine {
		query["owner_email"] = f.OwnerEmail
		if f.Status != "" {
			query["status"] = f.Status
		}
	} else {
		query["status"] = domain.StatusActive
	}

	if f.Term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Term), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"headline": re},
			bson.M{"description": re},
		}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}

	// Name filters are case-insensitive exact matches. They are absent
	// whenever a reference point was supplied (dropped at normalization).
	if f.Locality != "" {
		query["locality"] = exactFold(f.Locality)
	}
	if f.Region != "" {
		query["region"] = exactFold(f.Region)
	}
	if f.Area != "" {
		query["area"] = exactFold(f.Area)
	}
	return query
}

func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

// withNearClause adds proximity ranking: $near returns documents in distance
// order, which is the only ordering applied to geo queries.
func withNearClause(query bson.M, f domain.SearchFilter) bson.M {
	query["location"] = bson.M{
		"$near": bson.M{
			"$geometry": bson.M{
				"type":        "Point",
				"coordinates": []float64{f.Near.Longitude, f.Near.Latitude},
			},
			"$maxDistance": f.RadiusKm * 1000,
		},
	}
	return query
}

// withWithinClause is the counting companion of withNearClause: $near is not
// permitted in CountDocuments, so totals use an equivalent $geoWithin circle.
func withWithinClause(query bson.M, f domain.SearchFilter) bson.M {
	query["location"] = bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{
				[]float64{f.Near.Longitude, f.Near.Latitude},
				f.RadiusKm / earthRadiusKm,
			},
		},
	}
	return query
}

// rankedSort is the ordering for every non-geo query. Post-sweep, a set
// promotion flag implies an unexpired window, so the flag sort is exactly the
// tier sort: portal promotions first, then plain promotions, then the rest by
// recency with the id as a deterministic tiebreak.
func rankedSort() bson.D {
	return bson.D{
		{Key: "promoted_in_portal", Value: -1},
		{Key: "promoted", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}
}

// publicProjection hides the owner identity from anything a public search
// returns.
func publicProjection() bson.M {
	return bson.M{"owner_email": 0}
}

// geo index error codes: 291 NoQueryExecutionPlans, 27 IndexNotFound, 17007
// legacy "unable to find index for $geoNear query".
var geoIndexErrorCodes = map[int32]bool{291: true, 27: true, 17007: true}

// isGeoIndexUnavailable classifies a query failure as the structural
// index-absence case that the planner recovers from, as opposed to a data or
// infrastructure error that must surface.
func isGeoIndexUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && geoIndexErrorCodes[cmdErr.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "$geonear") ||
		strings.Contains(msg, "2dsphere") ||
		strings.Contains(msg, "unable to find index")
}
