package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec names the indexes of one collection.
type IndexSpec struct {
	Collection string
	Models     []mongo.IndexModel
}

// Indexes is the full index set of the application. The cart unique index
// backs the atomic Add upsert: a concurrent insert for the same
// (user_id, item_id) fails with a duplicate key instead of creating a row.
func Indexes() []IndexSpec {
	return []IndexSpec{
		{Collection: Users, Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("username_unique").SetUnique(true)},
		}},
		{Collection: Items, Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
			{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("price")},
		}},
		{Collection: Cart, Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}},
				Options: options.Index().SetName("user_item_unique").SetUnique(true),
			},
		}},
	}
}

// EnsureIndexes creates every index in Indexes. Existing indexes with the
// same definition are left untouched by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	var created []string
	for _, spec := range Indexes() {
		names, err := db.Collection(spec.Collection).Indexes().CreateMany(ctx, spec.Models)
		if err != nil {
			return created, fmt.Errorf("database: create indexes on %s: %w", spec.Collection, err)
		}
		for _, n := range names {
			created = append(created, spec.Collection+"."+n)
		}
	}
	return created, nil
}
