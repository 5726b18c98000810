package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type MongoCartRepository struct {
	col *mongo.Collection
}

func NewMongoCartRepository(col *mongo.Collection) *MongoCartRepository {
	return &MongoCartRepository{col: col}
}

func pair(userID, itemID string) bson.D {
	return bson.D{{Key: "user_id", Value: userID}, {Key: "item_id", Value: itemID}}
}

// Add is a single FindOneAndUpdate upsert. Two concurrent first-adds can
// both miss and both try to insert; the unique (user_id, item_id) index
// rejects the loser, whose retry then matches the winner's document.
func (r *MongoCartRepository) Add(ctx context.Context, userID, itemID string, qty int) (string, error) {
	defer metrics.ObserveStoreOp(database.Cart, "upsert", time.Now())

	id, err := r.upsert(ctx, userID, itemID, qty)
	if errors.Is(err, ErrDuplicate) {
		id, err = r.upsert(ctx, userID, itemID, qty)
	}
	return id, err
}

func (r *MongoCartRepository) upsert(ctx context.Context, userID, itemID string, qty int) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	var doc models.CartEntry
	err := r.col.FindOneAndUpdate(ctx,
		pair(userID, itemID),
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: qty}}}},
		opts,
	).Decode(&doc)
	if err != nil {
		return "", translate("cart: upsert", err)
	}
	return doc.ID.Hex(), nil
}

func (r *MongoCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartEntry, error) {
	defer metrics.ObserveStoreOp(database.Cart, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate("cart: list", err)
	}

	entries := make([]models.CartEntry, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, translate("cart: decode", err)
	}
	return entries, nil
}

func (r *MongoCartRepository) SetQuantity(ctx context.Context, userID, itemID string, qty int) (bool, error) {
	defer metrics.ObserveStoreOp(database.Cart, "update", time.Now())

	res, err := r.col.UpdateOne(ctx, pair(userID, itemID),
		bson.D{{Key: "$set", Value: bson.D{{Key: "quantity", Value: qty}}}})
	if err != nil {
		return false, translate("cart: update", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoCartRepository) Remove(ctx context.Context, userID, itemID string) (bool, error) {
	defer metrics.ObserveStoreOp(database.Cart, "delete", time.Now())

	res, err := r.col.DeleteOne(ctx, pair(userID, itemID))
	if err != nil {
		return false, translate("cart: delete", err)
	}
	return res.DeletedCount > 0, nil
}
