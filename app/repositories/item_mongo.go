package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

type MongoItemRepository struct {
	col *mongo.Collection
}

func NewMongoItemRepository(col *mongo.Collection) *MongoItemRepository {
	return &MongoItemRepository{col: col}
}

func (r *MongoItemRepository) Create(ctx context.Context, it *models.Item) error {
	defer metrics.ObserveStoreOp(database.Items, "insert", time.Now())

	res, err := r.col.InsertOne(ctx, it)
	if err != nil {
		return translate("items: insert", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		it.ID = oid
	}
	return nil
}

func (r *MongoItemRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoItemRepository) FindByRef(ctx context.Context, ref string) (*models.Item, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		it, err := r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
		if !errors.Is(err, ErrNotFound) {
			return it, err
		}
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: ref}})
}

func (r *MongoItemRepository) findOne(ctx context.Context, filter bson.D) (*models.Item, error) {
	defer metrics.ObserveStoreOp(database.Items, "find_one", time.Now())

	var it models.Item
	if err := r.col.FindOne(ctx, filter).Decode(&it); err != nil {
		return nil, translate("items: find", err)
	}
	return &it, nil
}

func (r *MongoItemRepository) Search(ctx context.Context, q ItemQuery) ([]models.Item, error) {
	defer metrics.ObserveStoreOp(database.Items, "find", time.Now())

	opts := options.Find().SetSort(q.Sort()).SetSkip(q.Skip)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := r.col.Find(ctx, q.Filter(), opts)
	if err != nil {
		return nil, translate("items: search", err)
	}

	items := make([]models.Item, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, translate("items: decode", err)
	}
	return items, nil
}

func (r *MongoItemRepository) Update(ctx context.Context, id string, p *models.ItemPatch) (*models.Item, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	defer metrics.ObserveStoreOp(database.Items, "update", time.Now())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var it models.Item
	err = r.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: p.SetDoc()}},
		opts,
	).Decode(&it)
	if err != nil {
		return nil, translate("items: update", err)
	}
	return &it, nil
}

func (r *MongoItemRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	defer metrics.ObserveStoreOp(database.Items, "delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return translate("items: delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoItemRepository) Categories(ctx context.Context) ([]string, error) {
	defer metrics.ObserveStoreOp(database.Items, "distinct", time.Now())

	values, err := r.col.Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, translate("items: distinct", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MongoItemRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("items: count: %w", err)
	}
	return n, nil
}
