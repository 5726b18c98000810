package repositories

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/storefront/pkg/database"
)

// NewMongoStore returns the Mongo-backed Store. Close disconnects m.
func NewMongoStore(m *database.Mongo) *Store {
	db := m.DB
	return &Store{
		Driver: "mongo",
		Users:  NewMongoUserRepository(db.Collection(database.Users)),
		Items:  NewMongoItemRepository(db.Collection(database.Items)),
		Cart:   NewMongoCartRepository(db.Collection(database.Cart)),
		ping:   m.Ping,
		close:  m.Disconnect,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// translate maps driver errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
