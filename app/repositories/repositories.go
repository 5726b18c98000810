// Package repositories holds the document-store access layer.
//
// Each collection has an interface and two drivers: Mongo (production) and
// Memory (local development and tests). Both return the sentinel errors
// below so services can classify failures without knowing the driver.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
)

var (
	ErrNotFound  = errors.New("repositories: not found")
	ErrInvalidID = errors.New("repositories: invalid id")
	ErrDuplicate = errors.New("repositories: duplicate key")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type ItemRepository interface {
	Create(ctx context.Context, it *models.Item) error
	FindByID(ctx context.Context, id string) (*models.Item, error)
	// FindByRef resolves a cart reference: ObjectID form first, then the raw
	// string as stored.
	FindByRef(ctx context.Context, ref string) (*models.Item, error)
	Search(ctx context.Context, q ItemQuery) ([]models.Item, error)
	Update(ctx context.Context, id string, p *models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type CartRepository interface {
	// Add increments the (user, item) entry by qty, creating it when absent,
	// and returns the entry id.
	Add(ctx context.Context, userID, itemID string, qty int) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.CartEntry, error)
	// SetQuantity reports whether an entry matched.
	SetQuantity(ctx context.Context, userID, itemID string, qty int) (bool, error)
	// Remove reports whether an entry was deleted.
	Remove(ctx context.Context, userID, itemID string) (bool, error)
}

// Store bundles the repositories of one driver.
type Store struct {
	Driver string
	Users  UserRepository
	Items  ItemRepository
	Cart   CartRepository

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping checks the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backing store.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
