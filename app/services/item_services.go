package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

const categoriesKey = "items:categories"

func itemKey(id string) string { return "items:" + id }

// cachedItem keeps the id next to the item; Item's JSON form drops
// client-supplied ids on decode.
type cachedItem struct {
	ID   string      `json:"id"`
	Item models.Item `json:"item"`
}

// ItemService is catalog management plus the listing entry point.
type ItemService struct {
	items  repositories.ItemRepository
	cache  cache.Store
	ttl    time.Duration
	events EventBus
	disk   storage.Disk
}

type ItemServiceOptions struct {
	Cache    cache.Store
	CacheTTL time.Duration
	Events   EventBus
	Disk     storage.Disk
}

func NewItemService(items repositories.ItemRepository, opts ItemServiceOptions) *ItemService {
	c := opts.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ItemService{
		items:  items,
		cache:  c,
		ttl:    ttl,
		events: busOrNoop(opts.Events),
		disk:   opts.Disk,
	}
}

// List runs a catalog listing.
func (s *ItemService) List(ctx context.Context, p CatalogParams) ([]models.Item, error) {
	q, err := BuildCatalogQuery(p)
	if err != nil {
		return nil, err
	}
	items, err := s.items.Search(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *ItemService) Create(ctx context.Context, it *models.Item) (*models.Item, error) {
	if errs := validate.Struct(it); validate.HasErrors(errs) {
		return nil, apperr.Validation(validate.Summary(errs))
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, apperr.Internal(err)
	}

	s.forget(ctx, categoriesKey)
	s.events.FireAsync(ctx, event.New(EventItemCreated, *it))
	return it, nil
}

// Get returns one item; malformed ids are BadID, missing ones NotFound.
func (s *ItemService) Get(ctx context.Context, id string) (*models.Item, error) {
	id = canonicalID(id)
	var cached cachedItem
	if s.cache.Get(ctx, itemKey(id), &cached) && cached.ID == id {
		it := cached.Item
		it.ID, _ = parseOID(id)
		return &it, nil
	}

	it, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, itemErr(err)
	}

	if err := s.cache.Set(ctx, itemKey(id), cachedItem{ID: id, Item: *it}, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache set failed", "key", itemKey(id), "error", err.Error())
	}
	return it, nil
}

func (s *ItemService) Update(ctx context.Context, id string, p *models.ItemPatch) (*models.Item, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, itemErr(repositories.ErrInvalidID)
	}
	id = oid.Hex()
	if p == nil || p.Empty() {
		return nil, apperr.Validation("no fields to update")
	}
	if err := validatePatch(p); err != nil {
		return nil, err
	}

	it, err := s.items.Update(ctx, id, p)
	if err != nil {
		return nil, itemErr(err)
	}

	s.forget(ctx, itemKey(id), categoriesKey)
	s.events.FireAsync(ctx, event.New(EventItemUpdated, *it))
	return it, nil
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	id = canonicalID(id)
	if err := s.items.Delete(ctx, id); err != nil {
		return itemErr(err)
	}

	s.forget(ctx, itemKey(id), categoriesKey)
	s.events.FireAsync(ctx, event.New(EventItemDeleted, ItemDeleted{ID: id}))
	return nil
}

// Categories returns the distinct non-empty categories, sorted.
func (s *ItemService) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	if s.cache.Get(ctx, categoriesKey, &cats) {
		return cats, nil
	}

	cats, err := s.items.Categories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.cache.Set(ctx, categoriesKey, cats, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache set failed", "key", categoriesKey, "error", err.Error())
	}
	return cats, nil
}

// AttachImage stores an uploaded image on the configured disk and records
// its public URL as the item's image.
func (s *ItemService) AttachImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*models.Item, error) {
	if s.disk == nil {
		return nil, apperr.Internal(errors.New("items: no storage disk configured"))
	}
	id = canonicalID(id)
	if _, err := s.items.FindByID(ctx, id); err != nil {
		return nil, itemErr(err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("image must be an image file")
	}

	key := path.Join("items", id, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	if err := s.disk.Put(ctx, key, r, contentType); err != nil {
		return nil, apperr.Internal(err)
	}

	patch := &models.ItemPatch{
		Fields:  models.Item{Image: s.disk.URL(key)},
		Present: map[string]bool{"image": true},
	}
	return s.Update(ctx, id, patch)
}

func (s *ItemService) forget(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "keys", keys, "error", err.Error())
	}
}

func validatePatch(p *models.ItemPatch) error {
	if p.Has("price") && p.Fields.Price < 0 {
		return apperr.Validation("The price must be greater than or equal to 0.")
	}
	if p.Has("stock") && p.Fields.Stock < 0 {
		return apperr.Validation("The stock must be greater than or equal to 0.")
	}
	return nil
}

func parseOID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

// canonicalID lowercases a well-formed hex id so cache keys match across
// spellings. Malformed ids pass through for the store to reject.
func canonicalID(id string) string {
	if oid, err := parseOID(id); err == nil {
		return oid.Hex()
	}
	return id
}

func itemErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInvalidID):
		return apperr.BadID("Invalid item id")
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("Item not found")
	default:
		return apperr.Internal(err)
	}
}
