package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/collection"
)

// NewMemoryStore returns an in-process Store with the same semantics as the
// Mongo driver, including the unique (user_id, item_id) cart pair.
func NewMemoryStore() *Store {
	return &Store{
		Driver: "memory",
		Users:  NewMemoryUserRepository(),
		Items:  NewMemoryItemRepository(),
		Cart:   NewMemoryCartRepository(),
	}
}

// ─── Users ────────────────────────────────────────────────────────────────────

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// ─── Items ────────────────────────────────────────────────────────────────────

type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]models.Item // keyed by hex id
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[string]models.Item)}
}

func (r *MemoryItemRepository) Create(_ context.Context, it *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	if _, exists := r.items[it.ID.Hex()]; exists {
		return ErrDuplicate
	}
	r.items[it.ID.Hex()] = cloneItem(*it)
	return nil
}

func (r *MemoryItemRepository) FindByID(_ context.Context, id string) (*models.Item, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.get(oid.Hex())
}

func (r *MemoryItemRepository) FindByRef(_ context.Context, ref string) (*models.Item, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		ref = oid.Hex()
	}
	return r.get(ref)
}

func (r *MemoryItemRepository) get(key string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneItem(it)
	return &out, nil
}

func (r *MemoryItemRepository) Search(_ context.Context, q ItemQuery) ([]models.Item, error) {
	matched := collection.Filter(r.snapshot(), func(it models.Item) bool { return q.Matches(&it) })
	collection.SortBy(matched, func(a, b models.Item) bool { return q.Less(&a, &b) })
	return collection.Window(matched, q.Skip, q.Limit), nil
}

// snapshot copies every stored item.
func (r *MemoryItemRepository) snapshot() []models.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, cloneItem(it))
	}
	return out
}

func (r *MemoryItemRepository) Update(_ context.Context, id string, p *models.ItemPatch) (*models.Item, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	key := oid.Hex()

	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	it = cloneItem(it)
	p.Apply(&it)
	r.items[key] = it

	out := cloneItem(it)
	return &out, nil
}

func (r *MemoryItemRepository) Delete(_ context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	key := oid.Hex()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		return ErrNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *MemoryItemRepository) Categories(_ context.Context) ([]string, error) {
	names := collection.Map(r.snapshot(), func(it models.Item) string { return it.Category })
	out := collection.Unique(collection.Reject(names, func(c string) bool { return strings.TrimSpace(c) == "" }))
	sort.Strings(out)
	return out, nil
}

func (r *MemoryItemRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func cloneItem(it models.Item) models.Item {
	if it.Extra != nil {
		extra := make(map[string]any, len(it.Extra))
		for k, v := range it.Extra {
			extra[k] = v
		}
		it.Extra = extra
	}
	return it
}

// ─── Cart ─────────────────────────────────────────────────────────────────────

type cartKey struct{ user, item string }

type MemoryCartRepository struct {
	mu      sync.RWMutex
	entries map[cartKey]*models.CartEntry
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{entries: make(map[cartKey]*models.CartEntry)}
}

func (r *MemoryCartRepository) Add(_ context.Context, userID, itemID string, qty int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := cartKey{userID, itemID}
	e, ok := r.entries[k]
	if !ok {
		e = &models.CartEntry{ID: primitive.NewObjectID(), UserID: userID, ItemID: models.ItemRef(itemID)}
		r.entries[k] = e
	}
	e.Quantity += qty
	return e.ID.Hex(), nil
}

func (r *MemoryCartRepository) ListByUser(_ context.Context, userID string) ([]models.CartEntry, error) {
	r.mu.RLock()
	out := make([]models.CartEntry, 0)
	for k, e := range r.entries {
		if k.user == userID {
			out = append(out, *e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *MemoryCartRepository) SetQuantity(_ context.Context, userID, itemID string, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[cartKey{userID, itemID}]
	if ok {
		e.Quantity = qty
	}
	return ok, nil
}

func (r *MemoryCartRepository) Remove(_ context.Context, userID, itemID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := cartKey{userID, itemID}
	_, ok := r.entries[k]
	delete(r.entries, k)
	return ok, nil
}
