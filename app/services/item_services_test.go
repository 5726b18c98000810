package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func newItemService(t *testing.T) (*ItemService, *repositories.MemoryItemRepository, *recordingBus) {
	t.Helper()
	repo := repositories.NewMemoryItemRepository()
	bus := &recordingBus{}
	disk, err := storage.NewLocal(t.TempDir(), "/storage")
	require.NoError(t, err)

	svc := NewItemService(repo, ItemServiceOptions{Cache: cache.NewMemory(), Events: bus, Disk: disk})
	return svc, repo, bus
}

func seed(t *testing.T, svc *ItemService, items ...models.Item) []*models.Item {
	t.Helper()
	out := make([]*models.Item, 0, len(items))
	for i := range items {
		it, err := svc.Create(context.Background(), &items[i])
		require.NoError(t, err)
		out = append(out, it)
	}
	return out
}

func names(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestItemService_CreateValidates(t *testing.T) {
	svc, _, bus := newItemService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Item{Name: "Mug", Price: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	it, err := svc.Create(ctx, &models.Item{Name: "Mug", Price: 9.5, Stock: 3})
	require.NoError(t, err)
	assert.False(t, it.ID.IsZero())
	assert.Equal(t, []string{EventItemCreated}, bus.names())
}

func TestItemService_CreateWithoutName(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()

	var it models.Item
	require.NoError(t, json.Unmarshal([]byte(`{"description":"plain tee","category":"clothing","price":5}`), &it))
	created, err := svc.Create(ctx, &it)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Equal(t, "plain tee", got.Description)

	var p models.ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":""}`), &p))
	_, err = svc.Update(ctx, created.ID.Hex(), &p)
	assert.NoError(t, err)
}

func TestItemService_UppercaseIDSharesCache(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()
	id := seed(t, svc, models.Item{Name: "Kettle", Price: 40})[0].ID.Hex()
	upper := strings.ToUpper(id)

	got, err := svc.Get(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID.Hex())

	var p models.ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price":35}`), &p))
	_, err = svc.Update(ctx, id, &p)
	require.NoError(t, err)

	got, err = svc.Get(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.Price)

	require.NoError(t, svc.Delete(ctx, upper))
	_, err = svc.Get(ctx, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestItemService_GetReturnsAllFields(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()

	var in models.Item
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Lamp","price":20,"color":"red"}`), &in))
	created := seed(t, svc, in)[0]

	for i := 0; i < 2; i++ { // second read comes from the cache
		got, err := svc.Get(ctx, created.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "red", got.Extra["color"])
	}
}

func TestItemService_GetErrors(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "xyz")
	assert.True(t, apperr.Is(err, apperr.KindBadID))
	assert.Equal(t, "Invalid item id", apperr.MessageOf(err))

	_, err = svc.Get(ctx, "65f000000000000000000000")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "Item not found", apperr.MessageOf(err))
}

func TestItemService_UpdateInvalidatesCache(t *testing.T) {
	svc, _, bus := newItemService(t)
	ctx := context.Background()
	it := seed(t, svc, models.Item{Name: "Kettle", Price: 30, Category: "kitchen"})[0]
	id := it.ID.Hex()

	_, err := svc.Get(ctx, id)
	require.NoError(t, err)
	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen"}, cats)

	var p models.ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price":25,"category":"home"}`), &p))
	updated, err := svc.Update(ctx, id, &p)
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, "Kettle", updated.Name)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Price)

	cats, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, cats)
	assert.Contains(t, bus.names(), EventItemUpdated)
}

func TestItemService_UpdateErrors(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()
	id := seed(t, svc, models.Item{Name: "Fan", Price: 10})[0].ID.Hex()

	_, err := svc.Update(ctx, "bad", &models.ItemPatch{})
	assert.True(t, apperr.Is(err, apperr.KindBadID))

	_, err = svc.Update(ctx, id, &models.ItemPatch{})
	assert.Equal(t, "no fields to update", apperr.MessageOf(err))

	var p models.ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"stock":-2}`), &p))
	_, err = svc.Update(ctx, id, &p)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	var ok models.ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"stock":2}`), &ok))
	_, err = svc.Update(ctx, "65f000000000000000000000", &ok)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestItemService_Delete(t *testing.T) {
	svc, _, bus := newItemService(t)
	ctx := context.Background()
	id := seed(t, svc, models.Item{Name: "Chair", Price: 40})[0].ID.Hex()

	_, err := svc.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "cached copy must be dropped")

	err = svc.Delete(ctx, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, bus.names(), EventItemDeleted)
}

func TestItemService_ListFiltersSortsAndPages(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()
	seed(t, svc,
		models.Item{Name: "Blue T-Shirt", Category: "clothing", Price: 15},
		models.Item{Name: "Gaming Laptop", Category: "electronics", Price: 1200},
		models.Item{Name: "Desktop Computer", Category: "electronics", Price: 900},
		models.Item{Name: "Coffee Mug", Category: "kitchen", Price: 8},
		models.Item{Name: "Plain Shirt", Category: "clothing", Price: 25},
	)

	got, err := svc.List(ctx, CatalogParams{NavbarSearch: "tshirt"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Blue T-Shirt", "Plain Shirt"}, names(got))

	got, err = svc.List(ctx, CatalogParams{NavbarSearch: "laptop", SortBy: "-price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gaming Laptop", "Desktop Computer"}, names(got))

	got, err = svc.List(ctx, CatalogParams{MinPrice: "10", MaxPrice: "100", SortBy: "price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue T-Shirt", "Plain Shirt"}, names(got))

	got, err = svc.List(ctx, CatalogParams{Category: "electronics", SortBy: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Desktop Computer", "Gaming Laptop"}, names(got))

	got, err = svc.List(ctx, CatalogParams{PageSize: "2", Page: "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain Shirt"}, names(got))

	got, err = svc.List(ctx, CatalogParams{Page: "9"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.List(ctx, CatalogParams{Page: "abc"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestItemService_SearchTreatsInputLiterally(t *testing.T) {
	svc, _, _ := newItemService(t)
	seed(t, svc, models.Item{Name: "Plain", Price: 1})

	got, err := svc.List(context.Background(), CatalogParams{NavbarSearch: ".*"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestItemService_AttachImage(t *testing.T) {
	svc, _, _ := newItemService(t)
	ctx := context.Background()
	id := seed(t, svc, models.Item{Name: "Poster", Price: 5})[0].ID.Hex()

	_, err := svc.AttachImage(ctx, id, "notes.txt", "text/plain", strings.NewReader("hi"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	it, err := svc.AttachImage(ctx, id, "Poster.PNG", "image/png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(it.Image, "/storage/items/"+id+"/"))
	assert.True(t, strings.HasSuffix(it.Image, ".png"))

	_, err = svc.AttachImage(ctx, "65f000000000000000000000", "a.png", "image/png", strings.NewReader("x"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
