package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
)

func newCatalog(t *testing.T) (*services.ItemService, []*models.Item) {
	t.Helper()
	svc := services.NewItemService(repositories.NewMemoryItemRepository(), services.ItemServiceOptions{})

	var out []*models.Item
	for _, it := range []models.Item{
		{Name: "Blue T-Shirt", Category: "clothing", Price: 15, Stock: 10},
		{Name: "Gaming Laptop", Category: "electronics", Price: 1200, Stock: 2, Extra: map[string]any{"brand": "Acme"}},
		{Name: "Coffee Mug", Category: "kitchen", Price: 8, Stock: 30},
	} {
		it := it
		created, err := svc.Create(context.Background(), &it)
		require.NoError(t, err)
		out = append(out, created)
	}
	return svc, out
}

func TestSchema_Items(t *testing.T) {
	svc, _ := newCatalog(t)
	s, err := New(svc, services.NewCartService(repositories.NewMemoryCartRepository(), nil, nil))
	require.NoError(t, err)

	res := gql.Execute(context.Background(), s, gql.Request{
		Query: `query($min: Float) { items(minPrice: $min, sortBy: "-price") { name price } }`,
		Variables: map[string]any{"min": 10.0},
	})
	require.Empty(t, res.Errors)

	items := res.Data.(map[string]any)["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Gaming Laptop", items[0].(map[string]any)["name"])
	assert.Equal(t, "Blue T-Shirt", items[1].(map[string]any)["name"])
}

func TestSchema_ItemAndCategories(t *testing.T) {
	svc, seeded := newCatalog(t)
	s, err := New(svc, services.NewCartService(repositories.NewMemoryCartRepository(), nil, nil))
	require.NoError(t, err)

	laptop := seeded[1]
	res := gql.Execute(context.Background(), s, gql.Request{
		Query:     `query($id: ID!) { item(id: $id) { id name extra } categories }`,
		Variables: map[string]any{"id": laptop.ID.Hex()},
	})
	require.Empty(t, res.Errors)

	data := res.Data.(map[string]any)
	item := data["item"].(map[string]any)
	assert.Equal(t, laptop.ID.Hex(), item["id"])
	assert.JSONEq(t, `{"brand":"Acme"}`, item["extra"].(string))
	assert.Equal(t, []any{"clothing", "electronics", "kitchen"}, data["categories"])
}

func TestSchema_ItemErrorsUseClientMessages(t *testing.T) {
	svc, _ := newCatalog(t)
	s, err := New(svc, services.NewCartService(repositories.NewMemoryCartRepository(), nil, nil))
	require.NoError(t, err)

	res := gql.Execute(context.Background(), s, gql.Request{Query: `{ item(id: "nope") { name } }`})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Invalid item id", res.Errors[0].Message)

	res = gql.Execute(context.Background(), s, gql.Request{Query: `{ item(id: "65f000000000000000000000") { name } }`})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Item not found", res.Errors[0].Message)
}

func TestSchema_CartNeedsIdentity(t *testing.T) {
	svc, seeded := newCatalog(t)
	cart := services.NewCartService(repositories.NewMemoryCartRepository(), nil, nil)
	s, err := New(svc, cart)
	require.NoError(t, err)

	res := gql.Execute(context.Background(), s, gql.Request{Query: `{ cart { itemId quantity } }`})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "unauthorized", res.Errors[0].Message)

	ctx := auth.WithIdentity(context.Background(), "user-1")
	_, err = cart.Add(ctx, "user-1", seeded[0].ID.Hex(), nil)
	require.NoError(t, err)

	res = gql.Execute(ctx, s, gql.Request{Query: `{ cart { itemId quantity } }`})
	require.Empty(t, res.Errors)
	entries := res.Data.(map[string]any)["cart"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, seeded[0].ID.Hex(), entries[0].(map[string]any)["itemId"])
	assert.Equal(t, 1, entries[0].(map[string]any)["quantity"])
}
