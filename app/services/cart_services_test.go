package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

const (
	userA = "65f0000000000000000000aa"
	userB = "65f0000000000000000000bb"
)

func newCartService(t *testing.T) (*CartService, *repositories.Store, *recordingBus) {
	t.Helper()
	store := repositories.NewMemoryStore()
	bus := &recordingBus{}
	return NewCartService(store.Cart, store.Items, bus), store, bus
}

func TestCartAdd_AccumulatesQuantity(t *testing.T) {
	svc, _, bus := newCartService(t)
	ctx := context.Background()

	id1, err := svc.Add(ctx, userA, "item-1", intp(2))
	require.NoError(t, err)
	id2, err := svc.Add(ctx, userA, "item-1", intp(3))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	entries, err := svc.List(ctx, userA)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Quantity)
	assert.Equal(t, []string{EventCartAdded, EventCartAdded}, bus.names())
}

func TestCartAdd_DefaultsAndValidation(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, userA, "item-1", nil)
	require.NoError(t, err)
	entries, _ := svc.List(ctx, userA)
	assert.Equal(t, 1, entries[0].Quantity)

	_, err = svc.Add(ctx, userB, "  ", intp(1))
	require.NoError(t, err)
	views, err := svc.ListEnriched(ctx, userB)
	require.NoError(t, err)
	assert.Equal(t, []models.CartView{{ItemID: "", Quantity: 1}}, views)

	_, err = svc.Add(ctx, userA, "item-1", intp(0))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, userA, "item-1", intp(-4))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCartAdd_ConcurrentAddsKeepSingleEntry(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, userA, "item-race", intp(2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := svc.List(ctx, userA)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, workers*2, entries[0].Quantity)
}

func TestCart_UsersAreIsolated(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, userA, "item-1", intp(1))
	require.NoError(t, err)

	entries, err := svc.List(ctx, userB)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, svc.Remove(ctx, userB, "item-1"))
	require.NoError(t, svc.Update(ctx, userB, "item-1", intp(9)))

	entries, _ = svc.List(ctx, userA)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Quantity)
}

func TestCartUpdate(t *testing.T) {
	svc, _, bus := newCartService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, userA, "item-1", intp(4))
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, userA, "item-1", intp(0)))
	entries, _ := svc.List(ctx, userA)
	require.Len(t, entries, 1, "zero quantity keeps the entry")
	assert.Equal(t, 0, entries[0].Quantity)

	// A missing entry is not created.
	require.NoError(t, svc.Update(ctx, userA, "item-2", intp(3)))
	entries, _ = svc.List(ctx, userA)
	assert.Len(t, entries, 1)

	err = svc.Update(ctx, userA, "item-1", nil)
	assert.Equal(t, "quantity is required", apperr.MessageOf(err))
	err = svc.Update(ctx, userA, "item-1", intp(-1))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, []string{EventCartAdded, EventCartUpdated}, bus.names())
}

func TestCartRemove(t *testing.T) {
	svc, _, bus := newCartService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, userA, "item-1", intp(1))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, userA, "item-1"))
	require.NoError(t, svc.Remove(ctx, userA, "item-1"), "removing nothing succeeds")

	entries, _ := svc.List(ctx, userA)
	assert.Empty(t, entries)
	assert.Equal(t, []string{EventCartAdded, EventCartRemoved}, bus.names())

	err = svc.Remove(ctx, userA, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCartListEnriched(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	lamp := &models.Item{Name: "Lamp", Price: 20, Stock: 4, Image: "/img/lamp.png"}
	require.NoError(t, store.Items.Create(ctx, lamp))

	_, err := svc.Add(ctx, userA, lamp.ID.Hex(), intp(2))
	require.NoError(t, err)
	_, err = svc.Add(ctx, userA, "65f000000000000000000099", intp(1))
	require.NoError(t, err)
	_, err = svc.Add(ctx, userA, "legacy-sku", intp(1))
	require.NoError(t, err)

	views, err := svc.ListEnriched(ctx, userA)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byItem := make(map[string]models.CartView, len(views))
	for _, v := range views {
		byItem[v.ItemID] = v
	}

	full := byItem[lamp.ID.Hex()]
	require.NotNil(t, full.Name)
	assert.Equal(t, "Lamp", *full.Name)
	assert.Equal(t, 20.0, *full.Price)
	assert.Equal(t, 4, *full.Stock)
	assert.Equal(t, 2, full.Quantity)
	assert.Equal(t, userA, full.UserID)

	for _, ref := range []string{"65f000000000000000000099", "legacy-sku"} {
		v := byItem[ref]
		assert.Nil(t, v.Name, ref)
		assert.Empty(t, v.ID, ref)

		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"item_id":"`+ref+`","quantity":1}`, string(b))
	}
}

func TestCartMerge(t *testing.T) {
	svc, _, bus := newCartService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, userA, "item-1", intp(1))
	require.NoError(t, err)

	var lines []models.MergeLine
	require.NoError(t, json.Unmarshal([]byte(`[
		{"item_id":"item-1","quantity":2},
		{"id":"item-2","quantity":"3"},
		{"quantity":5},
		{"item_id":"item-3","quantity":0},
		{"item_id":"item-4","quantity":"lots"}
	]`), &lines))

	merged, err := svc.Merge(ctx, userA, lines)
	require.NoError(t, err)
	assert.Equal(t, 2, merged)

	entries, err := svc.List(ctx, userA)
	require.NoError(t, err)
	got := make(map[string]int, len(entries))
	for _, e := range entries {
		got[e.ItemID.String()] = e.Quantity
	}
	assert.Equal(t, map[string]int{"item-1": 3, "item-2": 3}, got)
	assert.Equal(t, EventCartMerged, bus.names()[len(bus.names())-1])

	merged, err = svc.Merge(ctx, userA, nil)
	require.NoError(t, err)
	assert.Zero(t, merged)
}
