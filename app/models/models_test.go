package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestItem_JSONKeepsExtraFields(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "ignored", "_id": "ignored",
		"name": "Tee", "price": 19.5, "stock": 3, "category": "clothing",
		"color": "red", "sizes": ["S", "M"]
	}`), &it))

	assert.True(t, it.ID.IsZero())
	assert.Equal(t, "Tee", it.Name)
	assert.Equal(t, 19.5, it.Price)
	assert.Equal(t, 3, it.Stock)
	assert.Equal(t, map[string]any{"color": "red", "sizes": []any{"S", "M"}}, it.Extra)

	it.ID = primitive.NewObjectID()
	out, err := json.Marshal(it)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, it.ID.Hex(), back["id"])
	assert.Equal(t, "red", back["color"])
	assert.Equal(t, "clothing", back["category"])
	assert.NotContains(t, back, "_id")
}

func TestItem_RejectsWrongTypes(t *testing.T) {
	var it Item
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","stock":1.5}`), &it))
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","price":"cheap"}`), &it))
}

func TestItem_BSONInlinesExtra(t *testing.T) {
	it := Item{Name: "Laptop", Price: 999, Extra: map[string]any{"brand": "Acme"}}
	raw, err := bson.Marshal(it)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "Acme", doc["brand"])
	assert.NotContains(t, doc, "extra")

	var back Item
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, "Acme", back.Extra["brand"])
}

func TestItemPatch(t *testing.T) {
	var p ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price":0,"color":"blue","id":"x"}`), &p))

	assert.False(t, p.Empty())
	assert.True(t, p.Has("price"))
	assert.False(t, p.Has("name"))
	assert.False(t, p.Has("id"))
	assert.Equal(t, bson.D{{Key: "color", Value: "blue"}, {Key: "price", Value: 0.0}}, p.SetDoc())

	it := Item{Name: "Tee", Price: 10}
	p.Apply(&it)
	assert.Equal(t, "Tee", it.Name)
	assert.Equal(t, 0.0, it.Price)
	assert.Equal(t, "blue", it.Extra["color"])
}

func TestItemRef_DecodesStringAndObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	for name, stored := range map[string]any{"string": oid.Hex(), "objectid": oid} {
		t.Run(name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"user_id": "u1", "item_id": stored, "quantity": 2})
			require.NoError(t, err)

			var e CartEntry
			require.NoError(t, bson.Unmarshal(raw, &e))
			assert.Equal(t, ItemRef(oid.Hex()), e.ItemID)
			assert.Equal(t, 2, e.Quantity)
		})
	}
}

func TestCartEntry_EnrichAndDegrade(t *testing.T) {
	e := CartEntry{ID: primitive.NewObjectID(), UserID: "u1", ItemID: "abc", Quantity: 2}

	full, err := json.Marshal(e.Enrich(&Item{Name: "Tee", Price: 10, Stock: 0}))
	require.NoError(t, err)
	var fm map[string]any
	require.NoError(t, json.Unmarshal(full, &fm))
	assert.Equal(t, "Tee", fm["name"])
	assert.Equal(t, 0.0, fm["stock"])

	degraded, err := json.Marshal(e.Enrich(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"item_id":"abc","quantity":2}`, string(degraded))
}

func TestMergeLine(t *testing.T) {
	var lines []MergeLine
	require.NoError(t, json.Unmarshal([]byte(`[
		{"item_id":"a","quantity":2},
		{"id":"b","quantity":"3"},
		{"id":"c"},
		{"quantity":4},
		{"item_id":"d","quantity":"lots"}
	]`), &lines))

	assert.Equal(t, []MergeLine{
		{ItemID: "a", Quantity: 2},
		{ItemID: "b", Quantity: 3},
		{ItemID: "c", Quantity: 1},
		{ItemID: "", Quantity: 4},
		{ItemID: "d", Quantity: 0},
	}, lines)
}
