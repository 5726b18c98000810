package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemRef is a cart entry's reference to an item. It is written as a string
// but decodes from documents that stored it as an ObjectID as well.
type ItemRef string

// UnmarshalBSONValue accepts string and ObjectID representations.
func (r *ItemRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*r = ItemRef(raw.StringValue())
	case bsontype.ObjectID:
		*r = ItemRef(raw.ObjectID().Hex())
	case bsontype.Null, bsontype.Undefined:
		*r = ""
	default:
		return fmt.Errorf("cart: item_id has unsupported type %s", t)
	}
	return nil
}

func (r ItemRef) String() string { return string(r) }

// CartEntry is one (user, item) line of a cart.
type CartEntry struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	UserID   string             `bson:"user_id"`
	ItemID   ItemRef            `bson:"item_id"`
	Quantity int                `bson:"quantity"`
}

func (e CartEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string `json:"id"`
		UserID   string `json:"user_id"`
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}{e.ID.Hex(), e.UserID, string(e.ItemID), e.Quantity})
}

// CartView is an entry enriched with the referenced item's display fields.
// When the item no longer exists only ItemID and Quantity are set.
type CartView struct {
	ID       string   `json:"id,omitempty"`
	UserID   string   `json:"user_id,omitempty"`
	ItemID   string   `json:"item_id"`
	Quantity int      `json:"quantity"`
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Image    *string  `json:"image,omitempty"`
	Stock    *int     `json:"stock,omitempty"`
}

// Enrich returns the full view of e joined with item.
func (e CartEntry) Enrich(item *Item) CartView {
	if item == nil {
		return e.Degraded()
	}
	name, price, image, stock := item.Name, item.Price, item.Image, item.Stock
	return CartView{
		ID:       e.ID.Hex(),
		UserID:   e.UserID,
		ItemID:   string(e.ItemID),
		Quantity: e.Quantity,
		Name:     &name,
		Price:    &price,
		Image:    &image,
		Stock:    &stock,
	}
}

// Degraded returns the view used when the item is gone.
func (e CartEntry) Degraded() CartView {
	return CartView{ItemID: string(e.ItemID), Quantity: e.Quantity}
}

// MergeLine is one entry of a guest cart sent to /cart/merge. It accepts
// either "item_id" or "id" and a quantity given as a number or numeric string.
type MergeLine struct {
	ItemID   string
	Quantity int
}

func (m *MergeLine) UnmarshalJSON(b []byte) error {
	var raw struct {
		ItemID   any `json:"item_id"`
		ID       any `json:"id"`
		Quantity any `json:"quantity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m.ItemID = refString(raw.ItemID)
	if m.ItemID == "" {
		m.ItemID = refString(raw.ID)
	}
	m.Quantity = coerceQuantity(raw.Quantity)
	return nil
}

func refString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}
