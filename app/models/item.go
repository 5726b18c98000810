package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a catalog record. Known fields are typed; anything else a client
// sends is kept verbatim in Extra and stored inline in the same document.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"         json:"id"`
	Name        string             `bson:"name"                  json:"name"`
	Description string             `bson:"description,omitempty" json:"description"`
	Category    string             `bson:"category,omitempty"    json:"category"`
	Price       float64            `bson:"price"                 json:"price" validate:"gte=0"`
	Stock       int                `bson:"stock"                 json:"stock" validate:"gte=0"`
	Image       string             `bson:"image,omitempty"       json:"image"`
	Rating      float64            `bson:"rating,omitempty"      json:"rating"`
	Extra       map[string]any     `bson:",inline"               json:"-"`
}

// itemFields lists the JSON keys bound to typed fields.
var itemFields = map[string]bool{
	"name": true, "description": true, "category": true, "price": true,
	"stock": true, "image": true, "rating": true,
}

// reserved keys are never accepted from clients.
var reserved = map[string]bool{"id": true, "_id": true}

type itemJSON struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// MarshalJSON flattens Extra next to the known fields and exposes the
// public string id.
func (it Item) MarshalJSON() ([]byte, error) {
	known := itemJSON{
		Name: it.Name, Description: it.Description, Category: it.Category,
		Price: it.Price, Stock: it.Stock, Image: it.Image, Rating: it.Rating,
	}
	if !it.ID.IsZero() {
		known.ID = it.ID.Hex()
	}

	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(it.Extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(it.Extra))
	for k := range it.Extra {
		if !itemFields[k] && !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, k := range keys {
		kb, _ := json.Marshal(k)
		vb, err := json.Marshal(jsonSafe(it.Extra[k]))
		if err != nil {
			return nil, fmt.Errorf("item: marshal extra %q: %w", k, err)
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON binds the known fields and collects every other key into
// Extra. Client-supplied ids are ignored.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var known itemJSON
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	*it = Item{
		Name: known.Name, Description: known.Description, Category: known.Category,
		Price: known.Price, Stock: known.Stock, Image: known.Image, Rating: known.Rating,
	}

	for k, v := range raw {
		if itemFields[k] || reserved[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if it.Extra == nil {
			it.Extra = make(map[string]any)
		}
		it.Extra[k] = val
	}
	return nil
}

// jsonSafe converts driver-decoded values (bson.D, primitive.A, ObjectIDs)
// stored in Extra into shapes encoding/json renders naturally.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = jsonSafe(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = jsonSafe(e)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = jsonSafe(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}

// ItemPatch is a partial update. Present records which keys the client sent,
// so a zero value can still be set explicitly.
type ItemPatch struct {
	Fields  Item
	Present map[string]bool
}

// UnmarshalJSON decodes b with Item's rules and remembers the sent keys.
func (p *ItemPatch) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(b, &p.Fields); err != nil {
		return err
	}

	p.Present = make(map[string]bool, len(raw))
	for k := range raw {
		if !reserved[k] {
			p.Present[k] = true
		}
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p *ItemPatch) Empty() bool { return len(p.Present) == 0 }

// Has reports whether key was sent.
func (p *ItemPatch) Has(key string) bool { return p.Present[key] }

// SetDoc returns the $set document for the patch.
func (p *ItemPatch) SetDoc() bson.D {
	keys := make([]string, 0, len(p.Present))
	for k := range p.Present {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := make(bson.D, 0, len(keys))
	for _, k := range keys {
		set = append(set, bson.E{Key: k, Value: p.value(k)})
	}
	return set
}

func (p *ItemPatch) value(key string) any {
	f := p.Fields
	switch key {
	case "name":
		return f.Name
	case "description":
		return f.Description
	case "category":
		return f.Category
	case "price":
		return f.Price
	case "stock":
		return f.Stock
	case "image":
		return f.Image
	case "rating":
		return f.Rating
	default:
		return f.Extra[key]
	}
}

// Apply copies the patched fields onto it.
func (p *ItemPatch) Apply(it *Item) {
	for k := range p.Present {
		v := p.value(k)
		switch k {
		case "name":
			it.Name = v.(string)
		case "description":
			it.Description = v.(string)
		case "category":
			it.Category = v.(string)
		case "price":
			it.Price = v.(float64)
		case "stock":
			it.Stock = v.(int)
		case "image":
			it.Image = v.(string)
		case "rating":
			it.Rating = v.(float64)
		default:
			if it.Extra == nil {
				it.Extra = make(map[string]any)
			}
			it.Extra[k] = v
		}
	}
}
