package repositories

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Predicate is a case-insensitive substring match of Term on Field.
type Predicate struct {
	Field string
	Term  string
}

// Pattern is the regex-escaped term.
func (p Predicate) Pattern() string { return regexp.QuoteMeta(p.Term) }

// ItemQuery is a compiled catalog listing: the category and price filters
// are AND-ed together and with the OR of Search; an empty Search adds no
// clause.
type ItemQuery struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   []Predicate

	SortField string // name, price, rating or stock
	SortDesc  bool

	Skip  int64
	Limit int64
}

// Filter renders the query as a Mongo filter document.
func (q ItemQuery) Filter() bson.D {
	filter := bson.D{}

	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.D{}
		if q.MinPrice != nil {
			price = append(price, bson.E{Key: "$gte", Value: *q.MinPrice})
		}
		if q.MaxPrice != nil {
			price = append(price, bson.E{Key: "$lte", Value: *q.MaxPrice})
		}
		filter = append(filter, bson.E{Key: "price", Value: price})
	}

	if len(q.Search) > 0 {
		or := make(bson.A, 0, len(q.Search))
		for _, p := range q.Search {
			or = append(or, bson.D{{Key: p.Field, Value: primitive.Regex{Pattern: p.Pattern(), Options: "i"}}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}

	return filter
}

// Sort renders the sort document with _id as the tie-breaker.
func (q ItemQuery) Sort() bson.D {
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	field := q.SortField
	if field == "" {
		field = "name"
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

// Matches evaluates the filter against it in memory.
func (q ItemQuery) Matches(it *models.Item) bool {
	if q.Category != "" && it.Category != q.Category {
		return false
	}
	if q.MinPrice != nil && it.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && it.Price > *q.MaxPrice {
		return false
	}
	if len(q.Search) == 0 {
		return true
	}
	for _, p := range q.Search {
		if containsFold(fieldText(it, p.Field), p.Term) {
			return true
		}
	}
	return false
}

// Less orders a before b in memory using the same keys as Sort.
func (q ItemQuery) Less(a, b *models.Item) bool {
	c := compareField(a, b, q.SortField)
	if q.SortDesc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return a.ID.Hex() < b.ID.Hex()
}

func fieldText(it *models.Item, field string) string {
	switch field {
	case "name":
		return it.Name
	case "category":
		return it.Category
	case "description":
		return it.Description
	default:
		if s, ok := it.Extra[field].(string); ok {
			return s
		}
		return ""
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func compareField(a, b *models.Item, field string) int {
	switch field {
	case "price":
		return cmpFloat(a.Price, b.Price)
	case "rating":
		return cmpFloat(a.Rating, b.Rating)
	case "stock":
		return cmpFloat(float64(a.Stock), float64(b.Stock))
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
