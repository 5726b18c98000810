// Package schema defines the read-only GraphQL API over the catalog and,
// for authenticated callers, their cart.
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Catalog is the subset of *services.ItemService the schema reads from.
type Catalog interface {
	List(ctx context.Context, p services.CatalogParams) ([]models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Categories(ctx context.Context) ([]string, error)
}

// Cart is the subset of *services.CartService the schema reads from.
type Cart interface {
	List(ctx context.Context, userID string) ([]models.CartEntry, error)
}

var cartEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CartEntry",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"itemId":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Item",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"image":       &graphql.Field{Type: graphql.String},
		"rating":      &graphql.Field{Type: graphql.Float},
		// extra is the JSON object of the fields outside the typed set.
		"extra": &graphql.Field{Type: graphql.String},
	},
})

// New builds the schema. The cart query needs an identity in the request
// context and fails with "unauthorized" without one.
func New(catalog Catalog, cart Cart) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"items": &graphql.Field{
				Type: graphql.NewList(itemType),
				Args: graphql.FieldConfigArgument{
					"category":     &graphql.ArgumentConfig{Type: graphql.String},
					"navbarSearch": &graphql.ArgumentConfig{Type: graphql.String},
					"filterSearch": &graphql.ArgumentConfig{Type: graphql.String},
					"minPrice":     &graphql.ArgumentConfig{Type: graphql.Float},
					"maxPrice":     &graphql.ArgumentConfig{Type: graphql.Float},
					"sortBy":       &graphql.ArgumentConfig{Type: graphql.String},
					"page":         &graphql.ArgumentConfig{Type: graphql.Int},
					"pageSize":     &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					items, err := catalog.List(p.Context, paramsFrom(p.Args))
					if err != nil {
						return nil, clientErr(p.Context, err)
					}
					out := make([]map[string]any, 0, len(items))
					for i := range items {
						out = append(out, itemMap(&items[i]))
					}
					return out, nil
				},
			},
			"item": &graphql.Field{
				Type: itemType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					it, err := catalog.Get(p.Context, id)
					if err != nil {
						return nil, clientErr(p.Context, err)
					}
					return itemMap(it), nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					cats, err := catalog.Categories(p.Context)
					if err != nil {
						return nil, clientErr(p.Context, err)
					}
					return cats, nil
				},
			},
			"cart": &graphql.Field{
				Type: graphql.NewList(cartEntryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					userID, ok := auth.IdentityFrom(p.Context)
					if !ok {
						return nil, errors.New("unauthorized")
					}
					entries, err := cart.List(p.Context, userID)
					if err != nil {
						return nil, clientErr(p.Context, err)
					}
					out := make([]map[string]any, 0, len(entries))
					for _, e := range entries {
						out = append(out, map[string]any{
							"id":       e.ID.Hex(),
							"itemId":   e.ItemID.String(),
							"quantity": e.Quantity,
						})
					}
					return out, nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func paramsFrom(args map[string]any) services.CatalogParams {
	str := func(k string) string {
		s, _ := args[k].(string)
		return s
	}
	num := func(k string) string {
		switch v := args[k].(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
		return ""
	}
	return services.CatalogParams{
		Category:     str("category"),
		NavbarSearch: str("navbarSearch"),
		FilterSearch: str("filterSearch"),
		MinPrice:     num("minPrice"),
		MaxPrice:     num("maxPrice"),
		SortBy:       str("sortBy"),
		Page:         num("page"),
		PageSize:     num("pageSize"),
	}
}

func itemMap(it *models.Item) map[string]any {
	m := map[string]any{
		"id":          it.ID.Hex(),
		"name":        it.Name,
		"description": it.Description,
		"category":    it.Category,
		"price":       it.Price,
		"stock":       it.Stock,
		"image":       it.Image,
		"rating":      it.Rating,
	}
	if len(it.Extra) > 0 {
		if b, err := json.Marshal(it.Extra); err == nil {
			m["extra"] = string(b)
		}
	}
	return m
}

// clientErr strips internal detail from err before it reaches the result.
func clientErr(ctx context.Context, err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.WithCtx(ctx).Error("graphql resolver failed", "error", err.Error())
	}
	return errors.New(apperr.MessageOf(err))
}
