package seeders

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

func init() {
	Register("catalog", SeedCatalog)
}

// starterCatalog covers the categories the frontend's filter panel offers.
var starterCatalog = []models.Item{
	{Name: "Classic White T-Shirt", Category: "clothing", Price: 14.99, Stock: 120, Rating: 4.5,
		Description: "Soft cotton crew-neck t-shirt."},
	{Name: "Denim Shirt", Category: "clothing", Price: 39.5, Stock: 40, Rating: 4.2,
		Description: "Long-sleeve button-down shirt in washed denim."},
	{Name: "Running Shoes", Category: "footwear", Price: 89, Stock: 25, Rating: 4.7,
		Description: "Lightweight trainers for road running."},
	{Name: "Ultrabook Laptop 14\"", Category: "electronics", Price: 1099, Stock: 8, Rating: 4.6,
		Description: "Thin and light laptop with all-day battery."},
	{Name: "Desktop Computer", Category: "electronics", Price: 849, Stock: 5, Rating: 4.1,
		Description: "Tower computer for home and office."},
	{Name: "Wireless Headphones", Category: "electronics", Price: 129.99, Stock: 30, Rating: 4.4,
		Description: "Over-ear headphones with noise cancelling."},
	{Name: "Ceramic Coffee Mug", Category: "kitchen", Price: 9.5, Stock: 200, Rating: 4.8,
		Description: "350 ml stoneware mug."},
	{Name: "Chef Knife", Category: "kitchen", Price: 54, Stock: 15, Rating: 4.9,
		Description: "20 cm stainless steel chef knife."},
}

// SeedCatalog inserts the starter catalog into an empty items collection.
// A catalog that already has items is left alone.
func SeedCatalog(ctx context.Context, store *repositories.Store) error {
	n, err := store.Items.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for i := range starterCatalog {
		it := starterCatalog[i]
		if err := store.Items.Create(ctx, &it); err != nil {
			return fmt.Errorf("insert %q: %w", it.Name, err)
		}
	}
	return nil
}
