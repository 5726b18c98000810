package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/event"
)

// CartService maintains per-user cart entries and joins them with the
// catalog for display.
type CartService struct {
	cart   repositories.CartRepository
	items  repositories.ItemRepository
	events EventBus
}

func NewCartService(cart repositories.CartRepository, items repositories.ItemRepository, events EventBus) *CartService {
	return &CartService{cart: cart, items: items, events: busOrNoop(events)}
}

// Add increments the user's entry for itemID by qty (default 1), creating
// it when absent. Returns the entry id. A blank itemID is kept as is and
// lists as a degraded entry.
func (s *CartService) Add(ctx context.Context, userID, itemID string, qty *int) (string, error) {
	itemID = strings.TrimSpace(itemID)
	n := 1
	if qty != nil {
		n = *qty
	}
	if n < 1 {
		return "", apperr.Validation("quantity must be at least 1")
	}

	id, err := s.cart.Add(ctx, userID, itemID, n)
	if err != nil {
		return "", apperr.Internal(err)
	}

	s.events.FireAsync(ctx, event.New(EventCartAdded, CartEvent{UserID: userID, ItemID: itemID, Quantity: n}))
	return id, nil
}

// List returns the raw entries of the user.
func (s *CartService) List(ctx context.Context, userID string) ([]models.CartEntry, error) {
	entries, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

// ListEnriched joins each entry with its item. Entries whose item is gone
// come back degraded to item_id and quantity.
func (s *CartService) ListEnriched(ctx context.Context, userID string) ([]models.CartView, error) {
	entries, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.CartView, 0, len(entries))
	for _, e := range entries {
		it, err := s.items.FindByRef(ctx, e.ItemID.String())
		switch {
		case err == nil:
			views = append(views, e.Enrich(it))
		case errors.Is(err, repositories.ErrNotFound), errors.Is(err, repositories.ErrInvalidID):
			views = append(views, e.Degraded())
		default:
			return nil, apperr.Internal(err)
		}
	}
	return views, nil
}

// Update sets the quantity of the user's entry for itemID. A missing entry
// is left alone.
func (s *CartService) Update(ctx context.Context, userID, itemID string, qty *int) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return apperr.Validation("item_id is required")
	}
	if qty == nil {
		return apperr.Validation("quantity is required")
	}
	if *qty < 0 {
		return apperr.Validation("quantity must not be negative")
	}

	matched, err := s.cart.SetQuantity(ctx, userID, itemID, *qty)
	if err != nil {
		return apperr.Internal(err)
	}
	if matched {
		s.events.FireAsync(ctx, event.New(EventCartUpdated, CartEvent{UserID: userID, ItemID: itemID, Quantity: *qty}))
	}
	return nil
}

// Remove deletes the user's entry for itemID; removing nothing succeeds.
func (s *CartService) Remove(ctx context.Context, userID, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return apperr.Validation("item_id is required")
	}

	removed, err := s.cart.Remove(ctx, userID, itemID)
	if err != nil {
		return apperr.Internal(err)
	}
	if removed {
		s.events.FireAsync(ctx, event.New(EventCartRemoved, CartEvent{UserID: userID, ItemID: itemID}))
	}
	return nil
}

// Merge folds a guest cart into the user's cart with Add semantics, one
// line at a time. Lines without an id or with a quantity below 1 are
// skipped. A failure stops the merge; lines already applied stay applied.
func (s *CartService) Merge(ctx context.Context, userID string, lines []models.MergeLine) (int, error) {
	merged := 0
	for _, l := range lines {
		itemID := strings.TrimSpace(l.ItemID)
		if itemID == "" || l.Quantity < 1 {
			continue
		}
		if _, err := s.cart.Add(ctx, userID, itemID, l.Quantity); err != nil {
			return merged, apperr.Internal(err)
		}
		merged++
	}

	if merged > 0 {
		s.events.FireAsync(ctx, event.New(EventCartMerged, CartEvent{UserID: userID, Merged: merged}))
	}
	return merged, nil
}
