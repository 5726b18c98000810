package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/pkg/event"
)

// Domain event names.
const (
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
	EventCartAdded   = "cart.added"
	EventCartUpdated = "cart.updated"
	EventCartRemoved = "cart.removed"
	EventCartMerged  = "cart.merged"
)

// EventBus is the publishing side of *event.Dispatcher.
type EventBus interface {
	FireAsync(ctx context.Context, e event.Event)
}

type noopBus struct{}

func (noopBus) FireAsync(context.Context, event.Event) {}

func busOrNoop(b EventBus) EventBus {
	if b == nil {
		return noopBus{}
	}
	return b
}

// CartEvent is the payload of cart.* events.
type CartEvent struct {
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Merged   int    `json:"merged,omitempty"`
}

// ItemDeleted is the payload of item.deleted.
type ItemDeleted struct {
	ID string `json:"id"`
}
