package services

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/event"
)

// recordingBus collects fired events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) FireAsync(_ context.Context, e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Name)
	}
	return out
}

func intp(n int) *int { return &n }
