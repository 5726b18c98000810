package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

func TestFire_NamedAndWildcard(t *testing.T) {
	d := NewDispatcher(nil)

	var got []string
	d.Listen("cart.added", func(_ context.Context, e Event) error {
		got = append(got, "named:"+e.Name)
		return nil
	})
	d.Listen(Wildcard, func(_ context.Context, e Event) error {
		got = append(got, "any:"+e.Name)
		return nil
	})

	require.NoError(t, d.Fire(context.Background(), New("cart.added", nil)))
	require.NoError(t, d.Fire(context.Background(), New("item.deleted", nil)))

	assert.Equal(t, []string{"named:cart.added", "any:cart.added", "any:item.deleted"}, got)
}

func TestFire_JoinsErrorsAndRecoversPanics(t *testing.T) {
	d := NewDispatcher(nil)
	d.Listen("x", func(context.Context, Event) error { return errors.New("first") })
	d.Listen("x", func(context.Context, Event) error { panic("second") })

	err := d.Fire(context.Background(), New("x", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "panicked")
}

func TestFireAsync_RunsOnPoolWithRequestID(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()
	d := NewDispatcher(pool)

	var (
		mu  sync.Mutex
		rid string
	)
	done := make(chan struct{})
	d.Listen("item.created", func(_ context.Context, e Event) error {
		mu.Lock()
		rid = e.RequestID
		mu.Unlock()
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(reqid.WithValue(context.Background(), "req-1"))
	d.FireAsync(ctx, New("item.created", map[string]string{"id": "1"}))
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "req-1", rid)
}
