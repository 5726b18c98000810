package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/event"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_WritesEventAsJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)

	e := event.New("cart.added", map[string]any{"user_id": "u1", "quantity": 2})
	e.RequestID = "req-1"
	require.NoError(t, p.Handle(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "cart.added", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "req-1", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "cart.added", decoded["event"])
	assert.Equal(t, "u1", decoded["payload"].(map[string]any)["user_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_ReportsWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewPublisher(w)

	err := p.Handle(context.Background(), event.New("item.deleted", nil))
	assert.ErrorContains(t, err, "leader not available")
}

func TestPublisher_RejectsUnencodablePayload(t *testing.T) {
	p := NewPublisher(&fakeWriter{})

	err := p.Handle(context.Background(), event.New("item.created", make(chan int)))
	assert.Error(t, err)
}
