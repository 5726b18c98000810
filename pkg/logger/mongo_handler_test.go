package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeWriter struct {
	mu   sync.Mutex
	docs []LogDocument
	err  error
}

func (f *fakeWriter) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range docs {
		f.docs = append(f.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func (f *fakeWriter) all() []LogDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LogDocument(nil), f.docs...)
}

func TestMongoHandler_WritesOnClose(t *testing.T) {
	w := &fakeWriter{}
	h := newMongoHandler(w, slog.LevelInfo, 16)
	log := slog.New(h).With("request_id", "r-1").WithGroup("cart")

	log.Debug("skipped")
	log.Info("item added", "item_id", "sku-1", "quantity", 2)
	h.Close()
	h.Close()

	docs := w.all()
	require.Len(t, docs, 1)
	assert.Equal(t, "item added", docs[0].Msg)
	assert.Equal(t, "INFO", docs[0].Level)
	assert.Equal(t, "r-1", docs[0].RequestID)
	assert.Equal(t, "sku-1", docs[0].Attrs["cart.item_id"])
	assert.EqualValues(t, 2, docs[0].Attrs["cart.quantity"])
	assert.Zero(t, h.Dropped())
}

func TestMongoHandler_CountsDrops(t *testing.T) {
	w := &fakeWriter{err: errors.New("mongo down")}
	h := newMongoHandler(w, slog.LevelInfo, 16)
	log := slog.New(h)

	log.Warn("one")
	log.Warn("two")
	h.Close()
	assert.EqualValues(t, 2, h.Dropped(), "failed batches are counted")

	log.Warn("after close")
	assert.EqualValues(t, 3, h.Dropped())
	assert.Empty(t, w.all())
}
