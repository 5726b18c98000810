// Package broker publishes domain events to Kafka.
//
// The publisher is registered on the event dispatcher as a wildcard
// listener, so every event fired by the services lands on one topic keyed
// by event name:
//
//	pub := broker.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
//	bus.Listen(event.Wildcard, pub.Handle)
//	defer pub.Close()
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const (
	sink         = "kafka"
	writeTimeout = 5 * time.Second
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to a Kafka topic.
type Publisher struct {
	w       MessageWriter
	timeout time.Duration
}

// NewKafka returns a publisher writing to topic on brokers. Topics are
// auto-created by the broker when allowed.
func NewKafka(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return NewPublisher(w)
}

// NewPublisher wraps an existing writer.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w, timeout: writeTimeout}
}

// Handle is an event.Handler that writes e as JSON.
func (p *Publisher) Handle(ctx context.Context, e event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(e.Name, sink, "error").Inc()
		return fmt.Errorf("broker: marshal %s: %w", e.Name, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Name),
		Value: body,
		Time:  e.At,
	}
	if e.RequestID != "" {
		msg.Headers = []kafka.Header{{Key: "X-Request-ID", Value: []byte(e.RequestID)}}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(e.Name, sink, "error").Inc()
		return fmt.Errorf("broker: publish %s: %w", e.Name, err)
	}
	metrics.EventsPublished.WithLabelValues(e.Name, sink, "ok").Inc()
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
