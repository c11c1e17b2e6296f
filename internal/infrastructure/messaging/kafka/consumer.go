// internal/infrastructure/messaging/kafka/consumer.go
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/order"
)

// EventHandler processes one decoded order event
type EventHandler func(ctx context.Context, e order.Event) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventConsumer reads order events in a consumer group
type OrderEventConsumer struct {
	reader  messageReader
	handler EventHandler
	log     logrus.FieldLogger
	// retryDelay is the pause after a failed fetch
	retryDelay time.Duration
}

// NewOrderEventConsumer creates a consumer for topic in group groupID
func NewOrderEventConsumer(brokers []string, groupID, topic string, handler EventHandler, log logrus.FieldLogger) *OrderEventConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &OrderEventConsumer{reader: r, handler: handler, log: log, retryDelay: time.Second}
}

// Run blocks until ctx is cancelled. Messages are committed after the
// handler ran; undecodable messages are logged and skipped.
func (c *OrderEventConsumer) Run(ctx context.Context) error {
	c.log.Info("order event consumer started")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.log.WithError(err).Error("failed to read message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		var e order.Event
		if err := json.Unmarshal(m.Value, &e); err != nil {
			c.log.WithError(err).WithField("offset", m.Offset).Error("failed to decode order event")
		} else if err := c.handler(ctx, e); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"event":    e.Type,
				"order_id": e.OrderID,
			}).Error("failed to handle order event")
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
			c.log.WithError(err).Error("failed to commit message")
		}
	}
}

// Close leaves the consumer group
func (c *OrderEventConsumer) Close() error {
	return c.reader.Close()
}
