package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestPublish(t *testing.T) {
	w := &captureWriter{}
	p := &OrderEventProducer{writer: w, timeout: time.Second}

	err := p.Publish(context.Background(), order.Event{
		Type:        order.EventStatusChanged,
		OrderID:     42,
		Status:      order.OrderStatusConfirmed,
		TotalAmount: 150000,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	m := w.msgs[0]
	assert.Equal(t, "42", string(m.Key))
	assert.Equal(t, "order.status_changed", string(m.Headers[0].Value))

	var decoded order.Event
	require.NoError(t, json.Unmarshal(m.Value, &decoded))
	assert.Equal(t, order.OrderStatusConfirmed, decoded.Status)
	assert.Equal(t, int64(150000), decoded.TotalAmount)
}

type scriptedReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func TestConsumerRun(t *testing.T) {
	good, _ := json.Marshal(order.Event{Type: order.EventOrderCreated, OrderID: 1})
	failing, _ := json.Marshal(order.Event{Type: order.EventOrderCreated, OrderID: 2})

	ctx, cancel := context.WithCancel(context.Background())
	r := &scriptedReader{
		msgs: []kafka.Message{
			{Offset: 1, Value: good},
			{Offset: 2, Value: []byte("not json")},
			{Offset: 3, Value: failing},
		},
		cancel: cancel,
	}

	var handled []uint
	c := &OrderEventConsumer{
		reader: r,
		log:    logger.Discard(),
		handler: func(_ context.Context, e order.Event) error {
			handled = append(handled, e.OrderID)
			if e.OrderID == 2 {
				return errors.New("smtp down")
			}
			return nil
		},
	}

	require.NoError(t, c.Run(ctx))
	assert.Equal(t, []uint{1, 2}, handled)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
}

type brokenReader struct {
	fetches atomic.Int32
}

func (r *brokenReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.fetches.Add(1)
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{}, errors.New("broker unavailable")
}

func (r *brokenReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }

func (r *brokenReader) Close() error { return nil }

func TestConsumerRun_BacksOffOnFetchErrors(t *testing.T) {
	r := &brokenReader{}
	c := &OrderEventConsumer{
		reader:     r,
		log:        logger.Discard(),
		handler:    func(context.Context, order.Event) error { return nil },
		retryDelay: 100 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after the context ended")
	}
	assert.LessOrEqual(t, r.fetches.Load(), int32(4))
	assert.GreaterOrEqual(t, r.fetches.Load(), int32(2))
}
