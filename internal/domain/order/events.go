// internal/domain/order/events.go
package order

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// EventType names an order lifecycle event
type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventStatusChanged  EventType = "order.status_changed"
	EventPaymentUpdated EventType = "order.payment_updated"
)

// Event is published whenever an order is created or changes state
type Event struct {
	Type           EventType     `json:"type"`
	OrderID        uint          `json:"orderId"`
	OrderCode      string        `json:"orderCode"`
	UserID         uint          `json:"userId"`
	Status         OrderStatus   `json:"status"`
	PreviousStatus OrderStatus   `json:"previousStatus,omitempty"`
	PaymentMethod  string        `json:"paymentMethod"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	TotalAmount    int64         `json:"totalAmount"`
	RecipientEmail string        `json:"recipientEmail"`
	RecipientName  string        `json:"recipientName"`
	Note           string        `json:"note,omitempty"`
	Items          []EventItem   `json:"items,omitempty"`
	OccurredAt     time.Time     `json:"occurredAt"`
}

// EventItem is the line summary carried by order.created
type EventItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Publisher delivers order events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NewEvent builds an event from the current state of o
func NewEvent(t EventType, o *Order, at time.Time) Event {
	e := Event{
		Type:           t,
		OrderID:        o.ID,
		OrderCode:      o.OrderCode,
		UserID:         o.UserID,
		Status:         o.Status,
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  o.PaymentStatus,
		TotalAmount:    o.TotalAmount,
		RecipientEmail: o.RecipientEmail,
		RecipientName:  o.RecipientName,
		OccurredAt:     at.UTC(),
	}
	if t == EventOrderCreated {
		for _, it := range o.Items {
			e.Items = append(e.Items, EventItem{Name: it.ProductName, Quantity: it.Quantity, Price: it.PriceAtTimeOfOrder})
		}
	}
	return e
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs the event
func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.WithFields(logrus.Fields{
		"event":          e.Type,
		"order_id":       e.OrderID,
		"status":         e.Status,
		"payment_status": e.PaymentStatus,
	}).Info("order event")
	return nil
}
