// internal/domain/notification/service.go
package notification

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/pkg/email"
)

// Mailer sends the customer-facing order mails; *email.EmailService satisfies it
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, data email.OrderData, attachments ...string) error
	SendOrderStatusUpdate(ctx context.Context, to string, data email.OrderData) error
	SendPaymentResult(ctx context.Context, to string, data email.PaymentData) error
}

// Service turns order events into e-mails
type Service struct {
	mailer      Mailer
	frontendURL string
	log         logrus.FieldLogger
}

// NewService creates a new notification service
func NewService(mailer Mailer, frontendURL string, log logrus.FieldLogger) *Service {
	return &Service{mailer: mailer, frontendURL: frontendURL, log: log}
}

// Handle sends the mail matching the event type. Events without a recipient are skipped.
func (s *Service) Handle(ctx context.Context, e order.Event) error {
	if e.RecipientEmail == "" {
		s.log.WithField("order_id", e.OrderID).Warn("order event without recipient")
		return nil
	}

	var err error
	switch e.Type {
	case order.EventOrderCreated:
		data := s.orderData(e)
		for _, it := range e.Items {
			data.Items = append(data.Items, email.OrderItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
		}
		err = s.mailer.SendOrderConfirmation(ctx, e.RecipientEmail, data)
	case order.EventStatusChanged:
		err = s.mailer.SendOrderStatusUpdate(ctx, e.RecipientEmail, s.orderData(e))
	case order.EventPaymentUpdated:
		if e.PaymentStatus == order.PaymentStatusPending {
			return nil
		}
		err = s.mailer.SendPaymentResult(ctx, e.RecipientEmail, email.PaymentData{
			TemplateData: email.TemplateData{UserName: e.RecipientName},
			OrderCode:    e.OrderCode,
			OrderURL:     s.orderURL(e.OrderID),
			Paid:         e.PaymentStatus == order.PaymentStatusPaid,
			TotalAmount:  e.TotalAmount,
		})
	default:
		s.log.WithField("event", e.Type).Debug("ignoring unknown order event")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to send %s mail: %w", e.Type, err)
	}

	s.log.WithFields(logrus.Fields{"event": e.Type, "order_id": e.OrderID}).Info("notification sent")
	return nil
}

func (s *Service) orderData(e order.Event) email.OrderData {
	return email.OrderData{
		TemplateData:  email.TemplateData{UserName: e.RecipientName},
		OrderCode:     e.OrderCode,
		OrderURL:      s.orderURL(e.OrderID),
		Status:        statusLabel(e.Status),
		PaymentMethod: e.PaymentMethod,
		TotalAmount:   e.TotalAmount,
	}
}

func (s *Service) orderURL(id uint) string {
	return fmt.Sprintf("%s/tai-khoan/don-hang/%d", s.frontendURL, id)
}

func statusLabel(s order.OrderStatus) string {
	switch s {
	case order.OrderStatusPending:
		return "Chờ xác nhận"
	case order.OrderStatusConfirmed:
		return "Đã xác nhận"
	case order.OrderStatusDelivering:
		return "Đang giao hàng"
	case order.OrderStatusDelivered:
		return "Đã giao hàng"
	case order.OrderStatusCancelled:
		return "Đã hủy"
	case order.OrderStatusReturned:
		return "Đã trả hàng"
	default:
		return string(s)
	}
}
