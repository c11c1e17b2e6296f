// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/pdf"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("order status transition is not allowed")
	ErrOrderNotEditable    = errors.New("order can only be edited while pending")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrConcurrentUpdate    = errors.New("order was modified concurrently")
	ErrInvoiceNotRequested = errors.New("no VAT invoice was requested for this order")
	ErrInvoiceUnavailable  = errors.New("invoice generation is disabled")
)

// CustomerCancelReason is stored when a customer cancels through DELETE
const CustomerCancelReason = "Cancelled by customer"

// AdminCancelReason is stored when an admin cancels without a note
const AdminCancelReason = "Cancelled by admin"

// CartReader loads the priced cart of a user
type CartReader interface {
	GetCart(ctx context.Context, userID uint) (*cart.Cart, error)
}

// InvoiceRenderer turns an invoice into a PDF document
type InvoiceRenderer interface {
	Enabled() bool
	GenerateInvoice(inv pdf.Invoice) ([]byte, error)
}

// Service handles order business logic
type Service struct {
	repo      Repository
	carts     CartReader
	events    Publisher
	invoices  InvoiceRenderer
	minAmount int64
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository, carts CartReader, events Publisher, invoices InvoiceRenderer, minVNPayAmount int64, log logrus.FieldLogger) *Service {
	if minVNPayAmount <= 0 {
		minVNPayAmount = checkout.DefaultMinVNPayAmount
	}
	return &Service{
		repo:      repo,
		carts:     carts,
		events:    events,
		invoices:  invoices,
		minAmount: minVNPayAmount,
		log:       log,
		now:       time.Now,
	}
}

// UpdateStatusRequest is the admin status change body
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=PENDING CONFIRMED DELIVERING DELIVERED CANCELLED RETURNED"`
	Note   string      `json:"note" binding:"max=1000"`
}

// CancelOrderRequest is the customer cancellation body
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateOrderRequest edits the recipient and delivery details of a pending order
type UpdateOrderRequest struct {
	RecipientName   string                  `json:"recipientName" binding:"required,fullname,max=150"`
	RecipientGender string                  `json:"recipientGender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	RecipientEmail  string                  `json:"recipientEmail" binding:"required,mailbox,max=255"`
	RecipientPhone  string                  `json:"recipientPhone" binding:"required,vnphone"`
	DeliveryMethod  checkout.DeliveryMethod `json:"deliveryMethod" binding:"required,oneof=HOME_DELIVERY STORE_PICKUP"`
	ShippingAddress string                  `json:"shippingAddress" binding:"required_if=DeliveryMethod HOME_DELIVERY,max=500"`
	Note            string                  `json:"note" binding:"max=1000"`
}

// CreateOrder turns the user's cart into an order. Prices come from the
// catalog at this moment; nothing the client sends about amounts is trusted.
func (s *Service) CreateOrder(ctx context.Context, userID uint, form *checkout.Form) (*Order, error) {
	if err := checkout.Validate(form); err != nil {
		return nil, err
	}

	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, cart.ErrCartEmpty
	}

	items := make([]OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		if !line.Available {
			name := line.ProductName
			if name == "" {
				name = fmt.Sprintf("product %d", line.ProductID)
			}
			return nil, fmt.Errorf("%s: %w", name, product.ErrInsufficientStock)
		}
		items = append(items, OrderItem{
			ProductID:          line.ProductID,
			ProductName:        line.ProductName,
			ProductImage:       line.Thumbnail,
			Quantity:           line.Quantity,
			PriceAtTimeOfOrder: line.UnitPrice,
		})
	}

	total := ComputeTotal(items)
	if err := checkout.CheckAmount(form.PaymentMethod, total, s.minAmount); err != nil {
		return nil, err
	}

	o := &Order{
		UserID:          userID,
		Status:          OrderStatusPending,
		PaymentMethod:   form.PaymentMethod,
		PaymentStatus:   PaymentStatusPending,
		DeliveryMethod:  form.DeliveryMethod,
		RecipientName:   form.RecipientName,
		RecipientGender: form.RecipientGender,
		RecipientEmail:  form.RecipientEmail,
		RecipientPhone:  form.RecipientPhone,
		ShippingAddress: form.ShippingAddress,
		Note:            form.Note,
		RequestInvoice:  form.RequestInvoice,
		CompanyName:     form.CompanyName,
		CompanyTaxCode:  form.CompanyTaxCode,
		CompanyAddress:  form.CompanyAddress,
		TotalAmount:     total,
		Items:           items,
		StatusHistory: []OrderStatusHistory{{
			Status:    OrderStatusPending,
			Note:      "Order created",
			ChangedBy: userID,
		}},
	}
	if err := s.repo.CreateFromCart(ctx, o); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":       o.ID,
		"order_code":     o.OrderCode,
		"user_id":        userID,
		"payment_method": o.PaymentMethod,
		"total_amount":   o.TotalAmount,
	}).Info("order created")
	s.publish(ctx, NewEvent(EventOrderCreated, o, s.now()))
	return o, nil
}

// GetOrder returns an order owned by userID. Orders of other users are reported as missing.
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetOrderAdmin returns any order
func (s *Service) GetOrderAdmin(ctx context.Context, orderID uint) (*Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

// GetUserOrders lists the orders of one user, newest first by default
func (s *Service) GetUserOrders(ctx context.Context, userID uint, q pagination.Query) ([]Order, int64, error) {
	return s.repo.List(ctx, ListFilter{Query: q, UserID: userID})
}

// GetOrders lists all orders for the back office
func (s *Service) GetOrders(ctx context.Context, q pagination.Query, status OrderStatus, paymentStatus PaymentStatus) ([]Order, int64, error) {
	return s.repo.List(ctx, ListFilter{Query: q, Status: status, PaymentStatus: paymentStatus})
}

// UpdateStatus moves an order along the status whitelist on behalf of an admin
func (s *Service) UpdateStatus(ctx context.Context, orderID, adminID uint, req *UpdateStatusRequest) (*Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if req.Status == OrderStatusCancelled {
		o.CancelReason = req.Note
		if o.CancelReason == "" {
			o.CancelReason = AdminCancelReason
		}
	}
	return s.transition(ctx, o, req.Status, adminID, req.Note)
}

// CancelOrder cancels an order owned by userID while it is PENDING or CONFIRMED
func (s *Service) CancelOrder(ctx context.Context, userID, orderID uint, reason string) (*Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, ErrOrderNotCancellable
	}
	if reason == "" {
		reason = CustomerCancelReason
	}
	o.CancelReason = reason
	return s.transition(ctx, o, OrderStatusCancelled, userID, reason)
}

func (s *Service) transition(ctx context.Context, o *Order, to OrderStatus, changedBy uint, note string) (*Order, error) {
	from := o.Status
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}

	if to == OrderStatusDelivered {
		at := s.now()
		o.DeliveredAt = &at
	}
	change := StatusChange{
		From:    from,
		To:      to,
		History: OrderStatusHistory{Status: to, Note: note, ChangedBy: changedBy},
		Restock: to == OrderStatusCancelled || to == OrderStatusReturned,
	}
	if err := s.repo.ChangeStatus(ctx, o, change); err != nil {
		return nil, err
	}
	o.Status = to

	s.log.WithFields(logrus.Fields{
		"order_id":   o.ID,
		"from":       from,
		"to":         to,
		"changed_by": changedBy,
	}).Info("order status changed")

	e := NewEvent(EventStatusChanged, o, s.now())
	e.PreviousStatus = from
	e.Note = note
	s.publish(ctx, e)

	return s.repo.FindByID(ctx, o.ID)
}

// UpdateOrder edits a pending order owned by userID
func (s *Service) UpdateOrder(ctx context.Context, userID, orderID uint, req *UpdateOrderRequest) (*Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.updateDetails(ctx, o, req)
}

// UpdateOrderAdmin edits any pending order
func (s *Service) UpdateOrderAdmin(ctx context.Context, orderID uint, req *UpdateOrderRequest) (*Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.updateDetails(ctx, o, req)
}

func (s *Service) updateDetails(ctx context.Context, o *Order, req *UpdateOrderRequest) (*Order, error) {
	if !o.IsEditable() {
		return nil, ErrOrderNotEditable
	}

	// reuse the checkout rules so edits cannot bypass them
	form := &checkout.Form{
		RecipientName:   req.RecipientName,
		RecipientGender: req.RecipientGender,
		RecipientEmail:  req.RecipientEmail,
		RecipientPhone:  req.RecipientPhone,
		DeliveryMethod:  req.DeliveryMethod,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Note:            req.Note,
	}
	if err := checkout.Validate(form); err != nil {
		return nil, err
	}

	o.RecipientName = form.RecipientName
	o.RecipientGender = form.RecipientGender
	o.RecipientEmail = form.RecipientEmail
	o.RecipientPhone = form.RecipientPhone
	o.DeliveryMethod = form.DeliveryMethod
	o.ShippingAddress = form.ShippingAddress
	o.Note = form.Note
	if err := s.repo.UpdateDetails(ctx, o); err != nil {
		return nil, err
	}

	s.log.WithField("order_id", o.ID).Info("order details updated")
	return s.repo.FindByID(ctx, o.ID)
}

// Invoice renders the VAT invoice of an order owned by userID
func (s *Service) Invoice(ctx context.Context, userID, orderID uint) ([]byte, *Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !o.RequestInvoice {
		return nil, nil, ErrInvoiceNotRequested
	}
	if s.invoices == nil || !s.invoices.Enabled() {
		return nil, nil, ErrInvoiceUnavailable
	}

	inv := pdf.Invoice{
		OrderCode:      o.OrderCode,
		OrderDate:      o.CreatedAt,
		BuyerName:      o.RecipientName,
		BuyerPhone:     o.RecipientPhone,
		BuyerEmail:     o.RecipientEmail,
		CompanyName:    o.CompanyName,
		CompanyTaxCode: o.CompanyTaxCode,
		CompanyAddress: o.CompanyAddress,
		PaymentMethod:  string(o.PaymentMethod),
		TotalAmount:    o.TotalAmount,
	}
	for _, it := range o.Items {
		inv.Lines = append(inv.Lines, pdf.InvoiceLine{Name: it.ProductName, Quantity: it.Quantity, UnitPrice: it.PriceAtTimeOfOrder})
	}

	doc, err := s.invoices.GenerateInvoice(inv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return doc, o, nil
}

// publish never fails the caller; the state change is already committed
func (s *Service) publish(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"order_id": e.OrderID, "event": e.Type}).
			Error("failed to publish order event")
	}
}
