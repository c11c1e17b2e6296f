// internal/storefront/checkout.go

// Package storefront drives the customer-facing flows on top of the API client.
package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
)

const (
	// CheckoutPath is the checkout page
	CheckoutPath = "/thanh-toan"
	// OrderResultPath shows a placed order
	OrderResultPath = "/ket-qua-don-hang"
	homePath        = "/"
)

// CheckoutAPI is the part of the API the checkout flow needs
type CheckoutAPI interface {
	GetCart(ctx context.Context) (*cart.Cart, error)
	CreateOrder(ctx context.Context, form *checkout.Form) (*order.Order, error)
	CreateVNPayURL(ctx context.Context, orderID uint) (*payment.PaymentURL, error)
}

// Redirect tells the caller where to go next. External targets leave the
// storefront (the payment gateway).
type Redirect struct {
	To       string
	External bool
}

// OrderCreationError means no order was placed. The form is kept for a retry.
type OrderCreationError struct {
	Form checkout.Form
	Err  error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order was not created: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// PaymentInitError means the order exists but the gateway step did not start.
// The order stays unpaid and can be paid later from its detail page.
type PaymentInitError struct {
	OrderID   uint
	OrderCode string
	Err       error
}

func (e *PaymentInitError) Error() string {
	return fmt.Sprintf("order %d was created but payment could not be started: %v", e.OrderID, e.Err)
}

func (e *PaymentInitError) Unwrap() error { return e.Err }

// Checkout turns the cart into an order and routes to payment
type Checkout struct {
	api       CheckoutAPI
	minAmount int64
	log       logrus.FieldLogger
}

// NewCheckout creates the flow. minAmount is the gateway minimum in VND.
func NewCheckout(api CheckoutAPI, minAmount int64, log logrus.FieldLogger) *Checkout {
	if minAmount <= 0 {
		minAmount = checkout.DefaultMinVNPayAmount
	}
	return &Checkout{api: api, minAmount: minAmount, log: log}
}

// Enter loads the cart for the checkout page. An empty cart redirects home;
// that is routing, not an error.
func (c *Checkout) Enter(ctx context.Context) (*cart.Cart, *Redirect, error) {
	ct, err := c.api.GetCart(ctx)
	if err != nil {
		return nil, nil, err
	}
	if ct.IsEmpty() {
		return ct, &Redirect{To: homePath}, nil
	}
	return ct, nil, nil
}

// Submit validates the form locally, places the order and decides where the
// customer goes next. Validation failures are *checkout.ValidationError.
func (c *Checkout) Submit(ctx context.Context, form checkout.Form) (*Redirect, error) {
	if err := checkout.Validate(&form); err != nil {
		return nil, err
	}

	o, err := c.api.CreateOrder(ctx, &form)
	if err != nil {
		return nil, &OrderCreationError{Form: form, Err: err}
	}
	log := c.log.WithFields(logrus.Fields{"order_id": o.ID, "payment_method": form.PaymentMethod})

	if form.PaymentMethod != checkout.PaymentVNPay {
		log.Info("order placed")
		return &Redirect{To: resultPath(o.ID)}, nil
	}

	if err := checkout.CheckAmount(checkout.PaymentVNPay, o.TotalAmount, c.minAmount); err != nil {
		return nil, &PaymentInitError{OrderID: o.ID, OrderCode: o.OrderCode, Err: err}
	}

	pu, err := c.api.CreateVNPayURL(ctx, o.ID)
	if err != nil {
		log.WithError(err).Warn("order placed but payment url failed")
		return nil, &PaymentInitError{OrderID: o.ID, OrderCode: o.OrderCode, Err: err}
	}
	log.Info("order placed, redirecting to gateway")
	return &Redirect{To: pu.URL, External: true}, nil
}

func resultPath(orderID uint) string {
	return OrderResultPath + "?" + url.Values{"orderId": {strconv.FormatUint(uint64(orderID), 10)}}.Encode()
}
