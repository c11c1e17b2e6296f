// internal/domain/checkout/service.go
package checkout

import (
	"context"

	"github.com/your-org/storefront-api/internal/domain/cart"
)

// CartReader loads a priced cart
type CartReader interface {
	GetCart(ctx context.Context, userID uint) (*cart.Cart, error)
}

// Service handles checkout business logic
type Service struct {
	carts     CartReader
	minAmount int64
}

// NewService creates a new checkout service
func NewService(carts CartReader, minVNPayAmount int64) *Service {
	if minVNPayAmount <= 0 {
		minVNPayAmount = DefaultMinVNPayAmount
	}
	return &Service{carts: carts, minAmount: minVNPayAmount}
}

// PaymentOption describes a payment method offered at checkout
type PaymentOption struct {
	Method    PaymentMethod `json:"method"`
	Name      string        `json:"name"`
	Available bool          `json:"available"`
	Reason    string        `json:"reason,omitempty"`
}

// Summary is what the checkout page shows before submission
type Summary struct {
	Cart           *cart.Cart      `json:"cart"`
	TotalAmount    int64           `json:"totalAmount"`
	VNPayEligible  bool            `json:"vnpayEligible"`
	MinVNPayAmount int64           `json:"minVnpayAmount"`
	PaymentMethods []PaymentOption `json:"paymentMethods"`
	// Redirect is set when there is nothing to check out
	Redirect string `json:"redirect,omitempty"`
}

// Validation is the result of a dry-run checkout
type Validation struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// MinAmount is the configured gateway minimum
func (s *Service) MinAmount() int64 {
	return s.minAmount
}

// GetCheckoutSummary prices the cart and lists the payment methods it qualifies for
func (s *Service) GetCheckoutSummary(ctx context.Context, userID uint) (*Summary, error) {
	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Cart:           c,
		TotalAmount:    c.TotalAmount,
		MinVNPayAmount: s.minAmount,
	}
	if c.IsEmpty() {
		summary.Redirect = "/"
	}
	summary.VNPayEligible = !c.IsEmpty() && CheckAmount(PaymentVNPay, c.TotalAmount, s.minAmount) == nil
	summary.PaymentMethods = s.getAvailablePaymentMethods(summary.VNPayEligible)
	return summary, nil
}

// ValidateCheckout checks a form against the current cart without creating an order
func (s *Service) ValidateCheckout(ctx context.Context, userID uint, f *Form) (*Validation, error) {
	result := &Validation{Valid: true, Errors: map[string]string{}}

	if err := Validate(f); err != nil {
		verr, ok := err.(*ValidationError)
		if !ok {
			return nil, err
		}
		result.Valid = false
		for k, v := range verr.Fields {
			result.Errors[k] = v
		}
	}

	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		result.Valid = false
		result.Errors["cart"] = cart.ErrCartEmpty.Error()
	}
	for _, line := range c.Items {
		if !line.Available {
			result.Valid = false
			result.Errors["cart"] = "some products are no longer available"
			break
		}
	}
	if err := CheckAmount(f.PaymentMethod, c.TotalAmount, s.minAmount); err != nil {
		result.Valid = false
		result.Errors["paymentMethod"] = MinimumMessage(s.minAmount)
	}
	return result, nil
}

func (s *Service) getAvailablePaymentMethods(vnpayEligible bool) []PaymentOption {
	vnpay := PaymentOption{Method: PaymentVNPay, Name: "Thanh toán qua VNPAY", Available: vnpayEligible}
	if !vnpayEligible {
		vnpay.Reason = MinimumMessage(s.minAmount)
	}
	return []PaymentOption{
		{Method: PaymentCOD, Name: "Thanh toán khi nhận hàng (COD)", Available: true},
		vnpay,
	}
}
