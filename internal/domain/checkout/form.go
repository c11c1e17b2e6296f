// internal/domain/checkout/form.go
package checkout

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/your-org/storefront-api/internal/pkg/money"
	"github.com/your-org/storefront-api/internal/pkg/validation"
)

// DeliveryMethod is how the order reaches the customer
type DeliveryMethod string

const (
	DeliveryHome        DeliveryMethod = "HOME_DELIVERY"
	DeliveryStorePickup DeliveryMethod = "STORE_PICKUP"
)

// PaymentMethod is how the order is paid
type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "COD"
	PaymentVNPay PaymentMethod = "VNPAY"
)

// DefaultMinVNPayAmount is the smallest amount the gateway accepts, in VND
const DefaultMinVNPayAmount int64 = 10000

// ErrAmountBelowMinimum is returned when a gateway payment is requested for too small an amount
var ErrAmountBelowMinimum = errors.New("order total is below the minimum amount for online payment")

// Form is the checkout request. The same rules run in the API and in the storefront client.
type Form struct {
	RecipientName   string         `json:"recipientName" binding:"required,fullname,max=150"`
	RecipientGender string         `json:"recipientGender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	RecipientEmail  string         `json:"recipientEmail" binding:"required,mailbox,max=255"`
	RecipientPhone  string         `json:"recipientPhone" binding:"required,vnphone"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod" binding:"required,oneof=HOME_DELIVERY STORE_PICKUP"`
	ShippingAddress string         `json:"shippingAddress" binding:"required_if=DeliveryMethod HOME_DELIVERY,max=500"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod" binding:"required,oneof=COD VNPAY"`
	Note            string         `json:"note" binding:"max=1000"`
	RequestInvoice  bool           `json:"requestInvoice"`
	CompanyName     string         `json:"companyName" binding:"required_if=RequestInvoice true,max=255"`
	CompanyTaxCode  string         `json:"companyTaxCode" binding:"required_if=RequestInvoice true,max=20"`
	CompanyAddress  string         `json:"companyAddress" binding:"required_if=RequestInvoice true,max=500"`
}

// Normalize trims every text field and drops fields that do not apply
func (f *Form) Normalize() {
	for _, p := range []*string{
		&f.RecipientName, &f.RecipientGender, &f.RecipientEmail, &f.RecipientPhone,
		&f.ShippingAddress, &f.Note, &f.CompanyName, &f.CompanyTaxCode, &f.CompanyAddress,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.RecipientName = strings.Join(strings.Fields(f.RecipientName), " ")
	if f.DeliveryMethod == DeliveryStorePickup {
		f.ShippingAddress = ""
	}
	if !f.RequestInvoice {
		f.CompanyName, f.CompanyTaxCode, f.CompanyAddress = "", "", ""
	}
}

// ValidationError lists the fields that failed, keyed by their JSON name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

var (
	validatorOnce sync.Once
	formValidator *validator.Validate
)

// Validate normalizes f and checks it, returning a *ValidationError on failure
func Validate(f *Form) error {
	validatorOnce.Do(func() { formValidator = validation.NewBinding() })

	f.Normalize()
	err := formValidator.Struct(f)
	if err == nil {
		return nil
	}
	if details := validation.Describe(err); details != nil {
		return &ValidationError{Fields: details}
	}
	return err
}

// CheckAmount enforces the gateway minimum for online payments. Exactly the
// minimum is accepted.
func CheckAmount(method PaymentMethod, total, minAmount int64) error {
	if method == PaymentVNPay && total < minAmount {
		return ErrAmountBelowMinimum
	}
	return nil
}

// MinimumMessage is the customer-facing explanation of the gateway minimum
func MinimumMessage(minAmount int64) string {
	return "Thanh toán VNPAY yêu cầu đơn hàng tối thiểu " + money.FormatVND(minAmount)
}
