package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/cart"
)

func validForm() *Form {
	return &Form{
		RecipientName:   "Nguyễn Văn An",
		RecipientEmail:  "an@example.vn",
		RecipientPhone:  "0912345678",
		DeliveryMethod:  DeliveryHome,
		ShippingAddress: "12 Lê Lợi, Quận 1, TP.HCM",
		PaymentMethod:   PaymentCOD,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validForm()))

	pickup := validForm()
	pickup.DeliveryMethod = DeliveryStorePickup
	pickup.ShippingAddress = ""
	assert.NoError(t, Validate(pickup), "store pickup needs no address")
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Form)
		field  string
	}{
		{"single word name", func(f *Form) { f.RecipientName = "An" }, "recipientName"},
		{"whitespace name", func(f *Form) { f.RecipientName = "   " }, "recipientName"},
		{"bad phone", func(f *Form) { f.RecipientPhone = "0112345678" }, "recipientPhone"},
		{"bad email", func(f *Form) { f.RecipientEmail = "an@" }, "recipientEmail"},
		{"email without domain suffix", func(f *Form) { f.RecipientEmail = "an@localhost" }, "recipientEmail"},
		{"email with display name", func(f *Form) { f.RecipientEmail = "An <an@example.vn>" }, "recipientEmail"},
		{"home delivery without address", func(f *Form) { f.ShippingAddress = "  " }, "shippingAddress"},
		{"unknown payment", func(f *Form) { f.PaymentMethod = "MOMO" }, "paymentMethod"},
		{"invoice without company", func(f *Form) {
			f.RequestInvoice = true
			f.CompanyTaxCode = "0101234567"
			f.CompanyAddress = "Hà Nội"
		}, "companyName"},
		{"invoice without tax code", func(f *Form) {
			f.RequestInvoice = true
			f.CompanyName = "Công ty ABC"
			f.CompanyAddress = "Hà Nội"
		}, "companyTaxCode"},
		{"invoice without company address", func(f *Form) {
			f.RequestInvoice = true
			f.CompanyName = "Công ty ABC"
			f.CompanyTaxCode = "0101234567"
		}, "companyAddress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(f)
			fields := fieldErrors(t, Validate(f))
			assert.Contains(t, fields, tt.field)
			assert.Len(t, fields, 1)
		})
	}
}

func TestNormalize_DropsUnusedFields(t *testing.T) {
	f := validForm()
	f.RecipientName = "  Trần   Thị  Bích "
	f.DeliveryMethod = DeliveryStorePickup
	f.CompanyName = "ignored"
	f.Normalize()

	assert.Equal(t, "Trần Thị Bích", f.RecipientName)
	assert.Empty(t, f.ShippingAddress)
	assert.Empty(t, f.CompanyName)
}

func TestCheckAmount(t *testing.T) {
	assert.ErrorIs(t, CheckAmount(PaymentVNPay, 9999, DefaultMinVNPayAmount), ErrAmountBelowMinimum)
	assert.NoError(t, CheckAmount(PaymentVNPay, 10000, DefaultMinVNPayAmount))
	assert.NoError(t, CheckAmount(PaymentCOD, 1, DefaultMinVNPayAmount), "COD has no minimum")
}

type stubCarts struct{ cart *cart.Cart }

func (s stubCarts) GetCart(context.Context, uint) (*cart.Cart, error) { return s.cart, nil }

func cartOf(total int64) *cart.Cart {
	return &cart.Cart{
		Items:       []cart.Line{{ProductID: 1, Quantity: 1, UnitPrice: total, LineTotal: total, Available: true}},
		ItemCount:   1,
		TotalAmount: total,
	}
}

func TestGetCheckoutSummary(t *testing.T) {
	ctx := context.Background()

	empty, err := NewService(stubCarts{&cart.Cart{}}, 0).GetCheckoutSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "/", empty.Redirect)
	assert.False(t, empty.VNPayEligible)

	small, err := NewService(stubCarts{cartOf(9999)}, 10000).GetCheckoutSummary(ctx, 1)
	require.NoError(t, err)
	assert.False(t, small.VNPayEligible)
	assert.False(t, small.PaymentMethods[1].Available)
	assert.NotEmpty(t, small.PaymentMethods[1].Reason)

	exact, err := NewService(stubCarts{cartOf(10000)}, 10000).GetCheckoutSummary(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exact.VNPayEligible)
	assert.Empty(t, exact.Redirect)
}

func TestValidateCheckout(t *testing.T) {
	svc := NewService(stubCarts{cartOf(5000)}, 10000)
	f := validForm()
	f.PaymentMethod = PaymentVNPay

	v, err := svc.ValidateCheckout(context.Background(), 1, f)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Errors, "paymentMethod")

	f.PaymentMethod = PaymentCOD
	v, err = svc.ValidateCheckout(context.Background(), 1, f)
	require.NoError(t, err)
	assert.True(t, v.Valid)
}
