package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

var fixedNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	carts    *fakeCarts
	events   *recordingPublisher
	invoices *fakeInvoices
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		carts:    &fakeCarts{carts: map[uint]*cart.Cart{}},
		events:   &recordingPublisher{},
		invoices: &fakeInvoices{enabled: true},
	}
	f.svc = NewService(f.repo, f.carts, f.events, f.invoices, 10000, logger.Discard())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) setCart(userID uint, lines ...cart.Line) {
	c := &cart.Cart{Items: lines}
	for _, l := range lines {
		c.TotalAmount += l.LineTotal
		c.TotalQuantity += l.Quantity
	}
	c.ItemCount = len(lines)
	f.carts.carts[userID] = c
}

func line(id uint, price int64, qty int) cart.Line {
	return cart.Line{
		ProductID:   id,
		ProductName: "Sản phẩm",
		UnitPrice:   price,
		Quantity:    qty,
		LineTotal:   price * int64(qty),
		Available:   true,
	}
}

func validForm(method checkout.PaymentMethod) *checkout.Form {
	return &checkout.Form{
		RecipientName:   "Nguyễn Văn An",
		RecipientEmail:  "an@example.com",
		RecipientPhone:  "0912345678",
		DeliveryMethod:  checkout.DeliveryHome,
		ShippingAddress: "12 Lê Lợi, Quận 1, TP.HCM",
		PaymentMethod:   method,
	}
}

func TestTransitionTable(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivering,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned,
	}
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:  {OrderStatusDelivering, OrderStatusCancelled},
		OrderStatusDelivering: {OrderStatusDelivered, OrderStatusReturned},
		OrderStatusDelivered:  {OrderStatusReturned},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusReturned.IsTerminal())
	assert.False(t, OrderStatusDelivered.IsTerminal())
	assert.False(t, OrderStatus("SHIPPED").IsValid())
	assert.False(t, OrderStatusPending.CanTransition(OrderStatusDelivered))
}

func TestCreateOrder_SnapshotsPrices(t *testing.T) {
	f := newFixture()
	f.setCart(7, line(1, 150000, 2), line(2, 45000, 1))

	o, err := f.svc.CreateOrder(context.Background(), 7, validForm(checkout.PaymentCOD))
	require.NoError(t, err)

	assert.Equal(t, int64(345000), o.TotalAmount)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, "ORD-20240309-00001", o.OrderCode)
	assert.Equal(t, []uint{7}, f.repo.clearedFor)
	assert.Equal(t, []EventType{EventOrderCreated}, f.events.types())

	// a later catalog price change must not move the stored total
	f.setCart(7, line(1, 990000, 2))
	stored, err := f.svc.GetOrder(context.Background(), 7, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(345000), stored.TotalAmount)
	assert.Equal(t, ComputeTotal(stored.Items), stored.TotalAmount)
	assert.Equal(t, int64(150000), stored.Items[0].PriceAtTimeOfOrder)
}

func TestCreateOrder_VNPayMinimum(t *testing.T) {
	tests := []struct {
		name    string
		price   int64
		method  checkout.PaymentMethod
		wantErr error
	}{
		{name: "below minimum", price: 9999, method: checkout.PaymentVNPay, wantErr: checkout.ErrAmountBelowMinimum},
		{name: "exactly minimum", price: 10000, method: checkout.PaymentVNPay},
		{name: "cod below minimum", price: 9999, method: checkout.PaymentCOD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.setCart(1, line(1, tt.price, 1))

			o, err := f.svc.CreateOrder(context.Background(), 1, validForm(tt.method))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.repo.orders)
				assert.Empty(t, f.events.types())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.price, o.TotalAmount)
		})
	}
}

func TestCreateOrder_Rejections(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), 1, validForm(checkout.PaymentCOD))
	assert.ErrorIs(t, err, cart.ErrCartEmpty)

	unavailable := line(3, 50000, 1)
	unavailable.Available = false
	f.setCart(1, unavailable)
	_, err = f.svc.CreateOrder(context.Background(), 1, validForm(checkout.PaymentCOD))
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	f.setCart(1, line(1, 50000, 1))
	form := validForm(checkout.PaymentCOD)
	form.RecipientName = "An"
	_, err = f.svc.CreateOrder(context.Background(), 1, form)
	var verr *checkout.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "recipientName")
	assert.Empty(t, f.repo.orders)
}

func TestGetOrder_OtherUser(t *testing.T) {
	f := newFixture()
	f.setCart(1, line(1, 50000, 1))
	o, err := f.svc.CreateOrder(context.Background(), 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)

	_, err = f.svc.GetOrder(context.Background(), 2, o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, total, err := f.svc.GetUserOrders(context.Background(), 2, pagination.Query{PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	f.setCart(1, line(1, 50000, 1))
	o, err := f.svc.CreateOrder(context.Background(), 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: OrderStatusDelivered})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, next := range []OrderStatus{OrderStatusConfirmed, OrderStatusDelivering, OrderStatusDelivered} {
		o, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: next})
		require.NoError(t, err)
		assert.Equal(t, next, o.Status)
	}
	require.NotNil(t, o.DeliveredAt)
	assert.Len(t, o.StatusHistory, 4)

	// payment axis is untouched by status changes
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)

	o, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: OrderStatusReturned})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: OrderStatusPending})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	types := f.events.types()
	assert.Equal(t, EventOrderCreated, types[0])
	assert.Len(t, types, 5)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture()
	f.setCart(1, line(1, 50000, 1))
	ctx := context.Background()
	o, err := f.svc.CreateOrder(ctx, 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(ctx, 2, o.ID, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	cancelled, err := f.svc.CancelOrder(ctx, 1, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, CustomerCancelReason, cancelled.CancelReason)

	_, err = f.svc.CancelOrder(ctx, 1, o.ID, "again")
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestUpdateStatus_AdminCancelReason(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.setCart(1, line(1, 50000, 1))
	silent, err := f.svc.CreateOrder(ctx, 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)
	silent, err = f.svc.UpdateStatus(ctx, silent.ID, 99, &UpdateStatusRequest{Status: OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, AdminCancelReason, silent.CancelReason)

	f.setCart(1, line(1, 50000, 1))
	noted, err := f.svc.CreateOrder(ctx, 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)
	noted, err = f.svc.UpdateStatus(ctx, noted.ID, 99, &UpdateStatusRequest{Status: OrderStatusCancelled, Note: "Hết hàng"})
	require.NoError(t, err)
	assert.Equal(t, "Hết hàng", noted.CancelReason)
}

func TestCancelOrder_AfterDispatch(t *testing.T) {
	f := newFixture()
	f.setCart(1, line(1, 50000, 1))
	ctx := context.Background()
	o, err := f.svc.CreateOrder(ctx, 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: OrderStatusConfirmed})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: OrderStatusDelivering})
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(ctx, 1, o.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture()
	f.setCart(1, line(1, 50000, 1))
	ctx := context.Background()
	o, err := f.svc.CreateOrder(ctx, 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)

	req := &UpdateOrderRequest{
		RecipientName:  "Trần Thị Bình",
		RecipientEmail: "binh@example.com",
		RecipientPhone: "0387654321",
		DeliveryMethod: checkout.DeliveryHome,
	}
	_, err = f.svc.UpdateOrder(ctx, 1, o.ID, req)
	var verr *checkout.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "shippingAddress")

	req.DeliveryMethod = checkout.DeliveryStorePickup
	updated, err := f.svc.UpdateOrder(ctx, 1, o.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Trần Thị Bình", updated.RecipientName)
	assert.Empty(t, updated.ShippingAddress)

	_, err = f.svc.UpdateStatus(ctx, o.ID, 99, &UpdateStatusRequest{Status: OrderStatusConfirmed})
	require.NoError(t, err)
	_, err = f.svc.UpdateOrder(ctx, 1, o.ID, req)
	assert.ErrorIs(t, err, ErrOrderNotEditable)
}

func TestInvoice(t *testing.T) {
	f := newFixture()
	f.setCart(1, line(1, 50000, 2))
	ctx := context.Background()

	plain, err := f.svc.CreateOrder(ctx, 1, validForm(checkout.PaymentCOD))
	require.NoError(t, err)
	_, _, err = f.svc.Invoice(ctx, 1, plain.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotRequested)

	f.setCart(1, line(1, 50000, 2))
	form := validForm(checkout.PaymentCOD)
	form.RequestInvoice = true
	form.CompanyName = "Công ty TNHH ABC"
	form.CompanyTaxCode = "0312345678"
	form.CompanyAddress = "1 Nguyễn Huệ, Quận 1"
	withInvoice, err := f.svc.CreateOrder(ctx, 1, form)
	require.NoError(t, err)

	doc, o, err := f.svc.Invoice(ctx, 1, withInvoice.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
	assert.Equal(t, withInvoice.OrderCode, o.OrderCode)
	assert.Equal(t, "0312345678", f.invoices.last.CompanyTaxCode)
	assert.Equal(t, int64(100000), f.invoices.last.TotalAmount)

	f.invoices.enabled = false
	_, _, err = f.svc.Invoice(ctx, 1, withInvoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceUnavailable)
}
