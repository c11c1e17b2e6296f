package payment

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

type fakeRepo struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
	orders   *fakeOrders
	settled  int
	nextID   uint
}

func (r *fakeRepo) CreateAttempt(_ context.Context, a *Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.attempts[a.TxnRef] = &cp
	return nil
}

func (r *fakeRepo) FindAttempt(_ context.Context, txnRef string) (*Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[txnRef]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) ListAttempts(_ context.Context, orderID uint) ([]Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Attempt
	for _, a := range r.attempts {
		if a.OrderID == orderID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) Settle(_ context.Context, s Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Attempt != nil && r.attempts[s.Attempt.TxnRef].Result != order.PaymentStatusPending {
		return ErrAttemptResolved
	}
	o := r.orders.orders[s.OrderID]
	if o.PaymentStatus == order.PaymentStatusPaid {
		return ErrAlreadyPaid
	}
	o.PaymentStatus = s.Status
	if s.Status == order.PaymentStatusPaid {
		at := s.At
		o.PaidAt = &at
	}
	if s.Attempt != nil {
		stored := r.attempts[s.Attempt.TxnRef]
		stored.Result = s.Status
		stored.ResponseCode = s.Attempt.ResponseCode
	}
	r.settled++
	return nil
}

type fakeOrders struct {
	orders map[uint]*order.Order
}

func (f *fakeOrders) FindByID(_ context.Context, id uint) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *fakeLocker) Acquire(_ context.Context, name string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
	}, true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e order.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	svc    *Service
	repo   *fakeRepo
	orders *fakeOrders
	locks  *fakeLocker
	events *recordingPublisher
	vnpay  *VNPay
}

func newFixture(orders ...*order.Order) *fixture {
	fo := &fakeOrders{orders: map[uint]*order.Order{}}
	for _, o := range orders {
		fo.orders[o.ID] = o
	}
	f := &fixture{
		orders: fo,
		repo:   &fakeRepo{attempts: map[string]*Attempt{}, orders: fo},
		locks:  &fakeLocker{held: map[string]bool{}},
		events: &recordingPublisher{},
		vnpay:  NewVNPay(testVNPayConfig()),
	}
	f.svc = NewService(f.repo, f.orders, f.vnpay, f.locks, f.events, testVNPayConfig(), logger.Discard())
	f.svc.now = func() time.Time { return time.Date(2024, 3, 9, 3, 0, 0, 0, time.UTC) }
	return f
}

func vnpayOrder(id uint, total int64) *order.Order {
	return &order.Order{
		ID:            id,
		OrderCode:     "ORD-20240309-00001",
		UserID:        5,
		Status:        order.OrderStatusPending,
		PaymentMethod: checkout.PaymentVNPay,
		PaymentStatus: order.PaymentStatusPending,
		TotalAmount:   total,
	}
}

func (f *fixture) returnQuery(txnRef string, amount int64, code string) url.Values {
	return signedReturn(f.vnpay, map[string]string{
		"vnp_TxnRef":            txnRef,
		"vnp_Amount":            strconv.FormatInt(amount*100, 10),
		"vnp_ResponseCode":      code,
		"vnp_TransactionStatus": code,
		"vnp_TransactionNo":     "14000001",
		"vnp_BankCode":          "NCB",
	})
}

func TestCreatePaymentURL(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))

	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, int64(250000), p.Amount)
	assert.Contains(t, p.URL, "vnp_SecureHash=")
	assert.Len(t, f.repo.attempts, 1)

	_, err = f.svc.CreatePaymentURL(context.Background(), 6, 1, "")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestCreatePaymentURL_Minimum(t *testing.T) {
	f := newFixture(vnpayOrder(1, 9999), vnpayOrder(2, 10000))

	_, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	assert.ErrorIs(t, err, checkout.ErrAmountBelowMinimum)

	_, err = f.svc.CreatePaymentURL(context.Background(), 5, 2, "")
	assert.NoError(t, err)
}

func TestCreatePaymentURL_Rejections(t *testing.T) {
	cod := vnpayOrder(1, 50000)
	cod.PaymentMethod = checkout.PaymentCOD
	paid := vnpayOrder(2, 50000)
	paid.PaymentStatus = order.PaymentStatusPaid
	cancelled := vnpayOrder(3, 50000)
	cancelled.Status = order.OrderStatusCancelled
	f := newFixture(cod, paid, cancelled)

	_, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	assert.ErrorIs(t, err, ErrNotVNPayOrder)
	_, err = f.svc.CreatePaymentURL(context.Background(), 5, 2, "")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	_, err = f.svc.CreatePaymentURL(context.Background(), 5, 3, "")
	assert.ErrorIs(t, err, ErrOrderClosed)
	assert.Empty(t, f.repo.attempts)
}

func TestProcessReturn_Success(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)

	res, err := f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 250000, "00"))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, res.PaymentStatus)
	assert.Equal(t, "VNPAY", res.PaymentMethod)
	assert.Equal(t, int64(250000), res.TotalAmount)
	assert.Equal(t, 1, f.events.count())
	assert.NotNil(t, f.orders.orders[1].PaidAt)
	// order status is a separate axis
	assert.Equal(t, order.OrderStatusPending, f.orders.orders[1].Status)
}

func TestProcessReturn_Idempotent(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)
	q := f.returnQuery(p.TxnRef, 250000, "00")

	first, err := f.svc.ProcessReturn(context.Background(), q)
	require.NoError(t, err)
	second, err := f.svc.ProcessReturn(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.repo.settled)
	assert.Equal(t, 1, f.events.count())

	// a late failure callback cannot undo a payment
	res, err := f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 250000, "24"))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, res.PaymentStatus)
	assert.Equal(t, 1, f.repo.settled)
}

func TestProcessReturn_Failure(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)

	res, err := f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 250000, "24"))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusFailed, res.PaymentStatus)
	assert.Equal(t, "Khách hàng hủy giao dịch", res.Message)

	// the customer may retry after a failure
	retry, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)
	res, err = f.svc.ProcessReturn(context.Background(), f.returnQuery(retry.TxnRef, 250000, "00"))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, res.PaymentStatus)
}

func TestProcessReturn_FailedAttemptResolvedOnce(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)
	q := f.returnQuery(p.TxnRef, 250000, "24")

	first, err := f.svc.ProcessReturn(context.Background(), q)
	require.NoError(t, err)
	second, err := f.svc.ProcessReturn(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStatusFailed, first.PaymentStatus)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.repo.settled)
	assert.Equal(t, 1, f.events.count())

	// the gateway notification for the same transaction arrives after the browser
	assert.Equal(t, "02", f.svc.HandleIPN(context.Background(), q).RspCode)
	assert.Equal(t, 1, f.repo.settled)
	assert.Equal(t, 1, f.events.count())

	// a success reported for an already failed transaction does not pay the order
	res, err := f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 250000, "00"))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusFailed, res.PaymentStatus)
	assert.Equal(t, 1, f.repo.settled)
}

func TestHandleIPN_FailedTransactionReplayed(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)
	q := f.returnQuery(p.TxnRef, 250000, "24")
	ctx := context.Background()

	assert.Equal(t, "00", f.svc.HandleIPN(ctx, q).RspCode)
	assert.Equal(t, "02", f.svc.HandleIPN(ctx, q).RspCode)
	assert.Equal(t, 1, f.repo.settled)
	assert.Equal(t, 1, f.events.count())
}

func TestProcessReturn_InvalidSignature(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)

	q := f.returnQuery(p.TxnRef, 250000, "00")
	q.Set("vnp_SecureHash", "deadbeef")

	_, err = f.svc.ProcessReturn(context.Background(), q)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, order.PaymentStatusPending, f.orders.orders[1].PaymentStatus)
	assert.Zero(t, f.repo.settled)
	assert.Zero(t, f.events.count())
}

func TestProcessReturn_AmountMismatch(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)

	_, err = f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 10000, "00"))
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, order.PaymentStatusPending, f.orders.orders[1].PaymentStatus)
}

func TestProcessReturn_Locked(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)

	release, ok, err := f.locks.Acquire(context.Background(), "order:1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 250000, "00"))
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	release()
	_, err = f.svc.ProcessReturn(context.Background(), f.returnQuery(p.TxnRef, 250000, "00"))
	assert.NoError(t, err)
}

func TestHandleIPN(t *testing.T) {
	f := newFixture(vnpayOrder(1, 250000))
	p, err := f.svc.CreatePaymentURL(context.Background(), 5, 1, "")
	require.NoError(t, err)
	ctx := context.Background()

	bad := f.returnQuery(p.TxnRef, 250000, "00")
	bad.Set("vnp_SecureHash", "00")
	assert.Equal(t, "97", f.svc.HandleIPN(ctx, bad).RspCode)
	assert.Equal(t, "01", f.svc.HandleIPN(ctx, f.returnQuery("unknown", 250000, "00")).RspCode)
	assert.Equal(t, "04", f.svc.HandleIPN(ctx, f.returnQuery(p.TxnRef, 1, "00")).RspCode)
	assert.Equal(t, "00", f.svc.HandleIPN(ctx, f.returnQuery(p.TxnRef, 250000, "00")).RspCode)
	assert.Equal(t, "02", f.svc.HandleIPN(ctx, f.returnQuery(p.TxnRef, 250000, "00")).RspCode)
}

func TestReconcileCOD(t *testing.T) {
	cod := vnpayOrder(1, 50000)
	cod.PaymentMethod = checkout.PaymentCOD
	f := newFixture(cod, vnpayOrder(2, 50000))

	o, err := f.svc.ReconcileCOD(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)

	_, err = f.svc.ReconcileCOD(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	_, err = f.svc.ReconcileCOD(context.Background(), 2, 99)
	assert.ErrorIs(t, err, ErrNotCODOrder)
}
