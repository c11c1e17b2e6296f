// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/order"
)

var (
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrAttemptNotFound   = errors.New("payment transaction not found")
	ErrAmountMismatch    = errors.New("paid amount does not match the order total")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrAttemptResolved   = errors.New("payment transaction is already resolved")
	ErrNotVNPayOrder     = errors.New("order is not paid through VNPAY")
	ErrNotCODOrder       = errors.New("order is not cash on delivery")
	ErrOrderClosed       = errors.New("order is cancelled or returned")
	ErrPaymentInProgress = errors.New("payment is being processed, try again shortly")
	ErrGatewayDisabled   = errors.New("VNPAY is not configured")
)

// OrderReader loads orders; order.Repository satisfies it
type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*order.Order, error)
}

// Locker serialises settlement of one order across requests
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// Service handles payment business logic
type Service struct {
	repo    Repository
	orders  OrderReader
	gateway *VNPay
	locks   Locker
	events  order.Publisher
	cfg     config.VNPayConfig
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a new payment service
func NewService(repo Repository, orders OrderReader, gateway *VNPay, locks Locker, events order.Publisher, cfg config.VNPayConfig, log logrus.FieldLogger) *Service {
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = checkout.DefaultMinVNPayAmount
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	return &Service{
		repo:    repo,
		orders:  orders,
		gateway: gateway,
		locks:   locks,
		events:  events,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// CreatePaymentURL signs a gateway URL for an unpaid VNPAY order owned by userID
func (s *Service) CreatePaymentURL(ctx context.Context, userID, orderID uint, clientIP string) (*PaymentURL, error) {
	if !s.gateway.Enabled() {
		return nil, ErrGatewayDisabled
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrOrderNotFound
	}
	switch {
	case o.PaymentMethod != checkout.PaymentVNPay:
		return nil, ErrNotVNPayOrder
	case o.IsPaid():
		return nil, ErrAlreadyPaid
	case o.Status.IsTerminal():
		return nil, ErrOrderClosed
	}
	if err := checkout.CheckAmount(o.PaymentMethod, o.TotalAmount, s.cfg.MinAmount); err != nil {
		return nil, err
	}

	txnRef := strings.ReplaceAll(uuid.NewString(), "-", "")
	payURL, expires, err := s.gateway.BuildURL(PayRequest{
		TxnRef:    txnRef,
		Amount:    o.TotalAmount,
		OrderInfo: "Thanh toan don hang " + o.OrderCode,
		ClientIP:  clientIP,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build payment url: %w", err)
	}

	attempt := &Attempt{
		OrderID:     o.ID,
		Gateway:     GatewayVNPay,
		TxnRef:      txnRef,
		Amount:      o.TotalAmount,
		RedirectURL: payURL,
		Result:      order.PaymentStatusPending,
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": o.ID, "txn_ref": txnRef, "amount": o.TotalAmount}).
		Info("payment url created")
	return &PaymentURL{OrderID: o.ID, TxnRef: txnRef, Amount: o.TotalAmount, URL: payURL, ExpiresAt: expires}, nil
}

// ProcessReturn verifies the query the gateway appended to the return URL and
// settles the order. A bad signature changes nothing. An order that is
// already PAID is reported as it is.
func (s *Service) ProcessReturn(ctx context.Context, query url.Values) (*Result, error) {
	res, _, err := s.settle(ctx, query)
	return res, err
}

// HandleIPN is the server-to-server notification from the gateway
func (s *Service) HandleIPN(ctx context.Context, query url.Values) IPNResponse {
	_, changed, err := s.settle(ctx, query)
	switch {
	case errors.Is(err, ErrInvalidSignature):
		return ipnInvalidSignature
	case errors.Is(err, ErrAttemptNotFound), errors.Is(err, order.ErrOrderNotFound):
		return ipnOrderNotFound
	case errors.Is(err, ErrAmountMismatch):
		return ipnInvalidAmount
	case err != nil:
		s.log.WithError(err).Error("ipn processing failed")
		return ipnUnknownError
	case !changed:
		return ipnAlreadyConfirmed
	default:
		return ipnSuccess
	}
}

func (s *Service) settle(ctx context.Context, query url.Values) (*Result, bool, error) {
	if !s.gateway.Verify(query) {
		s.log.WithField("txn_ref", query.Get("vnp_TxnRef")).Warn("payment return with invalid signature")
		return nil, false, ErrInvalidSignature
	}
	ret, err := s.gateway.ParseReturn(query)
	if err != nil {
		return nil, false, fmt.Errorf("%v: %w", err, ErrInvalidSignature)
	}

	attempt, err := s.repo.FindAttempt(ctx, ret.TxnRef)
	if err != nil {
		return nil, false, err
	}

	release, ok, err := s.locks.Acquire(ctx, "order:"+strconv.FormatUint(uint64(attempt.OrderID), 10), s.cfg.LockTTL)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, ErrPaymentInProgress
	}
	defer release()

	// re-read under the lock; another return may have settled it
	if attempt, err = s.repo.FindAttempt(ctx, ret.TxnRef); err != nil {
		return nil, false, err
	}
	o, err := s.orders.FindByID(ctx, attempt.OrderID)
	if err != nil {
		return nil, false, err
	}
	if o.IsPaid() {
		return resultFor(o, ret.ResponseCode), false, nil
	}
	// each transaction is resolved once, whichever of return and IPN arrives first
	if attempt.Result != order.PaymentStatusPending {
		return resultFor(o, attempt.ResponseCode), false, nil
	}
	if ret.Amount != attempt.Amount || attempt.Amount != o.TotalAmount {
		s.log.WithFields(logrus.Fields{
			"order_id": o.ID,
			"txn_ref":  ret.TxnRef,
			"paid":     ret.Amount,
			"expected": o.TotalAmount,
		}).Warn("payment amount mismatch")
		return nil, false, ErrAmountMismatch
	}

	status := order.PaymentStatusFailed
	if ret.Succeeded() {
		status = order.PaymentStatusPaid
	}
	attempt.ResponseCode = ret.ResponseCode
	attempt.TransactionNo = ret.TransactionNo
	attempt.BankCode = ret.BankCode
	attempt.ReturnParams = query.Encode()

	now := s.now()
	err = s.repo.Settle(ctx, Settlement{
		OrderID: o.ID,
		Status:  status,
		At:      now,
		Attempt: attempt,
		History: &order.OrderStatusHistory{
			Status: o.Status,
			Note:   fmt.Sprintf("VNPAY payment %s (code %s)", status, ret.ResponseCode),
		},
	})
	if errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrAttemptResolved) {
		fresh, ferr := s.orders.FindByID(ctx, o.ID)
		if ferr != nil {
			return nil, false, ferr
		}
		return resultFor(fresh, ret.ResponseCode), false, nil
	}
	if err != nil {
		return nil, false, err
	}

	previous := o.PaymentStatus
	o.PaymentStatus = status
	if status == order.PaymentStatusPaid {
		o.PaidAt = &now
	}
	s.log.WithFields(logrus.Fields{
		"order_id":      o.ID,
		"txn_ref":       ret.TxnRef,
		"response_code": ret.ResponseCode,
		"from":          previous,
		"to":            status,
	}).Info("payment settled")
	s.publish(ctx, o)

	return resultFor(o, ret.ResponseCode), true, nil
}

// ReconcileCOD marks a cash on delivery order as paid once staff collected the money
func (s *Service) ReconcileCOD(ctx context.Context, orderID, adminID uint) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != checkout.PaymentCOD {
		return nil, ErrNotCODOrder
	}
	if o.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if o.Status == order.OrderStatusCancelled {
		return nil, ErrOrderClosed
	}

	now := s.now()
	err = s.repo.Settle(ctx, Settlement{
		OrderID: o.ID,
		Status:  order.PaymentStatusPaid,
		At:      now,
		History: &order.OrderStatusHistory{Status: o.Status, Note: "COD payment collected", ChangedBy: adminID},
	})
	if err != nil {
		return nil, err
	}

	o.PaymentStatus = order.PaymentStatusPaid
	o.PaidAt = &now
	s.log.WithFields(logrus.Fields{"order_id": o.ID, "admin_id": adminID}).Info("cod payment reconciled")
	s.publish(ctx, o)
	return s.orders.FindByID(ctx, o.ID)
}

// GetAttempts lists the gateway attempts of an order for the back office
func (s *Service) GetAttempts(ctx context.Context, orderID uint) ([]Attempt, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListAttempts(ctx, orderID)
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, order.NewEvent(order.EventPaymentUpdated, o, s.now())); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Error("failed to publish payment event")
	}
}
