package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/pkg/logger"
)

type fakePayments struct {
	createErr error
	returnErr error
	ipn       payment.IPNResponse

	gotUser   uint
	gotOrder  uint
	gotQuery  url.Values
	reconcile uint
}

func (f *fakePayments) CreatePaymentURL(_ context.Context, userID, orderID uint, _ string) (*payment.PaymentURL, error) {
	f.gotUser, f.gotOrder = userID, orderID
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payment.PaymentURL{OrderID: orderID, TxnRef: "DH1-1", Amount: 250000, URL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?vnp_Amount=25000000"}, nil
}

func (f *fakePayments) ProcessReturn(_ context.Context, query url.Values) (*payment.Result, error) {
	f.gotQuery = query
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	return &payment.Result{OrderID: 1, OrderCode: "DH1", PaymentMethod: "VNPAY", PaymentStatus: order.PaymentStatusPaid, ResponseCode: "00"}, nil
}

func (f *fakePayments) HandleIPN(_ context.Context, query url.Values) payment.IPNResponse {
	f.gotQuery = query
	return f.ipn
}

func (f *fakePayments) ReconcileCOD(_ context.Context, orderID, adminID uint) (*order.Order, error) {
	f.reconcile = adminID
	return &order.Order{ID: orderID, PaymentStatus: order.PaymentStatusPaid}, nil
}

func (f *fakePayments) GetAttempts(context.Context, uint) ([]payment.Attempt, error) {
	return []payment.Attempt{}, nil
}

func newPaymentRouter(t *testing.T, payments *fakePayments) http.Handler {
	r, required := newTestEngine(t)
	h := NewPaymentHandler(payments, logger.Discard())
	r.GET("/payment/vn-pay", required, h.CreateVNPayURL)
	r.GET("/payment/vn-pay/return", h.VNPayReturn)
	r.GET("/payment/vn-pay/ipn", h.VNPayIPN)
	r.POST("/admin/orders/:id/reconcile-cod", required, h.AdminReconcileCOD)
	return r
}

func TestCreateVNPayURL(t *testing.T) {
	payments := &fakePayments{}
	w := doJSON(newPaymentRouter(t, payments), http.MethodGet, "/payment/vn-pay?orderId=12", customerToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Contains(t, data["paymentUrl"], "vnp_Amount=25000000")
	assert.Equal(t, customerID, payments.gotUser)
	assert.Equal(t, uint(12), payments.gotOrder)
}

func TestCreateVNPayURL_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"missing order id", "/payment/vn-pay", nil, http.StatusBadRequest},
		{"non numeric order id", "/payment/vn-pay?orderId=x", nil, http.StatusBadRequest},
		{"cod order", "/payment/vn-pay?orderId=1", payment.ErrNotVNPayOrder, http.StatusUnprocessableEntity},
		{"already paid", "/payment/vn-pay?orderId=1", payment.ErrAlreadyPaid, http.StatusConflict},
		{"gateway off", "/payment/vn-pay?orderId=1", payment.ErrGatewayDisabled, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(newPaymentRouter(t, &fakePayments{createErr: tt.err}), http.MethodGet, tt.path, customerToken, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestVNPayReturn_ForwardsQuery(t *testing.T) {
	payments := &fakePayments{}
	w := doJSON(newPaymentRouter(t, payments), http.MethodGet, "/payment/vn-pay/return?vnp_TxnRef=DH1-1&vnp_ResponseCode=00", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DH1-1", payments.gotQuery.Get("vnp_TxnRef"))
	assert.Equal(t, "PAID", decode(t, w)["data"].(map[string]any)["paymentStatus"])
}

func TestVNPayReturn_InvalidSignature(t *testing.T) {
	w := doJSON(newPaymentRouter(t, &fakePayments{returnErr: payment.ErrInvalidSignature}), http.MethodGet, "/payment/vn-pay/return?vnp_SecureHash=bad", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVNPayIPN_AlwaysOK(t *testing.T) {
	payments := &fakePayments{ipn: payment.IPNResponse{RspCode: "97", Message: "Invalid signature"}}
	w := doJSON(newPaymentRouter(t, payments), http.MethodGet, "/payment/vn-pay/ipn?vnp_TxnRef=DH1-1", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"RspCode":"97","Message":"Invalid signature"}`, w.Body.String())
}

func TestAdminReconcileCOD(t *testing.T) {
	payments := &fakePayments{}
	w := doJSON(newPaymentRouter(t, payments), http.MethodPost, "/admin/orders/3/reconcile-cod", adminToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, adminID, payments.reconcile)
	assert.Equal(t, "Payment recorded", decode(t, w)["data"].(map[string]any)["message"])
}
