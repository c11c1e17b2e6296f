// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// PaymentService is the gateway API used by PaymentHandler
type PaymentService interface {
	CreatePaymentURL(ctx context.Context, userID, orderID uint, clientIP string) (*payment.PaymentURL, error)
	ProcessReturn(ctx context.Context, query url.Values) (*payment.Result, error)
	HandleIPN(ctx context.Context, query url.Values) payment.IPNResponse
	ReconcileCOD(ctx context.Context, orderID, adminID uint) (*order.Order, error)
	GetAttempts(ctx context.Context, orderID uint) ([]payment.Attempt, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments PaymentService
	log      logrus.FieldLogger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments PaymentService, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// CreateVNPayURL handles GET /payment/vn-pay?orderId=
func (h *PaymentHandler) CreateVNPayURL(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := queryID(c, "orderId")
	if !ok {
		return
	}

	pu, err := h.payments.CreatePaymentURL(c.Request.Context(), userID, orderID, c.ClientIP())
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, pu)
}

// VNPayReturn handles GET /payment/vn-pay/return. The storefront forwards the
// gateway's query string untouched; nothing changes unless the signature holds.
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	result, err := h.payments.ProcessReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, result)
}

// VNPayIPN handles GET /payment/vn-pay/ipn. The gateway expects a bare
// {RspCode, Message} body with status 200 whatever the outcome.
func (h *PaymentHandler) VNPayIPN(c *gin.Context) {
	rsp := h.payments.HandleIPN(c.Request.Context(), c.Request.URL.Query())
	h.log.WithFields(logrus.Fields{
		"txn_ref":  c.Query("vnp_TxnRef"),
		"rsp_code": rsp.RspCode,
	}).Info("vnpay ipn handled")
	c.JSON(http.StatusOK, rsp)
}

// AdminReconcileCOD handles POST /admin/orders/:id/reconcile-cod
func (h *PaymentHandler) AdminReconcileCOD(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.payments.ReconcileCOD(c.Request.Context(), orderID, adminID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, o, "Payment recorded")
}

// AdminGetAttempts handles GET /admin/orders/:id/payments
func (h *PaymentHandler) AdminGetAttempts(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	attempts, err := h.payments.GetAttempts(c.Request.Context(), orderID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, attempts)
}
