// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// OrderService is the order API used by OrderHandler
type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, form *checkout.Form) (*order.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*order.Order, error)
	GetOrderAdmin(ctx context.Context, orderID uint) (*order.Order, error)
	GetUserOrders(ctx context.Context, userID uint, q pagination.Query) ([]order.Order, int64, error)
	GetOrders(ctx context.Context, q pagination.Query, status order.OrderStatus, paymentStatus order.PaymentStatus) ([]order.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID, adminID uint, req *order.UpdateStatusRequest) (*order.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uint, reason string) (*order.Order, error)
	UpdateOrder(ctx context.Context, userID, orderID uint, req *order.UpdateOrderRequest) (*order.Order, error)
	UpdateOrderAdmin(ctx context.Context, orderID uint, req *order.UpdateOrderRequest) (*order.Order, error)
	Invoice(ctx context.Context, userID, orderID uint) ([]byte, *order.Order, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders OrderService
	log    logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// CreateOrder handles POST /orders. Totals are computed server side from the
// cart; any amount in the body is ignored.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	form, ok := decodeForm(c)
	if !ok {
		return
	}

	o, err := h.orders.CreateOrder(c.Request.Context(), userID, form)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, o, "Order created successfully")
}

// GetOrders handles GET /orders (the caller's own orders)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	q := pagination.FromContext(c)
	items, total, err := h.orders.GetUserOrders(c.Request.Context(), userID, q)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, o)
}

// UpdateOrder handles PUT /orders/:id while the order is still pending
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req order.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.orders.UpdateOrder(c.Request.Context(), userID, orderID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, o, "Order updated successfully")
}

// CancelOrder handles PUT /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req order.CancelOrderRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	h.cancel(c, req.Reason)
}

// DeleteOrder handles DELETE /orders/:id. Orders are never deleted; the
// customer's order is cancelled instead.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	h.cancel(c, order.CustomerCancelReason)
}

func (h *OrderHandler) cancel(c *gin.Context, reason string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.CancelOrder(c.Request.Context(), userID, orderID, reason)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, o, "Order cancelled successfully")
}

// GetInvoice handles GET /orders/:id/invoice and streams the VAT invoice PDF
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	pdf, o, err := h.orders.Invoice(c.Request.Context(), userID, orderID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="hoa-don-%s.pdf"`, o.OrderCode))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// AdminGetOrders handles GET /admin/orders?status=&paymentStatus=
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	status := order.OrderStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		response.Error(c, http.StatusBadRequest, "Invalid status", string(status)+" is not an order status")
		return
	}
	paymentStatus := order.PaymentStatus(c.Query("paymentStatus"))
	switch paymentStatus {
	case "", order.PaymentStatusPending, order.PaymentStatusPaid, order.PaymentStatusFailed:
	default:
		response.Error(c, http.StatusBadRequest, "Invalid paymentStatus", string(paymentStatus)+" is not a payment status")
		return
	}

	q := pagination.FromContext(c)
	items, total, err := h.orders.GetOrders(c.Request.Context(), q, status, paymentStatus)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// AdminGetOrder handles GET /admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetOrderAdmin(c.Request.Context(), orderID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, o)
}

// AdminUpdateOrder handles PUT /admin/orders/:id
func (h *OrderHandler) AdminUpdateOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req order.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.orders.UpdateOrderAdmin(c.Request.Context(), orderID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, o, "Order updated successfully")
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req order.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), orderID, adminID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, o, "Order status updated successfully")
}
