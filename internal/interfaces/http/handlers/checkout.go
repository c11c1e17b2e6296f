// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// CheckoutService prices the cart and dry-runs the checkout form
type CheckoutService interface {
	GetCheckoutSummary(ctx context.Context, userID uint) (*checkout.Summary, error)
	ValidateCheckout(ctx context.Context, userID uint, f *checkout.Form) (*checkout.Validation, error)
}

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkout CheckoutService
	log      logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(svc CheckoutService, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc, log: log}
}

// GetCheckoutSummary handles GET /checkout/summary. An empty cart carries
// redirect "/" so the page can leave.
func (h *CheckoutHandler) GetCheckoutSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.checkout.GetCheckoutSummary(c.Request.Context(), userID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, summary)
}

// ValidateCheckout handles POST /checkout/validate
func (h *CheckoutHandler) ValidateCheckout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	form, ok := decodeForm(c)
	if !ok {
		return
	}

	result, err := h.checkout.ValidateCheckout(c.Request.Context(), userID, form)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, result)
}

// decodeForm reads a checkout form without running binding validation;
// the domain normalizes before it validates.
func decodeForm(c *gin.Context) (*checkout.Form, bool) {
	var form checkout.Form
	if err := json.NewDecoder(c.Request.Body).Decode(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return nil, false
	}
	return &form, true
}
