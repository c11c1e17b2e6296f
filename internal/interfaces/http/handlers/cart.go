// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// CartService is the cart API used by CartHandler
type CartService interface {
	GetCart(ctx context.Context, userID uint) (*cart.Cart, error)
	AddToCart(ctx context.Context, userID uint, req *cart.AddToCartRequest) (*cart.Cart, error)
	UpdateCartItem(ctx context.Context, userID, productID uint, req *cart.UpdateCartItemRequest) (*cart.Cart, error)
	RemoveFromCart(ctx context.Context, userID, productID uint) (*cart.Cart, error)
	ClearCart(ctx context.Context, userID uint) error
}

// CartHandler handles cart endpoints. Carts belong to signed-in users.
type CartHandler struct {
	carts CartService
	log   logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts CartService, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ct, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, ct)
}

// AddToCart handles POST /cart/items. Adding a product already in the cart
// increases its quantity.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req cart.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	ct, err := h.carts.AddToCart(c.Request.Context(), userID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, ct, "Item added to cart")
}

// UpdateCartItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	var req cart.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	ct, err := h.carts.UpdateCartItem(c.Request.Context(), userID, productID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, ct, "Cart item updated")
}

// RemoveFromCart handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	ct, err := h.carts.RemoveFromCart(c.Request.Context(), userID, productID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, ct, "Item removed from cart")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.carts.ClearCart(c.Request.Context(), userID); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Cart cleared")
}
