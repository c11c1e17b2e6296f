// internal/client/endpoints.go
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	var pair auth.TokenPair
	req := user.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "auth/login", "", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Current returns the profile of the token's owner as the server sees it now
func (c *Client) Current(ctx context.Context) (*user.Profile, error) {
	var p user.Profile
	if err := c.do(ctx, http.MethodGet, "auth/current", "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Logout revokes the refresh session (and the current access token when one is sent)
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "auth/logout", "", user.RefreshRequest{RefreshToken: refreshToken}, nil)
}

// GetProducts lists the catalog with the standard listing parameters
func (c *Client) GetProducts(ctx context.Context, q pagination.Query) (*response.Page[product.Product], error) {
	var page response.Page[product.Product]
	if err := c.do(ctx, http.MethodGet, "products", q.Values().Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCart returns the caller's priced cart
func (c *Client) GetCart(ctx context.Context) (*cart.Cart, error) {
	var ct cart.Cart
	if err := c.do(ctx, http.MethodGet, "cart", "", nil, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// AddToCart adds quantity units of a product
func (c *Client) AddToCart(ctx context.Context, productID uint, quantity int) (*cart.Cart, error) {
	var ct cart.Cart
	req := cart.AddToCartRequest{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "cart/items", "", req, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// CreateOrder places an order from the caller's cart
func (c *Client) CreateOrder(ctx context.Context, form *checkout.Form) (*order.Order, error) {
	var body messageBody[order.Order]
	if err := c.do(ctx, http.MethodPost, "orders", "", form, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

// CreateVNPayURL asks the API for a signed gateway URL for an unpaid VNPAY order
func (c *Client) CreateVNPayURL(ctx context.Context, orderID uint) (*payment.PaymentURL, error) {
	var pu payment.PaymentURL
	q := url.Values{"orderId": {strconv.FormatUint(uint64(orderID), 10)}}
	if err := c.do(ctx, http.MethodGet, "payment/vn-pay", q.Encode(), nil, &pu); err != nil {
		return nil, err
	}
	return &pu, nil
}

// VNPayReturn forwards the gateway's redirect query string verbatim for verification
func (c *Client) VNPayReturn(ctx context.Context, rawQuery string) (*payment.Result, error) {
	var result payment.Result
	if err := c.do(ctx, http.MethodGet, "payment/vn-pay/return", strings.TrimPrefix(rawQuery, "?"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackVisit records one storefront visit
func (c *Client) TrackVisit(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "visits", "", nil, nil)
}
