package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api/v1", Token: func() string { return token }}, logger.Discard())
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, logger.Discard())
	assert.Error(t, err)
}

func TestCurrent_SendsBearerAndUnwrapsData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/current", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"userId":7,"username":"an","roles":["USER"]}}`))
	}, "tok")

	p, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(7), p.UserID)
	assert.Equal(t, "an", p.Username)
}

func TestAnonymousCallsSendNoAuthorization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, "")

	require.NoError(t, c.TrackVisit(context.Background()))
}

func TestCreateOrder_UnwrapsMessageEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var form checkout.Form
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		assert.Equal(t, checkout.PaymentCOD, form.PaymentMethod)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"data":{"id":42,"orderCode":"DH42","totalAmount":250000},"message":"Order created successfully"}}`))
	}, "tok")

	o, err := c.CreateOrder(context.Background(), &checkout.Form{PaymentMethod: checkout.PaymentCOD})
	require.NoError(t, err)
	assert.Equal(t, uint(42), o.ID)
	assert.Equal(t, int64(250000), o.TotalAmount)
}

func TestGetProducts_PageEnvelopeAndListingParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("pageNum"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "name", q.Get("searchBy"))
		assert.Equal(t, "áo", q.Get("keyword"))
		assert.Equal(t, "price", q.Get("sortBy"))
		assert.Equal(t, "true", q.Get("isAscending"))
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":1,"slug":"ao-thun"}],"meta":{"totalElements":21,"totalPages":2}}}`))
	}, "")

	page, err := c.GetProducts(context.Background(), pagination.Query{PageNum: 2, PageSize: 20, SearchBy: "name", Keyword: "áo", SortBy: "price", IsAscending: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ao-thun", page.Items[0].Slug)
	assert.Equal(t, int64(21), page.Meta.TotalElements)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestVNPayReturn_ForwardsQueryVerbatim(t *testing.T) {
	const raw = "vnp_Amount=25000000&vnp_TxnRef=DH1-1&vnp_OrderInfo=Thanh+toan+don+hang&vnp_SecureHash=abc"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, raw, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"data":{"orderId":1,"paymentMethod":"VNPAY","paymentStatus":"PAID","totalAmount":250000}}`))
	}, "")

	res, err := c.VNPayReturn(context.Background(), "?"+raw)
	require.NoError(t, err)
	assert.Equal(t, "PAID", string(res.PaymentStatus))
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid request data","message":"Validation failed","details":{"recipientPhone":"must be a valid Vietnamese phone number"}}`))
	}, "tok")

	_, err := c.CreateOrder(context.Background(), &checkout.Form{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Contains(t, apiErr.Details, "recipientPhone")
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestAPIError_NonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}, "")

	_, err := c.Current(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := New(Config{BaseURL: srv.URL}, logger.Discard())
	require.NoError(t, err)

	_, err = c.Current(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}
