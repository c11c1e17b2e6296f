package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/validation"
)

const (
	customerToken = "customer-token"
	adminToken    = "admin-token"
	customerID    = uint(7)
	adminID       = uint(1)
)

type stubTokens struct{}

func (stubTokens) ValidateAccessToken(token string) (*auth.Claims, error) {
	switch token {
	case customerToken:
		return &auth.Claims{UserID: customerID, Roles: []string{"USER"}, TokenType: auth.TokenTypeAccess}, nil
	case adminToken:
		return &auth.Claims{UserID: adminID, Roles: []string{"USER", "ADMIN"}, TokenType: auth.TokenTypeAccess}, nil
	}
	return nil, auth.ErrInvalidToken
}

type revocations struct{}

func (revocations) AccessRevoked(context.Context, string) (bool, error) {
	return false, nil
}

func newTestEngine(t *testing.T) (*gin.Engine, gin.HandlerFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterGin())
	authn := middleware.NewAuthenticator(stubTokens{}, revocations{}, logger.Discard())
	return gin.New(), authn.Required()
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
