// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// AuthService is the account API used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.Profile, error)
	Login(ctx context.Context, req *user.LoginRequest) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
	Current(ctx context.Context, userID uint) (*user.Profile, error)
	UpdateProfile(ctx context.Context, userID uint, req *user.UpdateProfileRequest) (*user.Profile, error)
	ChangePassword(ctx context.Context, userID uint, req *user.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *user.ForgotPasswordRequest) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users AuthService
	log   logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, profile, "User registered successfully")
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, pair)
}

// RefreshToken handles POST /auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req user.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			err = user.ErrSessionRevoked
		}
		renderError(c, h.log, err)
		return
	}
	response.OK(c, pair)
}

// Logout handles POST /auth/logout. The access token is optional so an
// expired one does not keep the refresh session alive.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req user.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, _ := middleware.GetClaimsFromContext(c)
	if err := h.users.Logout(c.Request.Context(), req.RefreshToken, claims); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Logged out successfully")
}

// Current handles GET /auth/current. The profile always comes from the
// database, never from token claims.
func (h *AuthHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.users.Current(c.Request.Context(), userID)
	if errors.Is(err, user.ErrUserNotFound) || errors.Is(err, user.ErrAccountLocked) {
		response.Error(c, http.StatusUnauthorized, "Authentication required", err.Error())
		return
	}
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, profile)
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req user.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, profile, "Profile updated successfully")
}

// ChangePassword handles PATCH /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req user.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Password changed successfully")
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.ForgotPassword(c.Request.Context(), &req); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "If the email is registered, a temporary password has been sent")
}
