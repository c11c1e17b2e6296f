// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// UserAdminService is the back-office user API
type UserAdminService interface {
	GetUsers(ctx context.Context, q pagination.Query) ([]user.User, int64, error)
	GetUser(ctx context.Context, id uint) (*user.User, error)
	UpdateRoles(ctx context.Context, id uint, req *user.UpdateRolesRequest, adminID uint) error
	SetLocked(ctx context.Context, id uint, locked bool, adminID uint) error
	GetRoles(ctx context.Context) ([]user.Role, error)
}

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	users UserAdminService
	log   logrus.FieldLogger
}

// NewUserAdminHandler creates a new admin user handler
func NewUserAdminHandler(users UserAdminService, log logrus.FieldLogger) *UserAdminHandler {
	return &UserAdminHandler{users: users, log: log}
}

// GetUsers handles GET /admin/users
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	q := pagination.FromContext(c)
	users, total, err := h.users.GetUsers(c.Request.Context(), q)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(users, total, q.PageSize))
}

// GetUser handles GET /admin/users/:id
func (h *UserAdminHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, u)
}

// UpdateRoles handles PUT /admin/users/:id/roles
func (h *UserAdminHandler) UpdateRoles(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req user.UpdateRolesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.UpdateRoles(c.Request.Context(), id, &req, adminID); err != nil {
		renderError(c, h.log, err)
		return
	}
	h.respondWithUser(c, id, "User roles updated successfully")
}

// SetLocked handles PUT /admin/users/:id/lock
func (h *UserAdminHandler) SetLocked(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req user.LockRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.SetLocked(c.Request.Context(), id, *req.Locked, adminID); err != nil {
		renderError(c, h.log, err)
		return
	}
	msg := "User unlocked successfully"
	if *req.Locked {
		msg = "User locked successfully"
	}
	h.respondWithUser(c, id, msg)
}

// GetRoles handles GET /roles
func (h *UserAdminHandler) GetRoles(c *gin.Context) {
	roles, err := h.users.GetRoles(c.Request.Context())
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, roles)
}

func (h *UserAdminHandler) respondWithUser(c *gin.Context, id uint, msg string) {
	u, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, u, msg)
}
