// internal/domain/user/admin_service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

// ErrSelfModification guards admins against locking themselves out
var ErrSelfModification = errors.New("administrators cannot lock or demote themselves")

// AdminService handles back-office user management
type AdminService struct {
	repo Repository
	log  logrus.FieldLogger
}

// NewAdminService creates a new admin service
func NewAdminService(repo Repository, log logrus.FieldLogger) *AdminService {
	return &AdminService{repo: repo, log: log}
}

// UpdateRolesRequest replaces the role set of a user
type UpdateRolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1,dive,required"`
}

// LockRequest locks or unlocks an account
type LockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// GetUsers lists users with the shared listing convention
func (s *AdminService) GetUsers(ctx context.Context, q pagination.Query) ([]User, int64, error) {
	return s.repo.List(ctx, q)
}

// GetUser returns one user
func (s *AdminService) GetUser(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateRoles replaces the roles of a user. An admin cannot drop their own
// ADMIN role.
func (s *AdminService) UpdateRoles(ctx context.Context, id uint, req *UpdateRolesRequest, adminID uint) error {
	names := dedupe(req.Roles)
	if id == adminID && !contains(names, RoleAdmin) {
		return fmt.Errorf("%w: %s role is required", ErrSelfModification, RoleAdmin)
	}
	if err := s.repo.SetRoles(ctx, id, names); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "roles": names, "admin_id": adminID}).Info("user roles updated")
	return nil
}

// SetLocked locks or unlocks an account. Locked users fail auth/current and
// cannot log in or refresh.
func (s *AdminService) SetLocked(ctx context.Context, id uint, locked bool, adminID uint) error {
	if id == adminID && locked {
		return ErrSelfModification
	}
	if err := s.repo.SetLocked(ctx, id, locked); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "locked": locked, "admin_id": adminID}).Info("user lock changed")
	return nil
}

// GetRoles lists all roles
func (s *AdminService) GetRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
