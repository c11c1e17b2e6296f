// internal/domain/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"gorm.io/gorm"
)

var listFields = pagination.Fields{
	Search: map[string]string{
		"username":    "username",
		"email":       "email",
		"fullName":    "full_name",
		"phoneNumber": "phone_number",
	},
	Sort: map[string]string{
		"username":    "username",
		"email":       "email",
		"createdDate": "created_at",
	},
	DefaultSort: "created_at DESC",
}

// Repository persists users and roles
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	UpdateProfile(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	TouchLogin(ctx context.Context, id uint) error
	List(ctx context.Context, q pagination.Query) ([]User, int64, error)
	SetRoles(ctx context.Context, id uint, names []string) error
	SetLocked(ctx context.Context, id uint, locked bool) error
	ListRoles(ctx context.Context) ([]Role, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the gorm backed repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles, err := findRoles(tx, u.RoleNames())
		if err != nil {
			return err
		}
		u.Roles = nil
		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := tx.Model(u).Association("Roles").Replace(roles); err != nil {
			return fmt.Errorf("failed to assign roles: %w", err)
		}
		u.Roles = roles
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	return r.first(ctx, "username = ? OR email = LOWER(?)", login, login)
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = LOWER(?)", email)
}

func (r *gormRepository) first(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Preload("Roles").Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (r *gormRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("username = ? OR email = LOWER(?)", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) UpdateProfile(ctx context.Context, u *User) error {
	err := r.db.WithContext(ctx).Model(&User{ID: u.ID}).Updates(map[string]any{
		"full_name":    u.FullName,
		"phone_number": u.PhoneNumber,
		"address":      u.Address,
		"gender":       u.Gender,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *gormRepository) TouchLogin(ctx context.Context, id uint) error {
	return r.updateColumn(ctx, id, "last_login_at", gorm.Expr("NOW()"))
}

func (r *gormRepository) SetLocked(ctx context.Context, id uint, locked bool) error {
	return r.updateColumn(ctx, id, "is_locked", locked)
}

func (r *gormRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, q pagination.Query) ([]User, int64, error) {
	var (
		users []User
		total int64
	)
	base := q.Filter(r.db.WithContext(ctx).Model(&User{}), listFields)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := q.Page(base.Preload("Roles"), listFields).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *gormRepository) SetRoles(ctx context.Context, id uint, names []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		roles, err := findRoles(tx, names)
		if err != nil {
			return err
		}
		return tx.Model(&u).Association("Roles").Replace(roles)
	})
}

func (r *gormRepository) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := r.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func findRoles(tx *gorm.DB, names []string) ([]Role, error) {
	var roles []Role
	if err := tx.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	if len(roles) != len(names) {
		return nil, ErrUnknownRole
	}
	return roles, nil
}
