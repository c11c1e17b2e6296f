// internal/domain/cart/repository.go
package cart

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists cart items
type Repository interface {
	List(ctx context.Context, userID uint) ([]CartItem, error)
	Find(ctx context.Context, userID, productID uint) (*CartItem, error)
	Add(ctx context.Context, userID, productID uint, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uint, quantity int) error
	Remove(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the gorm cart repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List(ctx context.Context, userID uint) ([]CartItem, error) {
	var items []CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

func (r *gormRepository) Find(ctx context.Context, userID, productID uint) (*CartItem, error) {
	var items []CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Limit(1).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrItemNotFound
	}
	return &items[0], nil
}

// Add inserts the line or increments its quantity in one statement so
// concurrent adds of the same product never create a second row.
func (r *gormRepository) Add(ctx context.Context, userID, productID uint, quantity int) error {
	item := CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

func (r *gormRepository) SetQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *gormRepository) Remove(ctx context.Context, userID, productID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *gormRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
