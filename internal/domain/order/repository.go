// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"gorm.io/gorm"
)

var orderFields = pagination.Fields{
	Search: map[string]string{
		"orderCode":      "order_code",
		"recipientName":  "recipient_name",
		"recipientPhone": "recipient_phone",
		"recipientEmail": "recipient_email",
	},
	Sort: map[string]string{
		"createdDate": "created_at",
		"totalAmount": "total_amount",
		"status":      "status",
		"orderCode":   "order_code",
	},
	DefaultSort: "created_at DESC",
}

// ListFilter narrows an order listing; zero values match everything
type ListFilter struct {
	Query         pagination.Query
	UserID        uint
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

// StatusChange is one guarded status update
type StatusChange struct {
	From    OrderStatus
	To      OrderStatus
	History OrderStatusHistory
	// Restock puts the ordered quantities back into the catalog
	Restock bool
}

// Repository persists orders
type Repository interface {
	// CreateFromCart reserves stock, inserts the order with its items and first
	// history row and empties the user's cart, all in one transaction.
	CreateFromCart(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int64, error)
	// ChangeStatus applies the change only if the order is still in From
	ChangeStatus(ctx context.Context, o *Order, change StatusChange) error
	// UpdateDetails saves recipient and delivery fields only while the order is PENDING
	UpdateDetails(ctx context.Context, o *Order) error
	HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error)
}

type gormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository returns the gorm order repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db, now: time.Now}
}

func (r *gormRepository) CreateFromCart(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range o.Items {
			res := tx.Model(&product.Product{}).
				Where("id = ? AND is_active = ? AND quantity >= ?", it.ProductID, true, it.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%s: %w", it.ProductName, product.ErrInsufficientStock)
			}
		}

		// placeholder keeps the unique index satisfied until the id is known
		o.OrderCode = uuid.NewString()
		history := o.StatusHistory
		o.StatusHistory = nil
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		o.OrderCode = generateOrderCode(o.ID, r.now())
		if err := tx.Model(o).Update("order_code", o.OrderCode).Error; err != nil {
			return fmt.Errorf("failed to update order code: %w", err)
		}

		for i := range history {
			history[i].OrderID = o.ID
		}
		if len(history) > 0 {
			if err := tx.Create(&history).Error; err != nil {
				return fmt.Errorf("failed to create status history: %w", err)
			}
		}
		o.StatusHistory = history

		if err := tx.Where("user_id = ?", o.UserID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &o, nil
}

func (r *gormRepository) List(ctx context.Context, f ListFilter) ([]Order, int64, error) {
	var (
		orders []Order
		total  int64
	)
	query := r.db.WithContext(ctx).Model(&Order{})
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	query = f.Query.Filter(query, orderFields)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := f.Query.Page(query, orderFields).Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormRepository) ChangeStatus(ctx context.Context, o *Order, change StatusChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": change.To}
		if change.To == OrderStatusCancelled {
			updates["cancel_reason"] = o.CancelReason
		}
		if change.To == OrderStatusDelivered {
			updates["delivered_at"] = o.DeliveredAt
		}

		res := tx.Model(&Order{}).Where("id = ? AND status = ?", o.ID, change.From).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		if change.Restock {
			for _, it := range o.Items {
				err := tx.Model(&product.Product{}).
					Where("id = ?", it.ProductID).
					UpdateColumn("quantity", gorm.Expr("quantity + ?", it.Quantity)).Error
				if err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		change.History.OrderID = o.ID
		if err := tx.Create(&change.History).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) UpdateDetails(ctx context.Context, o *Order) error {
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", o.ID, OrderStatusPending).
		Updates(map[string]any{
			"recipient_name":   o.RecipientName,
			"recipient_gender": o.RecipientGender,
			"recipient_email":  o.RecipientEmail,
			"recipient_phone":  o.RecipientPhone,
			"delivery_method":  o.DeliveryMethod,
			"shipping_address": o.ShippingAddress,
			"note":             o.Note,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotEditable
	}
	return nil
}

func (r *gormRepository) HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?", userID, OrderStatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}
