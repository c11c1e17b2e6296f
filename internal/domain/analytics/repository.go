// internal/domain/analytics/repository.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// lowStockThreshold is the quantity at or below which a product counts as low stock
const lowStockThreshold = 5

// Repository runs the aggregate queries behind the dashboard
type Repository interface {
	// PaidRevenue sums PAID orders created in [from, to); a zero bound is open
	PaidRevenue(ctx context.Context, from, to time.Time) (int64, error)
	CountOrders(ctx context.Context, from, to time.Time) (int64, error)
	OrdersByStatus(ctx context.Context) ([]StatusData, error)
	CountUsers(ctx context.Context) (total, locked int64, err error)
	CountProducts(ctx context.Context) (ProductCounts, error)
	TopProducts(ctx context.Context, limit int) ([]ProductSalesData, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the gorm analytics repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func between(db *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		db = db.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		db = db.Where("created_at < ?", to)
	}
	return db
}

func (r *gormRepository) PaidRevenue(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", "PAID")
	if err := between(q, from, to).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

func (r *gormRepository) CountOrders(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := between(r.db.WithContext(ctx).Table("orders"), from, to).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *gormRepository) OrdersByStatus(ctx context.Context) ([]StatusData, error) {
	var rows []StatusData
	err := r.db.WithContext(ctx).Table("orders").
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group orders: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) CountUsers(ctx context.Context) (int64, int64, error) {
	var total, locked int64
	users := func() *gorm.DB { return r.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL") }
	if err := users().Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := users().Where("is_locked = ?", true).Count(&locked).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, locked, nil
}

func (r *gormRepository) CountProducts(ctx context.Context) (ProductCounts, error) {
	var c ProductCounts
	err := r.db.WithContext(ctx).Table("products").
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE quantity <= 0) AS out_of_stock,
			COUNT(*) FILTER (WHERE quantity > 0 AND quantity <= ?) AS low_stock`, lowStockThreshold).
		Where("deleted_at IS NULL").
		Scan(&c).Error
	if err != nil {
		return ProductCounts{}, fmt.Errorf("failed to count products: %w", err)
	}
	return c, nil
}

func (r *gormRepository) TopProducts(ctx context.Context, limit int) ([]ProductSalesData, error) {
	var rows []ProductSalesData
	err := r.db.WithContext(ctx).Table("order_items oi").
		Select("oi.product_id, MAX(oi.product_name) AS product_name, SUM(oi.quantity) AS quantity_sold, SUM(oi.quantity * oi.price_at_time_of_order) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status NOT IN ?", []string{"CANCELLED", "RETURNED"}).
		Group("oi.product_id").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return rows, nil
}
