// internal/domain/payment/repository.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-api/internal/domain/order"
	"gorm.io/gorm"
)

// Settlement is the verified outcome written for one order
type Settlement struct {
	OrderID uint
	Status  order.PaymentStatus
	At      time.Time
	// Attempt is nil for manual reconciliation
	Attempt *Attempt
	// History is written to the order's status history when set
	History *order.OrderStatusHistory
}

// Repository persists payment attempts and settles orders
type Repository interface {
	CreateAttempt(ctx context.Context, a *Attempt) error
	FindAttempt(ctx context.Context, txnRef string) (*Attempt, error)
	ListAttempts(ctx context.Context, orderID uint) ([]Attempt, error)
	// Settle updates the attempt and the order's payment status in one
	// transaction. It writes nothing and returns ErrAttemptResolved when the
	// attempt is no longer PENDING, or ErrAlreadyPaid when the order is PAID.
	Settle(ctx context.Context, s Settlement) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the gorm payment repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateAttempt(ctx context.Context, a *Attempt) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}
	return nil
}

func (r *gormRepository) FindAttempt(ctx context.Context, txnRef string) (*Attempt, error) {
	var a Attempt
	err := r.db.WithContext(ctx).Where("txn_ref = ?", txnRef).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment attempt: %w", err)
	}
	return &a, nil
}

func (r *gormRepository) ListAttempts(ctx context.Context, orderID uint) ([]Attempt, error) {
	var attempts []Attempt
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment attempts: %w", err)
	}
	return attempts, nil
}

func (r *gormRepository) Settle(ctx context.Context, s Settlement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.Attempt != nil {
			res := tx.Model(&Attempt{}).
				Where("id = ? AND result = ?", s.Attempt.ID, order.PaymentStatusPending).
				Updates(map[string]any{
					"result":         s.Status,
					"response_code":  s.Attempt.ResponseCode,
					"transaction_no": s.Attempt.TransactionNo,
					"bank_code":      s.Attempt.BankCode,
					"return_params":  s.Attempt.ReturnParams,
					"verified_at":    s.At,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update payment attempt: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrAttemptResolved
			}
		}

		updates := map[string]any{"payment_status": s.Status}
		if s.Status == order.PaymentStatusPaid {
			updates["paid_at"] = s.At
		}
		res := tx.Model(&order.Order{}).
			Where("id = ? AND payment_status <> ?", s.OrderID, order.PaymentStatusPaid).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update payment status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}

		if s.History != nil {
			s.History.OrderID = s.OrderID
			if err := tx.Create(s.History).Error; err != nil {
				return fmt.Errorf("failed to create status history: %w", err)
			}
		}
		return nil
	})
}
