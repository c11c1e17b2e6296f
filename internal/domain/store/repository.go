// internal/domain/store/repository.go
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository persists the store info row
type Repository interface {
	Get(ctx context.Context) (*StoreInfo, error)
	Save(ctx context.Context, info *StoreInfo) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the gorm store info repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Get returns the row, creating an empty one on first use
func (r *gormRepository) Get(ctx context.Context) (*StoreInfo, error) {
	var info StoreInfo
	if err := r.db.WithContext(ctx).FirstOrCreate(&info, StoreInfo{ID: singletonID}).Error; err != nil {
		return nil, fmt.Errorf("failed to load store info: %w", err)
	}
	return &info, nil
}

func (r *gormRepository) Save(ctx context.Context, info *StoreInfo) error {
	info.ID = singletonID
	if err := r.db.WithContext(ctx).Save(info).Error; err != nil {
		return fmt.Errorf("failed to save store info: %w", err)
	}
	return nil
}
