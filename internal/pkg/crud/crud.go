// Package crud is the gorm repository shared by the simple slugged
// resources: categories, brands, attributes, news, news categories and slides.
package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"gorm.io/gorm"
)

// ErrNotFound is returned when Options.NotFound is not set
var ErrNotFound = errors.New("record not found")

// Where holds equality conditions keyed by column name
type Where map[string]any

// Repository persists one resource type
type Repository[T any] interface {
	Create(ctx context.Context, v *T) error
	Save(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindBySlug(ctx context.Context, slug string) (*T, error)
	SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error)
	List(ctx context.Context, q pagination.Query, where Where) ([]T, int64, error)
	All(ctx context.Context, where Where) ([]T, error)
}

// Options configures a gorm repository
type Options struct {
	// NotFound replaces gorm.ErrRecordNotFound so callers can match their own sentinel
	NotFound error
	Fields   pagination.Fields
	Preloads []string
}

type gormRepository[T any] struct {
	db   *gorm.DB
	opts Options
}

// New returns a gorm backed repository for T
func New[T any](db *gorm.DB, opts Options) Repository[T] {
	if opts.NotFound == nil {
		opts.NotFound = ErrNotFound
	}
	return &gormRepository[T]{db: db, opts: opts}
}

func (r *gormRepository[T]) query(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	for _, p := range r.opts.Preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *gormRepository[T]) Create(ctx context.Context, v *T) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create: %w", err)
	}
	return nil
}

func (r *gormRepository[T]) Save(ctx context.Context, v *T) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func (r *gormRepository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.opts.NotFound
	}
	return nil
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	return r.first(r.query(ctx).Where("id = ?", id))
}

func (r *gormRepository[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	return r.first(r.query(ctx).Where("slug = ?", slug))
}

func (r *gormRepository[T]) first(db *gorm.DB) (*T, error) {
	v := new(T)
	err := db.First(v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.opts.NotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load: %w", err)
	}
	return v, nil
}

func (r *gormRepository[T]) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository[T]) List(ctx context.Context, q pagination.Query, where Where) ([]T, int64, error) {
	var (
		items []T
		total int64
	)
	base := r.db.WithContext(ctx).Model(new(T))
	if len(where) > 0 {
		base = base.Where(map[string]any(where))
	}
	base = q.Filter(base, r.opts.Fields)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count: %w", err)
	}

	list := base.Session(&gorm.Session{})
	for _, p := range r.opts.Preloads {
		list = list.Preload(p)
	}
	if err := q.Page(list, r.opts.Fields).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list: %w", err)
	}
	return items, total, nil
}

func (r *gormRepository[T]) All(ctx context.Context, where Where) ([]T, error) {
	var items []T
	db := r.query(ctx)
	if len(where) > 0 {
		db = db.Where(map[string]any(where))
	}
	order := r.opts.Fields.DefaultSort
	if order == "" {
		order = "id ASC"
	}
	if err := db.Order(order).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}
	return items, nil
}
