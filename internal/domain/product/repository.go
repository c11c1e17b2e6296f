// internal/domain/product/repository.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var productFields = pagination.Fields{
	Search: map[string]string{
		"name":        "products.name",
		"sku":         "products.sku",
		"description": "products.description",
	},
	Sort: map[string]string{
		"name":          "products.name",
		"price":         "products.price",
		"createdDate":   "products.created_at",
		"averageRating": "products.average_rating",
		"quantity":      "products.quantity",
	},
	DefaultSort: "products.created_at DESC",
}

var (
	categoryFields = pagination.Fields{
		Search:      map[string]string{"name": "name", "slug": "slug"},
		Sort:        map[string]string{"name": "name", "sortOrder": "sort_order", "createdDate": "created_at"},
		DefaultSort: "sort_order ASC, name ASC",
	}
	brandFields = pagination.Fields{
		Search:      map[string]string{"name": "name", "slug": "slug"},
		Sort:        map[string]string{"name": "name", "createdDate": "created_at"},
		DefaultSort: "name ASC",
	}
	attributeFields = pagination.Fields{
		Search:      map[string]string{"name": "name"},
		Sort:        map[string]string{"name": "name"},
		DefaultSort: "name ASC",
	}
)

// ListFilter narrows a product listing
type ListFilter struct {
	Query           pagination.Query
	CategoryID      uint
	BrandID         uint
	MinPrice        int64
	MaxPrice        int64
	IncludeInactive bool
}

// Repository persists products with their gallery and attribute values
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product, replaceImages bool) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Product, error)
	SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error)
	List(ctx context.Context, f ListFilter) ([]Product, int64, error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
	UpdateRating(ctx context.Context, id uint, average float64, count int) error
}

// NewCategoryRepository returns the gorm category repository
func NewCategoryRepository(db *gorm.DB) crud.Repository[Category] {
	return crud.New[Category](db, crud.Options{NotFound: ErrCategoryNotFound, Fields: categoryFields})
}

// NewBrandRepository returns the gorm brand repository
func NewBrandRepository(db *gorm.DB) crud.Repository[Brand] {
	return crud.New[Brand](db, crud.Options{NotFound: ErrBrandNotFound, Fields: brandFields})
}

// NewAttributeRepository returns the gorm attribute repository
func NewAttributeRepository(db *gorm.DB) crud.Repository[Attribute] {
	return crud.New[Attribute](db, crud.Options{NotFound: ErrAttributeNotFound, Fields: attributeFields})
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the gorm product repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Attributes.Attribute")
}

func (r *gormRepository) Create(ctx context.Context, p *Product) error {
	if err := r.db.WithContext(ctx).Omit("Category", "Brand").Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, p *Product, replaceImages bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := tx.Where("product_id = ?", p.ID).Delete(&ProductAttribute{}).Error; err != nil {
			return fmt.Errorf("failed to clear attributes: %w", err)
		}
		for i := range p.Attributes {
			p.Attributes[i].ID = 0
			p.Attributes[i].ProductID = p.ID
		}
		if len(p.Attributes) > 0 {
			if err := tx.Omit("Attribute").Create(&p.Attributes).Error; err != nil {
				return fmt.Errorf("failed to save attributes: %w", err)
			}
		}

		if !replaceImages {
			return nil
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to clear images: %w", err)
		}
		for i := range p.Images {
			p.Images[i].ID = 0
			p.Images[i].ProductID = p.ID
		}
		if len(p.Images) > 0 {
			if err := tx.Create(&p.Images).Error; err != nil {
				return fmt.Errorf("failed to save images: %w", err)
			}
		}
		return nil
	})
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Product, error) {
	return r.first(r.preloaded(ctx).Where("products.id = ?", id))
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.first(r.preloaded(ctx).Where("products.slug = ?", slug))
}

func (r *gormRepository) first(db *gorm.DB) (*Product, error) {
	var p Product
	err := db.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &p, nil
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []uint) ([]Product, error) {
	var products []Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (r *gormRepository) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Product{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) List(ctx context.Context, f ListFilter) ([]Product, int64, error) {
	var (
		products []Product
		total    int64
	)

	query := r.db.WithContext(ctx).Model(&Product{})
	if !f.IncludeInactive {
		query = query.Where("products.is_active = ?", true)
	}
	if f.CategoryID > 0 {
		query = query.Where("products.category_id = ?", f.CategoryID)
	}
	if f.BrandID > 0 {
		query = query.Where("products.brand_id = ?", f.BrandID)
	}

	// price filters apply to what the customer pays
	effective := "CASE WHEN products.sale_price > 0 AND products.sale_price < products.price THEN products.sale_price ELSE products.price END"
	if f.MinPrice > 0 {
		query = query.Where(effective+" >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		query = query.Where(effective+" <= ?", f.MaxPrice)
	}
	query = f.Query.Filter(query, productFields)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	err := f.Query.Page(query, productFields).
		Preload("Category").
		Preload("Brand").
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *gormRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *gormRepository) UpdateRating(ctx context.Context, id uint, average float64, count int) error {
	err := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(map[string]any{
		"average_rating": average,
		"review_count":   count,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return nil
}
