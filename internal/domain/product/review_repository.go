// internal/domain/product/review_repository.go
package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"gorm.io/gorm"
)

var reviewFields = pagination.Fields{
	Search: map[string]string{"comment": "comment"},
	Sort: map[string]string{
		"rating":      "rating",
		"createdDate": "created_at",
	},
	DefaultSort: "created_at DESC",
}

// ReviewFilter narrows a review listing; zero values match everything
type ReviewFilter struct {
	Query     pagination.Query
	ProductID uint
	Status    ReviewStatus
}

// ReviewRepository persists reviews
type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	Save(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	Exists(ctx context.Context, userID, productID uint) (bool, error)
	List(ctx context.Context, f ReviewFilter) ([]Review, int64, error)
	Summary(ctx context.Context, productID uint) (*ReviewSummary, error)
}

type gormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns the gorm review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &gormReviewRepository{db: db}
}

func (r *gormReviewRepository) Create(ctx context.Context, rv *Review) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Product").Create(rv).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *gormReviewRepository) Save(ctx context.Context, rv *Review) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Product").Save(rv).Error; err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *gormReviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *gormReviewRepository) FindByID(ctx context.Context, id uint) (*Review, error) {
	var rv Review
	err := r.db.WithContext(ctx).Preload("Author").Preload("Product").First(&rv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &rv, nil
}

func (r *gormReviewRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return count > 0, nil
}

func (r *gormReviewRepository) List(ctx context.Context, f ReviewFilter) ([]Review, int64, error) {
	var (
		reviews []Review
		total   int64
	)
	query := r.db.WithContext(ctx).Model(&Review{})
	if f.ProductID > 0 {
		query = query.Where("product_id = ?", f.ProductID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	query = f.Query.Filter(query, reviewFields)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	err := f.Query.Page(query, reviewFields).
		Preload("Author").
		Preload("Product").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *gormReviewRepository) Summary(ctx context.Context, productID uint) (*ReviewSummary, error) {
	var rows []struct {
		Rating int
		Count  int
	}
	err := r.db.WithContext(ctx).Model(&Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, ReviewApproved).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarise reviews: %w", err)
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return summarise(productID, counts), nil
}

// summarise builds a summary from per-rating counts
func summarise(productID uint, counts map[int]int) *ReviewSummary {
	s := &ReviewSummary{ProductID: productID, RatingBreakdown: make(map[string]int, 5)}
	sum := 0
	for i := 1; i <= 5; i++ {
		s.RatingBreakdown[strconv.Itoa(i)] = counts[i]
		s.TotalReviews += counts[i]
		sum += i * counts[i]
	}
	if s.TotalReviews > 0 {
		s.AverageRating = math.Round(float64(sum)/float64(s.TotalReviews)*100) / 100
	}
	return s
}
