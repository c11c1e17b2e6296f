// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewExists        = errors.New("you have already reviewed this product")
	ErrNotPurchased        = errors.New("only customers who received this product can review it")
	ErrInvalidReviewAction = errors.New("review cannot move to the requested status")
)

// PurchaseVerifier answers whether a user received a product
type PurchaseVerifier interface {
	HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error)
}

// ReviewService handles review submission and moderation
type ReviewService struct {
	reviews   ReviewRepository
	products  Repository
	purchases PurchaseVerifier
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(reviews ReviewRepository, products Repository, purchases PurchaseVerifier, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		products:  products,
		purchases: purchases,
		log:       log,
		now:       time.Now,
	}
}

// CreateReview submits a review for moderation
func (s *ReviewService) CreateReview(ctx context.Context, userID uint, req *CreateReviewRequest) (*Review, error) {
	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	exists, err := s.reviews.Exists(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	ok, err := s.purchases.HasDeliveredProduct(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPurchased
	}

	review := &Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Status:    ReviewPending,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"review_id": review.ID, "product_id": req.ProductID, "user_id": userID}).
		Info("review submitted")
	return review, nil
}

// GetProductReviews lists the approved reviews of an active product
func (s *ReviewService) GetProductReviews(ctx context.Context, productSlug string, q pagination.Query) ([]Review, int64, error) {
	p, err := s.products.FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, 0, err
	}
	if !p.IsActive {
		return nil, 0, ErrProductNotFound
	}
	return s.reviews.List(ctx, ReviewFilter{Query: q, ProductID: p.ID, Status: ReviewApproved})
}

// GetReviewSummary aggregates the approved reviews of an active product
func (s *ReviewService) GetReviewSummary(ctx context.Context, productSlug string) (*ReviewSummary, error) {
	p, err := s.products.FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return s.reviews.Summary(ctx, p.ID)
}

// GetReviews lists reviews for moderation
func (s *ReviewService) GetReviews(ctx context.Context, q pagination.Query, status ReviewStatus) ([]Review, int64, error) {
	return s.reviews.List(ctx, ReviewFilter{Query: q, Status: status})
}

// ApproveReview publishes a pending or rejected review
func (s *ReviewService) ApproveReview(ctx context.Context, id, moderatorID uint) (*Review, error) {
	return s.moderate(ctx, id, moderatorID, ReviewApproved, "")
}

// RejectReview hides a pending or approved review
func (s *ReviewService) RejectReview(ctx context.Context, id, moderatorID uint, reason string) (*Review, error) {
	return s.moderate(ctx, id, moderatorID, ReviewRejected, strings.TrimSpace(reason))
}

// DeleteReview removes a review and refreshes the product rating
func (s *ReviewService) DeleteReview(ctx context.Context, id uint) error {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	return s.refreshRating(ctx, review.ProductID)
}

func (s *ReviewService) moderate(ctx context.Context, id, moderatorID uint, to ReviewStatus, reason string) (*Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.Status.CanTransition(to) {
		return nil, ErrInvalidReviewAction
	}

	from := review.Status
	now := s.now()
	review.Status = to
	review.RejectReason = reason
	review.ModeratedBy = &moderatorID
	review.ModeratedAt = &now
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, err
	}

	if err := s.refreshRating(ctx, review.ProductID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"from":      from,
		"to":        to,
		"user_id":   moderatorID,
	}).Info("review moderated")
	return review, nil
}

func (s *ReviewService) refreshRating(ctx context.Context, productID uint) error {
	summary, err := s.reviews.Summary(ctx, productID)
	if err != nil {
		return err
	}
	return s.products.UpdateRating(ctx, productID, summary.AverageRating, summary.TotalReviews)
}
