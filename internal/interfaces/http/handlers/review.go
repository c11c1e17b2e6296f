// internal/interfaces/http/handlers/review.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// ReviewService is the review and moderation API
type ReviewService interface {
	CreateReview(ctx context.Context, userID uint, req *product.CreateReviewRequest) (*product.Review, error)
	GetProductReviews(ctx context.Context, productSlug string, q pagination.Query) ([]product.Review, int64, error)
	GetReviewSummary(ctx context.Context, productSlug string) (*product.ReviewSummary, error)
	GetReviews(ctx context.Context, q pagination.Query, status product.ReviewStatus) ([]product.Review, int64, error)
	ApproveReview(ctx context.Context, id, moderatorID uint) (*product.Review, error)
	RejectReview(ctx context.Context, id, moderatorID uint, reason string) (*product.Review, error)
	DeleteReview(ctx context.Context, id uint) error
}

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviews ReviewService
	log     logrus.FieldLogger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews ReviewService, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

// CreateReview handles POST /reviews. New reviews wait for moderation.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req product.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), userID, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, review, "Review submitted and awaiting moderation")
}

// GetProductReviews handles GET /products/:slug/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	q := pagination.FromContext(c)
	items, total, err := h.reviews.GetProductReviews(c.Request.Context(), c.Param("slug"), q)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// GetReviewSummary handles GET /products/:slug/reviews/summary
func (h *ReviewHandler) GetReviewSummary(c *gin.Context) {
	summary, err := h.reviews.GetReviewSummary(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, summary)
}

// AdminGetReviews handles GET /admin/reviews?status=
func (h *ReviewHandler) AdminGetReviews(c *gin.Context) {
	status := product.ReviewStatus(c.Query("status"))
	switch status {
	case "", product.ReviewPending, product.ReviewApproved, product.ReviewRejected:
	default:
		response.Error(c, http.StatusBadRequest, "Invalid status", string(status)+" is not a review status")
		return
	}

	q := pagination.FromContext(c)
	items, total, err := h.reviews.GetReviews(c.Request.Context(), q, status)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// AdminApproveReview handles PUT /admin/reviews/:id/approve
func (h *ReviewHandler) AdminApproveReview(c *gin.Context) {
	moderatorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	review, err := h.reviews.ApproveReview(c.Request.Context(), id, moderatorID)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, review, "Review approved")
}

// AdminRejectReview handles PUT /admin/reviews/:id/reject
func (h *ReviewHandler) AdminRejectReview(c *gin.Context) {
	moderatorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req product.RejectReviewRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.RejectReview(c.Request.Context(), id, moderatorID, req.Reason)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, review, "Review rejected")
}

// AdminDeleteReview handles DELETE /admin/reviews/:id
func (h *ReviewHandler) AdminDeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.DeleteReview(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Review deleted")
}
