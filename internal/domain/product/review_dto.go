// internal/domain/product/review_dto.go
package product

// CreateReviewRequest represents the request to create a review
type CreateReviewRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

// RejectReviewRequest carries the moderator's reason
type RejectReviewRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReviewSummary aggregates the approved reviews of a product
type ReviewSummary struct {
	ProductID       uint           `json:"productId"`
	TotalReviews    int            `json:"totalReviews"`
	AverageRating   float64        `json:"averageRating"`
	RatingBreakdown map[string]int `json:"ratingBreakdown"`
}
