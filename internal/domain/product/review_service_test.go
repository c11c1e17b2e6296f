package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

func newReviewFixture(t *testing.T) (*ReviewService, *fakeReviews, *Product) {
	t.Helper()
	c := newCatalog(t)
	cat := c.category(t, "Áo")
	p, err := c.svc.CreateProduct(context.Background(), &ProductRequest{Name: "Áo thun", SKU: "AT", Price: 120000, CategoryID: cat.ID}, Files{})
	require.NoError(t, err)

	reviews := newFakeReviews()
	purchases := fakePurchases{{1, p.ID}: true, {2, p.ID}: true}
	svc := NewReviewService(reviews, c.products, purchases, logger.Discard())
	return svc, reviews, p
}

func TestReviewStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ReviewStatus
		want     bool
	}{
		{ReviewPending, ReviewApproved, true},
		{ReviewPending, ReviewRejected, true},
		{ReviewApproved, ReviewRejected, true},
		{ReviewRejected, ReviewApproved, true},
		{ReviewApproved, ReviewPending, false},
		{ReviewRejected, ReviewPending, false},
		{ReviewApproved, ReviewApproved, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCreateReview(t *testing.T) {
	svc, _, p := newReviewFixture(t)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, 3, &CreateReviewRequest{ProductID: p.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrNotPurchased)

	r, err := svc.CreateReview(ctx, 1, &CreateReviewRequest{ProductID: p.ID, Rating: 4, Comment: "  Vải mát  "})
	require.NoError(t, err)
	assert.Equal(t, ReviewPending, r.Status)
	assert.Equal(t, "Vải mát", r.Comment)

	_, err = svc.CreateReview(ctx, 1, &CreateReviewRequest{ProductID: p.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrReviewExists)

	_, err = svc.CreateReview(ctx, 1, &CreateReviewRequest{ProductID: 999, Rating: 5})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestModeration_UpdatesRating(t *testing.T) {
	svc, _, p := newReviewFixture(t)
	ctx := context.Background()
	q := pagination.Query{PageNum: 1, PageSize: 10}

	r1, err := svc.CreateReview(ctx, 1, &CreateReviewRequest{ProductID: p.ID, Rating: 5})
	require.NoError(t, err)
	r2, err := svc.CreateReview(ctx, 2, &CreateReviewRequest{ProductID: p.ID, Rating: 2})
	require.NoError(t, err)

	visible, _, err := svc.GetProductReviews(ctx, p.Slug, q)
	require.NoError(t, err)
	assert.Empty(t, visible, "pending reviews are not public")

	_, err = svc.ApproveReview(ctx, r1.ID, 99)
	require.NoError(t, err)
	_, err = svc.ApproveReview(ctx, r2.ID, 99)
	require.NoError(t, err)

	summary, err := svc.GetReviewSummary(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalReviews)
	assert.Equal(t, 3.5, summary.AverageRating)
	assert.Equal(t, 1, summary.RatingBreakdown["5"])

	rejected, err := svc.RejectReview(ctx, r2.ID, 99, "spam")
	require.NoError(t, err)
	assert.Equal(t, ReviewRejected, rejected.Status)
	assert.Equal(t, "spam", rejected.RejectReason)
	require.NotNil(t, rejected.ModeratedBy)

	product, err := svc.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, product.AverageRating)
	assert.Equal(t, 1, product.ReviewCount)

	_, err = svc.RejectReview(ctx, r2.ID, 99, "again")
	assert.ErrorIs(t, err, ErrInvalidReviewAction)

	require.NoError(t, svc.DeleteReview(ctx, r1.ID))
	product, _ = svc.products.FindByID(ctx, p.ID)
	assert.Equal(t, 0, product.ReviewCount)

	pending, _, err := svc.GetReviews(ctx, q, ReviewPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
