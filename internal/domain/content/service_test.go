package content

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/crud/crudtest"
	"github.com/your-org/storefront-api/internal/pkg/logger"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

type fakeImages struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeImages) Save(_ context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error) {
	return &upload.File{URL: "/uploads/" + folder + "/" + fh.Filename}, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	svc        *Service
	categories *crudtest.Memory[NewsCategory]
	news       *crudtest.Memory[News]
	slides     *crudtest.Memory[Slide]
	images     *fakeImages
}

func newFixture() *fixture {
	f := &fixture{
		categories: crudtest.NewMemory(crudtest.Accessors[NewsCategory]{
			ID:   func(c *NewsCategory) *uint { return &c.ID },
			Slug: func(c *NewsCategory) string { return c.Slug },
		}, ErrNewsCategoryNotFound),
		news: crudtest.NewMemory(crudtest.Accessors[News]{
			ID:   func(n *News) *uint { return &n.ID },
			Slug: func(n *News) string { return n.Slug },
			Match: func(n *News, w crud.Where) bool {
				if v, ok := w["is_published"]; ok && v != n.IsPublished {
					return false
				}
				if v, ok := w["category_id"]; ok && (n.CategoryID == nil || v != *n.CategoryID) {
					return false
				}
				return true
			},
		}, ErrNewsNotFound),
		slides: crudtest.NewMemory(crudtest.Accessors[Slide]{
			ID: func(s *Slide) *uint { return &s.ID },
			Match: func(s *Slide, w crud.Where) bool {
				v, ok := w["is_active"]
				return !ok || v == s.IsActive
			},
		}, ErrSlideNotFound),
		images: &fakeImages{},
	}
	f.svc = NewService(f.categories, f.news, f.slides, f.images, logger.Discard())
	return f
}

var page = pagination.Query{PageNum: 1, PageSize: 10}

func TestNews_PublishedOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cat, err := f.svc.CreateNewsCategory(ctx, &NewsCategoryRequest{Name: "Khuyến mãi"})
	require.NoError(t, err)
	assert.Equal(t, "khuyen-mai", cat.Slug)

	published, err := f.svc.CreateNews(ctx, 1, &NewsRequest{Title: "Giảm giá mùa hè", CategoryID: &cat.ID, IsPublished: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	_, err = f.svc.CreateNews(ctx, 1, &NewsRequest{Title: "Bản nháp"}, nil)
	require.NoError(t, err)

	items, total, err := f.svc.GetNews(ctx, page, "", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "giam-gia-mua-he", items[0].Slug)

	_, total, err = f.svc.GetNews(ctx, page, "", true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	items, _, err = f.svc.GetNews(ctx, page, "khuyen-mai", false)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.svc.GetNewsBySlug(ctx, "ban-nhap")
	assert.ErrorIs(t, err, ErrNewsNotFound)

	assert.ErrorIs(t, f.svc.DeleteNewsCategory(ctx, cat.ID), ErrNewsCategoryInUse)
}

func TestNews_SlugCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.CreateNews(ctx, 1, &NewsRequest{Title: "Tin mới"}, nil)
	require.NoError(t, err)
	second, err := f.svc.CreateNews(ctx, 1, &NewsRequest{Title: "Tin mới"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)

	_, err = f.svc.CreateNews(ctx, 1, &NewsRequest{Title: "Khác", Slug: first.Slug}, nil)
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestNews_ReplaceThumbnail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	n, err := f.svc.CreateNews(ctx, 1, &NewsRequest{Title: "Ra mắt"}, &multipart.FileHeader{Filename: "a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/news/a.jpg", n.Thumbnail)

	n, err = f.svc.UpdateNews(ctx, n.ID, &NewsRequest{Title: "Ra mắt"}, &multipart.FileHeader{Filename: "b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/news/b.jpg", n.Thumbnail)
	assert.Equal(t, []string{"/uploads/news/a.jpg"}, f.images.deleted)
}

func TestSlides(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateSlide(ctx, &SlideRequest{Title: "Banner"}, nil)
	assert.ErrorIs(t, err, ErrSlideImageRequired)

	inactive := false
	_, err = f.svc.CreateSlide(ctx, &SlideRequest{Title: "Ẩn", IsActive: &inactive}, &multipart.FileHeader{Filename: "1.jpg"})
	require.NoError(t, err)
	shown, err := f.svc.CreateSlide(ctx, &SlideRequest{Title: "Hiện", Position: 1}, &multipart.FileHeader{Filename: "2.jpg"})
	require.NoError(t, err)

	items, total, err := f.svc.GetSlides(ctx, page, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, shown.ID, items[0].ID)

	require.NoError(t, f.svc.DeleteSlide(ctx, shown.ID))
	assert.Contains(t, f.images.deleted, "/uploads/slides/2.jpg")
}
