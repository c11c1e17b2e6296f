// internal/interfaces/http/handlers/content.go
package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/content"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// ContentService manages news, news categories and home page slides
type ContentService interface {
	GetNewsCategories(ctx context.Context, q pagination.Query) ([]content.NewsCategory, int64, error)
	GetNewsCategoryBySlug(ctx context.Context, slug string) (*content.NewsCategory, error)
	GetNewsCategory(ctx context.Context, id uint) (*content.NewsCategory, error)
	CreateNewsCategory(ctx context.Context, req *content.NewsCategoryRequest) (*content.NewsCategory, error)
	UpdateNewsCategory(ctx context.Context, id uint, req *content.NewsCategoryRequest) (*content.NewsCategory, error)
	DeleteNewsCategory(ctx context.Context, id uint) error

	GetNews(ctx context.Context, q pagination.Query, categorySlug string, includeDrafts bool) ([]content.News, int64, error)
	GetNewsBySlug(ctx context.Context, slug string) (*content.News, error)
	GetNewsByID(ctx context.Context, id uint) (*content.News, error)
	CreateNews(ctx context.Context, authorID uint, req *content.NewsRequest, image *multipart.FileHeader) (*content.News, error)
	UpdateNews(ctx context.Context, id uint, req *content.NewsRequest, image *multipart.FileHeader) (*content.News, error)
	DeleteNews(ctx context.Context, id uint) error

	GetSlides(ctx context.Context, q pagination.Query, includeInactive bool) ([]content.Slide, int64, error)
	GetSlide(ctx context.Context, id uint) (*content.Slide, error)
	CreateSlide(ctx context.Context, req *content.SlideRequest, image *multipart.FileHeader) (*content.Slide, error)
	UpdateSlide(ctx context.Context, id uint, req *content.SlideRequest, image *multipart.FileHeader) (*content.Slide, error)
	DeleteSlide(ctx context.Context, id uint) error
}

// ContentHandler handles news, news-categories and slides endpoints
type ContentHandler struct {
	content ContentService
	log     logrus.FieldLogger
}

// NewContentHandler creates a new content handler
func NewContentHandler(svc ContentService, log logrus.FieldLogger) *ContentHandler {
	return &ContentHandler{content: svc, log: log}
}

// GetNewsCategories handles GET /news-categories
func (h *ContentHandler) GetNewsCategories(c *gin.Context) {
	q := pagination.FromContext(c)
	items, total, err := h.content.GetNewsCategories(c.Request.Context(), q)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// GetNewsCategoryBySlug handles GET /news-categories/:slug
func (h *ContentHandler) GetNewsCategoryBySlug(c *gin.Context) {
	nc, err := h.content.GetNewsCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, nc)
}

// AdminGetNewsCategory handles GET /admin/news-categories/:id
func (h *ContentHandler) AdminGetNewsCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	nc, err := h.content.GetNewsCategory(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, nc)
}

// AdminCreateNewsCategory handles POST /admin/news-categories
func (h *ContentHandler) AdminCreateNewsCategory(c *gin.Context) {
	var req content.NewsCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	nc, err := h.content.CreateNewsCategory(c.Request.Context(), &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, nc, "News category created successfully")
}

// AdminUpdateNewsCategory handles PUT /admin/news-categories/:id
func (h *ContentHandler) AdminUpdateNewsCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req content.NewsCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	nc, err := h.content.UpdateNewsCategory(c.Request.Context(), id, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nc, "News category updated successfully")
}

// AdminDeleteNewsCategory handles DELETE /admin/news-categories/:id
func (h *ContentHandler) AdminDeleteNewsCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteNewsCategory(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "News category deleted successfully")
}

// GetNews handles GET /news?categorySlug= (published only)
func (h *ContentHandler) GetNews(c *gin.Context) {
	h.listNews(c, false)
}

// AdminGetNews handles GET /admin/news (drafts included)
func (h *ContentHandler) AdminGetNews(c *gin.Context) {
	h.listNews(c, true)
}

func (h *ContentHandler) listNews(c *gin.Context, includeDrafts bool) {
	q := pagination.FromContext(c)
	items, total, err := h.content.GetNews(c.Request.Context(), q, c.Query("categorySlug"), includeDrafts)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// GetNewsBySlug handles GET /news/:slug
func (h *ContentHandler) GetNewsBySlug(c *gin.Context) {
	n, err := h.content.GetNewsBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, n)
}

// AdminGetNewsByID handles GET /admin/news/:id
func (h *ContentHandler) AdminGetNewsByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := h.content.GetNewsByID(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, n)
}

// AdminCreateNews handles POST /admin/news (multipart: entity, image)
func (h *ContentHandler) AdminCreateNews(c *gin.Context) {
	authorID, ok := currentUser(c)
	if !ok {
		return
	}
	var req content.NewsRequest
	if !bindEntity(c, &req) {
		return
	}
	n, err := h.content.CreateNews(c.Request.Context(), authorID, &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, n, "News created successfully")
}

// AdminUpdateNews handles PUT /admin/news/:id (multipart: entity, image)
func (h *ContentHandler) AdminUpdateNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req content.NewsRequest
	if !bindEntity(c, &req) {
		return
	}
	n, err := h.content.UpdateNews(c.Request.Context(), id, &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, n, "News updated successfully")
}

// AdminDeleteNews handles DELETE /admin/news/:id
func (h *ContentHandler) AdminDeleteNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteNews(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "News deleted successfully")
}

// GetSlides handles GET /slides and GET /admin/slides
func (h *ContentHandler) GetSlides(includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := pagination.FromContext(c)
		items, total, err := h.content.GetSlides(c.Request.Context(), q, includeInactive)
		if err != nil {
			renderError(c, h.log, err)
			return
		}
		response.Paginated(c, response.NewPage(items, total, q.PageSize))
	}
}

// AdminGetSlide handles GET /admin/slides/:id
func (h *ContentHandler) AdminGetSlide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	s, err := h.content.GetSlide(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, s)
}

// AdminCreateSlide handles POST /admin/slides (multipart: entity, image)
func (h *ContentHandler) AdminCreateSlide(c *gin.Context) {
	var req content.SlideRequest
	if !bindEntity(c, &req) {
		return
	}
	s, err := h.content.CreateSlide(c.Request.Context(), &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, s, "Slide created successfully")
}

// AdminUpdateSlide handles PUT /admin/slides/:id (multipart: entity, image)
func (h *ContentHandler) AdminUpdateSlide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req content.SlideRequest
	if !bindEntity(c, &req) {
		return
	}
	s, err := h.content.UpdateSlide(c.Request.Context(), id, &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, s, "Slide updated successfully")
}

// AdminDeleteSlide handles DELETE /admin/slides/:id
func (h *ContentHandler) AdminDeleteSlide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteSlide(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Slide deleted successfully")
}
