// internal/interfaces/http/handlers/category.go
package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// TaxonomyService manages categories, brands and attributes
type TaxonomyService interface {
	GetCategories(ctx context.Context, q pagination.Query, includeInactive bool) ([]product.Category, int64, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*product.Category, error)
	GetCategory(ctx context.Context, id uint) (*product.Category, error)
	CreateCategory(ctx context.Context, req *product.CategoryRequest, image *multipart.FileHeader) (*product.Category, error)
	UpdateCategory(ctx context.Context, id uint, req *product.CategoryRequest, image *multipart.FileHeader) (*product.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	GetBrands(ctx context.Context, q pagination.Query, includeInactive bool) ([]product.Brand, int64, error)
	GetBrandBySlug(ctx context.Context, slug string) (*product.Brand, error)
	CreateBrand(ctx context.Context, req *product.BrandRequest, logo *multipart.FileHeader) (*product.Brand, error)
	UpdateBrand(ctx context.Context, id uint, req *product.BrandRequest, logo *multipart.FileHeader) (*product.Brand, error)
	DeleteBrand(ctx context.Context, id uint) error

	GetAttributes(ctx context.Context) ([]product.Attribute, error)
	CreateAttribute(ctx context.Context, req *product.AttributeRequest) (*product.Attribute, error)
	UpdateAttribute(ctx context.Context, id uint, req *product.AttributeRequest) (*product.Attribute, error)
	DeleteAttribute(ctx context.Context, id uint) error
}

// CategoryHandler handles category, brand and attribute endpoints
type CategoryHandler struct {
	taxonomy TaxonomyService
	log      logrus.FieldLogger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(taxonomy TaxonomyService, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{taxonomy: taxonomy, log: log}
}

// GetCategories handles GET /categories and GET /admin/categories
func (h *CategoryHandler) GetCategories(includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := pagination.FromContext(c)
		items, total, err := h.taxonomy.GetCategories(c.Request.Context(), q, includeInactive)
		if err != nil {
			renderError(c, h.log, err)
			return
		}
		response.Paginated(c, response.NewPage(items, total, q.PageSize))
	}
}

// GetCategoryBySlug handles GET /categories/:slug
func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	cat, err := h.taxonomy.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, cat)
}

// AdminGetCategory handles GET /admin/categories/:id
func (h *CategoryHandler) AdminGetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cat, err := h.taxonomy.GetCategory(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, cat)
}

// AdminCreateCategory handles POST /admin/categories (multipart: entity, image)
func (h *CategoryHandler) AdminCreateCategory(c *gin.Context) {
	var req product.CategoryRequest
	if !bindEntity(c, &req) {
		return
	}
	cat, err := h.taxonomy.CreateCategory(c.Request.Context(), &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, cat, "Category created successfully")
}

// AdminUpdateCategory handles PUT /admin/categories/:id (multipart: entity, image)
func (h *CategoryHandler) AdminUpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req product.CategoryRequest
	if !bindEntity(c, &req) {
		return
	}
	cat, err := h.taxonomy.UpdateCategory(c.Request.Context(), id, &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, cat, "Category updated successfully")
}

// AdminDeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) AdminDeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteCategory(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Category deleted successfully")
}

// GetBrands handles GET /brands and GET /admin/brands
func (h *CategoryHandler) GetBrands(includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := pagination.FromContext(c)
		items, total, err := h.taxonomy.GetBrands(c.Request.Context(), q, includeInactive)
		if err != nil {
			renderError(c, h.log, err)
			return
		}
		response.Paginated(c, response.NewPage(items, total, q.PageSize))
	}
}

// GetBrandBySlug handles GET /brands/:slug
func (h *CategoryHandler) GetBrandBySlug(c *gin.Context) {
	b, err := h.taxonomy.GetBrandBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, b)
}

// AdminCreateBrand handles POST /admin/brands (multipart: entity, image)
func (h *CategoryHandler) AdminCreateBrand(c *gin.Context) {
	var req product.BrandRequest
	if !bindEntity(c, &req) {
		return
	}
	b, err := h.taxonomy.CreateBrand(c.Request.Context(), &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, b, "Brand created successfully")
}

// AdminUpdateBrand handles PUT /admin/brands/:id (multipart: entity, image)
func (h *CategoryHandler) AdminUpdateBrand(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req product.BrandRequest
	if !bindEntity(c, &req) {
		return
	}
	b, err := h.taxonomy.UpdateBrand(c.Request.Context(), id, &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, b, "Brand updated successfully")
}

// AdminDeleteBrand handles DELETE /admin/brands/:id
func (h *CategoryHandler) AdminDeleteBrand(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteBrand(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Brand deleted successfully")
}

// GetAttributes handles GET /attributes
func (h *CategoryHandler) GetAttributes(c *gin.Context) {
	attrs, err := h.taxonomy.GetAttributes(c.Request.Context())
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, attrs)
}

// AdminCreateAttribute handles POST /admin/attributes
func (h *CategoryHandler) AdminCreateAttribute(c *gin.Context) {
	var req product.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.taxonomy.CreateAttribute(c.Request.Context(), &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, a, "Attribute created successfully")
}

// AdminUpdateAttribute handles PUT /admin/attributes/:id
func (h *CategoryHandler) AdminUpdateAttribute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req product.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.taxonomy.UpdateAttribute(c.Request.Context(), id, &req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, a, "Attribute updated successfully")
}

// AdminDeleteAttribute handles DELETE /admin/attributes/:id
func (h *CategoryHandler) AdminDeleteAttribute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteAttribute(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Attribute deleted successfully")
}
