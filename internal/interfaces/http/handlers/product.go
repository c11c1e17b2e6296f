// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// ProductService is the catalog API used by ProductHandler
type ProductService interface {
	GetProducts(ctx context.Context, req product.ListRequest) ([]product.Product, int64, error)
	GetAdminProducts(ctx context.Context, q pagination.Query) ([]product.Product, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (*product.Product, error)
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
	CreateProduct(ctx context.Context, req *product.ProductRequest, files product.Files) (*product.Product, error)
	UpdateProduct(ctx context.Context, id uint, req *product.ProductRequest, files product.Files) (*product.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	products ProductService
	log      logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products ProductService, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	req := product.ListRequest{
		Query:        pagination.FromContext(c),
		CategorySlug: c.Query("categorySlug"),
		BrandSlug:    c.Query("brandSlug"),
	}
	var ok bool
	if req.MinPrice, ok = priceQuery(c, "minPrice"); !ok {
		return
	}
	if req.MaxPrice, ok = priceQuery(c, "maxPrice"); !ok {
		return
	}

	items, total, err := h.products.GetProducts(c.Request.Context(), req)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, req.Query.PageSize))
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.products.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, p)
}

// AdminGetProducts handles GET /admin/products, inactive products included
func (h *ProductHandler) AdminGetProducts(c *gin.Context) {
	q := pagination.FromContext(c)
	items, total, err := h.products.GetAdminProducts(c.Request.Context(), q)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Paginated(c, response.NewPage(items, total, q.PageSize))
}

// AdminGetProduct handles GET /admin/products/:id
func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, p)
}

// AdminCreateProduct handles POST /admin/products (multipart: entity, image, images)
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.ProductRequest
	if !bindEntity(c, &req) {
		return
	}

	p, err := h.products.CreateProduct(c.Request.Context(), &req, productFiles(c))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.Created(c, p, "Product created successfully")
}

// AdminUpdateProduct handles PUT /admin/products/:id (multipart: entity, image, images)
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req product.ProductRequest
	if !bindEntity(c, &req) {
		return
	}

	p, err := h.products.UpdateProduct(c.Request.Context(), id, &req, productFiles(c))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, p, "Product updated successfully")
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, nil, "Product deleted successfully")
}

func productFiles(c *gin.Context) product.Files {
	return product.Files{Image: formFile(c, "image"), Images: formFiles(c, "images")}
}

func priceQuery(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		response.Error(c, http.StatusBadRequest, "Invalid "+name, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
