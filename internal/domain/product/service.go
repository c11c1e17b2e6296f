// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/slug"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrBrandNotFound     = errors.New("brand not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrSlugTaken         = errors.New("slug already in use")
	ErrCategoryInUse     = errors.New("category still has products")
	ErrCircularCategory  = errors.New("category cannot be its own ancestor")
	ErrProductInactive   = errors.New("product is not available")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	productFolder = "products"
)

// ImageStore keeps uploaded images
type ImageStore interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error)
	SaveAll(ctx context.Context, folder string, headers []*multipart.FileHeader) ([]upload.File, error)
	Delete(ctx context.Context, url string) error
}

// Service handles product business logic
type Service struct {
	repo       Repository
	categories crud.Repository[Category]
	brands     crud.Repository[Brand]
	attributes crud.Repository[Attribute]
	images     ImageStore
	log        logrus.FieldLogger
}

// NewService creates a new product service
func NewService(repo Repository, categories crud.Repository[Category], brands crud.Repository[Brand], attributes crud.Repository[Attribute], images ImageStore, log logrus.FieldLogger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		brands:     brands,
		attributes: attributes,
		images:     images,
		log:        log,
	}
}

// ListRequest carries the public product filters on top of the listing convention
type ListRequest struct {
	Query        pagination.Query
	CategorySlug string
	BrandSlug    string
	MinPrice     int64
	MaxPrice     int64
}

// AttributeValue assigns a value to an attribute
type AttributeValue struct {
	AttributeID uint   `json:"attributeId" binding:"required"`
	Value       string `json:"value" binding:"required,max=255"`
}

// ProductRequest is the "entity" part of the multipart product form
type ProductRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Slug        string           `json:"slug" binding:"omitempty,max=255"`
	SKU         string           `json:"sku" binding:"required,max=100"`
	Description string           `json:"description"`
	Price       int64            `json:"price" binding:"required,gt=0"`
	SalePrice   *int64           `json:"salePrice" binding:"omitempty,gte=0"`
	Quantity    int              `json:"quantity" binding:"gte=0"`
	CategoryID  uint             `json:"categoryId" binding:"required"`
	BrandID     *uint            `json:"brandId"`
	IsActive    *bool            `json:"isActive"`
	Attributes  []AttributeValue `json:"attributes" binding:"omitempty,dive"`
}

// Files are the optional image parts of a product form
type Files struct {
	Image  *multipart.FileHeader
	Images []*multipart.FileHeader
}

// GetProducts lists active products for the storefront
func (s *Service) GetProducts(ctx context.Context, req ListRequest) ([]Product, int64, error) {
	f := ListFilter{Query: req.Query, MinPrice: req.MinPrice, MaxPrice: req.MaxPrice}

	if req.CategorySlug != "" {
		c, err := s.categories.FindBySlug(ctx, req.CategorySlug)
		if err != nil {
			return nil, 0, err
		}
		f.CategoryID = c.ID
	}
	if req.BrandSlug != "" {
		b, err := s.brands.FindBySlug(ctx, req.BrandSlug)
		if err != nil {
			return nil, 0, err
		}
		f.BrandID = b.ID
	}
	return s.repo.List(ctx, f)
}

// GetAdminProducts lists every product including inactive ones
func (s *Service) GetAdminProducts(ctx context.Context, q pagination.Query) ([]Product, int64, error) {
	return s.repo.List(ctx, ListFilter{Query: q, IncludeInactive: true})
}

// GetProductBySlug returns an active product
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// GetProduct returns a product by id regardless of its status
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

// GetProductsByIDs loads products keyed by id; unknown ids are absent from the map
func (s *Service) GetProductsByIDs(ctx context.Context, ids []uint) (map[uint]Product, error) {
	products, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// CreateProduct creates a product and stores its images
func (s *Service) CreateProduct(ctx context.Context, req *ProductRequest, files Files) (*Product, error) {
	p := &Product{IsActive: true}
	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}

	stored, err := s.storeImages(ctx, p, files)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "slug": p.Slug}).Info("product created")
	return s.repo.FindByID(ctx, p.ID)
}

// UpdateProduct replaces the product fields. A new thumbnail or gallery replaces the old one.
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductRequest, files Files) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldThumb := p.Thumbnail
	oldImages := p.Images

	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}

	stored, err := s.storeImages(ctx, p, files)
	if err != nil {
		return nil, err
	}
	replaceGallery := len(files.Images) > 0

	p.Category, p.Brand = nil, nil
	if err := s.repo.Update(ctx, p, replaceGallery); err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	if files.Image != nil {
		s.discard(ctx, []string{oldThumb})
	}
	if replaceGallery {
		urls := make([]string, 0, len(oldImages))
		for _, img := range oldImages {
			urls = append(urls, img.URL)
		}
		s.discard(ctx, urls)
	}

	s.log.WithField("product_id", p.ID).Info("product updated")
	return s.repo.FindByID(ctx, p.ID)
}

// DeleteProduct soft deletes a product. Images stay on disk for past orders.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *Service) apply(ctx context.Context, p *Product, req *ProductRequest) error {
	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		return err
	}
	if req.BrandID != nil && *req.BrandID > 0 {
		if _, err := s.brands.FindByID(ctx, *req.BrandID); err != nil {
			return err
		}
	}

	attrs := make([]ProductAttribute, 0, len(req.Attributes))
	for _, av := range req.Attributes {
		if _, err := s.attributes.FindByID(ctx, av.AttributeID); err != nil {
			return err
		}
		attrs = append(attrs, ProductAttribute{AttributeID: av.AttributeID, Value: strings.TrimSpace(av.Value)})
	}

	sl, err := resolveSlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.repo.SlugTaken(ctx, candidate, p.ID)
	})
	if err != nil {
		return err
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Slug = sl
	p.SKU = strings.TrimSpace(req.SKU)
	p.Description = req.Description
	p.Price = req.Price
	p.SalePrice = req.SalePrice
	p.Quantity = req.Quantity
	p.CategoryID = req.CategoryID
	p.BrandID = req.BrandID
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.Attributes = attrs
	return nil
}

// storeImages saves the uploaded files onto p and returns their URLs for cleanup
func (s *Service) storeImages(ctx context.Context, p *Product, files Files) ([]string, error) {
	var stored []string
	if files.Image != nil {
		f, err := s.images.Save(ctx, productFolder, files.Image)
		if err != nil {
			return nil, err
		}
		p.Thumbnail = f.URL
		stored = append(stored, f.URL)
	}
	if len(files.Images) > 0 {
		saved, err := s.images.SaveAll(ctx, productFolder, files.Images)
		if err != nil {
			s.discard(ctx, stored)
			return nil, err
		}
		p.Images = make([]ProductImage, 0, len(saved))
		for i, f := range saved {
			p.Images = append(p.Images, ProductImage{URL: f.URL, SortOrder: i})
			stored = append(stored, f.URL)
		}
		if p.Thumbnail == "" {
			p.Thumbnail = saved[0].URL
		}
	}
	return stored, nil
}

func (s *Service) discard(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.images.Delete(ctx, u); err != nil {
			s.log.WithError(err).WithField("url", u).Warn("failed to remove image")
		}
	}
}

// resolveSlug uses the requested slug verbatim (rejecting collisions) or
// derives a unique one from the name.
func resolveSlug(requested, name string, taken func(string) (bool, error)) (string, error) {
	if requested = slug.Make(requested); requested != "" {
		exists, err := taken(requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrSlugTaken
		}
		return requested, nil
	}
	return slug.Unique(slug.Make(name), taken)
}
