// internal/domain/product/category_service.go
package product

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

const (
	categoryFolder = "categories"
	brandFolder    = "brands"
)

// CategoryService handles category, brand and attribute business logic
type CategoryService struct {
	categories crud.Repository[Category]
	brands     crud.Repository[Brand]
	attributes crud.Repository[Attribute]
	products   Repository
	images     ImageStore
	log        logrus.FieldLogger
}

// NewCategoryService creates a new taxonomy service
func NewCategoryService(categories crud.Repository[Category], brands crud.Repository[Brand], attributes crud.Repository[Attribute], products Repository, images ImageStore, log logrus.FieldLogger) *CategoryService {
	return &CategoryService{
		categories: categories,
		brands:     brands,
		attributes: attributes,
		products:   products,
		images:     images,
		log:        log,
	}
}

// CategoryRequest is the "entity" part of the category form
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255"`
	Description string `json:"description" binding:"max=500"`
	ParentID    *uint  `json:"parentId"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    *bool  `json:"isActive"`
}

// BrandRequest is the "entity" part of the brand form
type BrandRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255"`
	Description string `json:"description" binding:"max=500"`
	IsActive    *bool  `json:"isActive"`
}

// AttributeRequest creates or renames an attribute
type AttributeRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"omitempty,max=100"`
}

// GetCategories lists categories; the public listing hides inactive ones
func (s *CategoryService) GetCategories(ctx context.Context, q pagination.Query, includeInactive bool) ([]Category, int64, error) {
	var where crud.Where
	if !includeInactive {
		where = crud.Where{"is_active": true}
	}
	return s.categories.List(ctx, q, where)
}

// GetCategoryBySlug returns an active category
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// GetCategory returns a category by id
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	return s.categories.FindByID(ctx, id)
}

// CreateCategory creates a category with an optional image
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryRequest, image *multipart.FileHeader) (*Category, error) {
	c := &Category{IsActive: true}
	if err := s.applyCategory(ctx, c, req); err != nil {
		return nil, err
	}
	if image != nil {
		f, err := s.images.Save(ctx, categoryFolder, image)
		if err != nil {
			return nil, err
		}
		c.Image = f.URL
	}
	if err := s.categories.Create(ctx, c); err != nil {
		s.removeImage(ctx, c.Image)
		return nil, err
	}
	s.log.WithField("category_id", c.ID).Info("category created")
	return c, nil
}

// UpdateCategory updates a category; a new image replaces the old one
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *CategoryRequest, image *multipart.FileHeader) (*Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, c, req); err != nil {
		return nil, err
	}

	old := ""
	if image != nil {
		f, err := s.images.Save(ctx, categoryFolder, image)
		if err != nil {
			return nil, err
		}
		old, c.Image = c.Image, f.URL
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	s.removeImage(ctx, old)
	return c, nil
}

// DeleteCategory deletes a category that no product references
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.categories.Delete(ctx, id)
}

func (s *CategoryService) applyCategory(ctx context.Context, c *Category, req *CategoryRequest) error {
	if req.ParentID != nil && *req.ParentID > 0 {
		if c.ID != 0 && s.isCircularReference(ctx, c.ID, *req.ParentID) {
			return ErrCircularCategory
		}
		if _, err := s.categories.FindByID(ctx, *req.ParentID); err != nil {
			return err
		}
		c.ParentID = req.ParentID
	} else {
		c.ParentID = nil
	}

	sl, err := resolveSlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.categories.SlugTaken(ctx, candidate, c.ID)
	})
	if err != nil {
		return err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Slug = sl
	c.Description = req.Description
	c.SortOrder = req.SortOrder
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	return nil
}

// isCircularReference walks up from parentID looking for categoryID
func (s *CategoryService) isCircularReference(ctx context.Context, categoryID, parentID uint) bool {
	seen := map[uint]bool{}
	for current := parentID; current != 0 && !seen[current]; {
		if current == categoryID {
			return true
		}
		seen[current] = true
		parent, err := s.categories.FindByID(ctx, current)
		if err != nil || parent.ParentID == nil {
			return false
		}
		current = *parent.ParentID
	}
	return false
}

// GetBrands lists brands; the public listing hides inactive ones
func (s *CategoryService) GetBrands(ctx context.Context, q pagination.Query, includeInactive bool) ([]Brand, int64, error) {
	var where crud.Where
	if !includeInactive {
		where = crud.Where{"is_active": true}
	}
	return s.brands.List(ctx, q, where)
}

// GetBrandBySlug returns an active brand
func (s *CategoryService) GetBrandBySlug(ctx context.Context, slug string) (*Brand, error) {
	b, err := s.brands.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		return nil, ErrBrandNotFound
	}
	return b, nil
}

// CreateBrand creates a brand with an optional logo
func (s *CategoryService) CreateBrand(ctx context.Context, req *BrandRequest, logo *multipart.FileHeader) (*Brand, error) {
	b := &Brand{IsActive: true}
	if err := s.applyBrand(ctx, b, req); err != nil {
		return nil, err
	}
	if logo != nil {
		f, err := s.images.Save(ctx, brandFolder, logo)
		if err != nil {
			return nil, err
		}
		b.Logo = f.URL
	}
	if err := s.brands.Create(ctx, b); err != nil {
		s.removeImage(ctx, b.Logo)
		return nil, err
	}
	s.log.WithField("brand_id", b.ID).Info("brand created")
	return b, nil
}

// UpdateBrand updates a brand; a new logo replaces the old one
func (s *CategoryService) UpdateBrand(ctx context.Context, id uint, req *BrandRequest, logo *multipart.FileHeader) (*Brand, error) {
	b, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyBrand(ctx, b, req); err != nil {
		return nil, err
	}
	old := ""
	if logo != nil {
		f, err := s.images.Save(ctx, brandFolder, logo)
		if err != nil {
			return nil, err
		}
		old, b.Logo = b.Logo, f.URL
	}
	if err := s.brands.Save(ctx, b); err != nil {
		return nil, err
	}
	s.removeImage(ctx, old)
	return b, nil
}

// DeleteBrand deletes a brand; its products lose the brand reference
func (s *CategoryService) DeleteBrand(ctx context.Context, id uint) error {
	return s.brands.Delete(ctx, id)
}

func (s *CategoryService) applyBrand(ctx context.Context, b *Brand, req *BrandRequest) error {
	sl, err := resolveSlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.brands.SlugTaken(ctx, candidate, b.ID)
	})
	if err != nil {
		return err
	}
	b.Name = strings.TrimSpace(req.Name)
	b.Slug = sl
	b.Description = req.Description
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	return nil
}

// GetAttributes lists every attribute
func (s *CategoryService) GetAttributes(ctx context.Context) ([]Attribute, error) {
	return s.attributes.All(ctx, nil)
}

// CreateAttribute creates an attribute
func (s *CategoryService) CreateAttribute(ctx context.Context, req *AttributeRequest) (*Attribute, error) {
	a := &Attribute{}
	if err := s.applyAttribute(ctx, a, req); err != nil {
		return nil, err
	}
	if err := s.attributes.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAttribute renames an attribute
func (s *CategoryService) UpdateAttribute(ctx context.Context, id uint, req *AttributeRequest) (*Attribute, error) {
	a, err := s.attributes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyAttribute(ctx, a, req); err != nil {
		return nil, err
	}
	if err := s.attributes.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAttribute deletes an attribute and, through the foreign key, its values
func (s *CategoryService) DeleteAttribute(ctx context.Context, id uint) error {
	return s.attributes.Delete(ctx, id)
}

func (s *CategoryService) applyAttribute(ctx context.Context, a *Attribute, req *AttributeRequest) error {
	sl, err := resolveSlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.attributes.SlugTaken(ctx, candidate, a.ID)
	})
	if err != nil {
		return err
	}
	a.Name = strings.TrimSpace(req.Name)
	a.Slug = sl
	return nil
}

func (s *CategoryService) removeImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.log.WithError(err).WithField("url", url).Warn("failed to remove image")
	}
}
