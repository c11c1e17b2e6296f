// internal/domain/content/service.go
package content

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"github.com/your-org/storefront-api/internal/pkg/slug"
)

var (
	ErrNewsNotFound         = errors.New("news not found")
	ErrNewsCategoryNotFound = errors.New("news category not found")
	ErrSlideNotFound        = errors.New("slide not found")
	ErrSlugTaken            = errors.New("slug is already in use")
	ErrNewsCategoryInUse    = errors.New("news category still has articles")
	ErrSlideImageRequired   = errors.New("slide image is required")
)

const (
	newsFolder  = "news"
	slideFolder = "slides"
)

// ImageStore saves uploaded images
type ImageStore interface {
	Save(ctx context.Context, folder string, fh *multipart.FileHeader) (*upload.File, error)
	Delete(ctx context.Context, url string) error
}

// Service handles news, news category and slide business logic
type Service struct {
	categories crud.Repository[NewsCategory]
	news       crud.Repository[News]
	slides     crud.Repository[Slide]
	images     ImageStore
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewService creates a new content service
func NewService(categories crud.Repository[NewsCategory], news crud.Repository[News], slides crud.Repository[Slide], images ImageStore, log logrus.FieldLogger) *Service {
	return &Service{
		categories: categories,
		news:       news,
		slides:     slides,
		images:     images,
		log:        log,
		now:        time.Now,
	}
}

// NewsCategoryRequest creates or updates a news category
type NewsCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255"`
	Description string `json:"description" binding:"max=500"`
}

// NewsRequest is the "entity" part of the news form
type NewsRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255"`
	Summary     string `json:"summary" binding:"max=1000"`
	Content     string `json:"content"`
	CategoryID  *uint  `json:"categoryId"`
	IsPublished bool   `json:"isPublished"`
}

// SlideRequest is the "entity" part of the slide form
type SlideRequest struct {
	Title    string `json:"title" binding:"max=255"`
	Link     string `json:"link" binding:"omitempty,max=500"`
	Position int    `json:"position"`
	IsActive *bool  `json:"isActive"`
}

// News categories

func (s *Service) GetNewsCategories(ctx context.Context, q pagination.Query) ([]NewsCategory, int64, error) {
	return s.categories.List(ctx, q, nil)
}

func (s *Service) GetNewsCategoryBySlug(ctx context.Context, sl string) (*NewsCategory, error) {
	return s.categories.FindBySlug(ctx, sl)
}

func (s *Service) GetNewsCategory(ctx context.Context, id uint) (*NewsCategory, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *Service) CreateNewsCategory(ctx context.Context, req *NewsCategoryRequest) (*NewsCategory, error) {
	c := &NewsCategory{}
	if err := s.applyCategory(ctx, c, req); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateNewsCategory(ctx context.Context, id uint, req *NewsCategoryRequest) (*NewsCategory, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, c, req); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteNewsCategory refuses while articles still reference the category
func (s *Service) DeleteNewsCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	articles, err := s.news.All(ctx, crud.Where{"category_id": id})
	if err != nil {
		return err
	}
	if len(articles) > 0 {
		return ErrNewsCategoryInUse
	}
	return s.categories.Delete(ctx, id)
}

func (s *Service) applyCategory(ctx context.Context, c *NewsCategory, req *NewsCategoryRequest) error {
	sl, err := resolveSlug(req.Slug, req.Name, func(candidate string) (bool, error) {
		return s.categories.SlugTaken(ctx, candidate, c.ID)
	})
	if err != nil {
		return err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Slug = sl
	c.Description = req.Description
	return nil
}

// News

// GetNews lists articles. The public listing only shows published ones and
// may be narrowed to one category slug.
func (s *Service) GetNews(ctx context.Context, q pagination.Query, categorySlug string, includeDrafts bool) ([]News, int64, error) {
	where := crud.Where{}
	if !includeDrafts {
		where["is_published"] = true
	}
	if categorySlug != "" {
		c, err := s.categories.FindBySlug(ctx, categorySlug)
		if err != nil {
			return nil, 0, err
		}
		where["category_id"] = c.ID
	}
	return s.news.List(ctx, q, where)
}

// GetNewsBySlug returns a published article
func (s *Service) GetNewsBySlug(ctx context.Context, sl string) (*News, error) {
	n, err := s.news.FindBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	if !n.IsPublished {
		return nil, ErrNewsNotFound
	}
	return n, nil
}

func (s *Service) GetNewsByID(ctx context.Context, id uint) (*News, error) {
	return s.news.FindByID(ctx, id)
}

func (s *Service) CreateNews(ctx context.Context, authorID uint, req *NewsRequest, image *multipart.FileHeader) (*News, error) {
	n := &News{AuthorID: authorID}
	if err := s.applyNews(ctx, n, req); err != nil {
		return nil, err
	}
	if image != nil {
		f, err := s.images.Save(ctx, newsFolder, image)
		if err != nil {
			return nil, err
		}
		n.Thumbnail = f.URL
	}
	if err := s.news.Create(ctx, n); err != nil {
		s.removeImage(ctx, n.Thumbnail)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"news_id": n.ID, "author_id": authorID}).Info("news created")
	return n, nil
}

func (s *Service) UpdateNews(ctx context.Context, id uint, req *NewsRequest, image *multipart.FileHeader) (*News, error) {
	n, err := s.news.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyNews(ctx, n, req); err != nil {
		return nil, err
	}

	old := ""
	if image != nil {
		f, err := s.images.Save(ctx, newsFolder, image)
		if err != nil {
			return nil, err
		}
		old, n.Thumbnail = n.Thumbnail, f.URL
	}
	// the preloaded association would otherwise be upserted by Save
	n.Category = nil
	if err := s.news.Save(ctx, n); err != nil {
		return nil, err
	}
	s.removeImage(ctx, old)
	return s.news.FindByID(ctx, n.ID)
}

func (s *Service) DeleteNews(ctx context.Context, id uint) error {
	n, err := s.news.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.news.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, n.Thumbnail)
	return nil
}

func (s *Service) applyNews(ctx context.Context, n *News, req *NewsRequest) error {
	if req.CategoryID != nil && *req.CategoryID > 0 {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return err
		}
		n.CategoryID = req.CategoryID
	} else {
		n.CategoryID = nil
	}

	sl, err := resolveSlug(req.Slug, req.Title, func(candidate string) (bool, error) {
		return s.news.SlugTaken(ctx, candidate, n.ID)
	})
	if err != nil {
		return err
	}
	n.Title = strings.TrimSpace(req.Title)
	n.Slug = sl
	n.Summary = req.Summary
	n.Content = req.Content
	if req.IsPublished && !n.IsPublished {
		at := s.now()
		n.PublishedAt = &at
	}
	n.IsPublished = req.IsPublished
	return nil
}

// Slides

// GetSlides lists slides by position; the storefront only sees active ones
func (s *Service) GetSlides(ctx context.Context, q pagination.Query, includeInactive bool) ([]Slide, int64, error) {
	var where crud.Where
	if !includeInactive {
		where = crud.Where{"is_active": true}
	}
	return s.slides.List(ctx, q, where)
}

func (s *Service) GetSlide(ctx context.Context, id uint) (*Slide, error) {
	return s.slides.FindByID(ctx, id)
}

func (s *Service) CreateSlide(ctx context.Context, req *SlideRequest, image *multipart.FileHeader) (*Slide, error) {
	if image == nil {
		return nil, ErrSlideImageRequired
	}
	f, err := s.images.Save(ctx, slideFolder, image)
	if err != nil {
		return nil, err
	}
	sl := &Slide{Image: f.URL, IsActive: true}
	applySlide(sl, req)
	if err := s.slides.Create(ctx, sl); err != nil {
		s.removeImage(ctx, sl.Image)
		return nil, err
	}
	return sl, nil
}

func (s *Service) UpdateSlide(ctx context.Context, id uint, req *SlideRequest, image *multipart.FileHeader) (*Slide, error) {
	sl, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applySlide(sl, req)

	old := ""
	if image != nil {
		f, err := s.images.Save(ctx, slideFolder, image)
		if err != nil {
			return nil, err
		}
		old, sl.Image = sl.Image, f.URL
	}
	if err := s.slides.Save(ctx, sl); err != nil {
		return nil, err
	}
	s.removeImage(ctx, old)
	return sl, nil
}

func (s *Service) DeleteSlide(ctx context.Context, id uint) error {
	sl, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.slides.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, sl.Image)
	return nil
}

func applySlide(sl *Slide, req *SlideRequest) {
	sl.Title = strings.TrimSpace(req.Title)
	sl.Link = strings.TrimSpace(req.Link)
	sl.Position = req.Position
	if req.IsActive != nil {
		sl.IsActive = *req.IsActive
	}
}

func (s *Service) removeImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.log.WithError(err).WithField("url", url).Warn("failed to remove image")
	}
}

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
