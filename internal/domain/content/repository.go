// internal/domain/content/repository.go
package content

import (
	"github.com/your-org/storefront-api/internal/pkg/crud"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
	"gorm.io/gorm"
)

var (
	newsCategoryFields = pagination.Fields{
		Search:      map[string]string{"name": "name", "slug": "slug"},
		Sort:        map[string]string{"name": "name", "createdDate": "created_at"},
		DefaultSort: "name ASC",
	}
	newsFields = pagination.Fields{
		Search:      map[string]string{"title": "title", "summary": "summary", "slug": "slug"},
		Sort:        map[string]string{"title": "title", "createdDate": "created_at", "publishedAt": "published_at"},
		DefaultSort: "created_at DESC",
	}
	slideFields = pagination.Fields{
		Search:      map[string]string{"title": "title"},
		Sort:        map[string]string{"position": "position", "createdDate": "created_at"},
		DefaultSort: "position ASC",
	}
)

// NewNewsCategoryRepository returns the gorm news category repository
func NewNewsCategoryRepository(db *gorm.DB) crud.Repository[NewsCategory] {
	return crud.New[NewsCategory](db, crud.Options{NotFound: ErrNewsCategoryNotFound, Fields: newsCategoryFields})
}

// NewNewsRepository returns the gorm news repository
func NewNewsRepository(db *gorm.DB) crud.Repository[News] {
	return crud.New[News](db, crud.Options{NotFound: ErrNewsNotFound, Fields: newsFields, Preloads: []string{"Category"}})
}

// NewSlideRepository returns the gorm slide repository
func NewSlideRepository(db *gorm.DB) crud.Repository[Slide] {
	return crud.New[Slide](db, crud.Options{NotFound: ErrSlideNotFound, Fields: slideFields})
}
