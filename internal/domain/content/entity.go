// internal/domain/content/entity.go
package content

import (
	"time"
)

// NewsCategory groups news articles
type NewsCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"createdDate"`
	UpdatedAt   time.Time `json:"lastModifiedDate"`
}

// News is a published article
type News struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null;size:255" json:"title"`
	Slug        string        `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Summary     string        `gorm:"size:1000" json:"summary"`
	Content     string        `gorm:"type:text" json:"content"`
	Thumbnail   string        `gorm:"size:500" json:"thumbnail"`
	CategoryID  *uint         `gorm:"index" json:"categoryId"`
	IsPublished bool          `gorm:"default:false;index" json:"isPublished"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	AuthorID    uint          `json:"authorId"`
	Category    *NewsCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time     `json:"createdDate"`
	UpdatedAt   time.Time     `json:"lastModifiedDate"`
}

// Slide is a home page banner
type Slide struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Image     string    `gorm:"not null;size:500" json:"image"`
	Link      string    `gorm:"size:500" json:"link"`
	Position  int       `gorm:"default:0" json:"position"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"lastModifiedDate"`
}

// TableName overrides
func (NewsCategory) TableName() string { return "news_categories" }
func (News) TableName() string         { return "news" }
func (Slide) TableName() string        { return "slides" }
