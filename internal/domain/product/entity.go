// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SKU           string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         int64          `gorm:"not null" json:"price"` // VND
	SalePrice     *int64         `json:"salePrice"`
	Quantity      int            `gorm:"default:0" json:"quantity"`
	CategoryID    uint           `gorm:"not null;index" json:"categoryId"`
	BrandID       *uint          `gorm:"index" json:"brandId"`
	Thumbnail     string         `gorm:"size:500" json:"thumbnail"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`
	AverageRating float64        `gorm:"default:0" json:"averageRating"`
	ReviewCount   int            `gorm:"default:0" json:"reviewCount"`
	CreatedAt     time.Time      `json:"createdDate"`
	UpdatedAt     time.Time      `json:"lastModifiedDate"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category   *Category          `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	Brand      *Brand             `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
	Images     []ProductImage     `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	Attributes []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attributes"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Image       string         `gorm:"size:500" json:"image"`
	ParentID    *uint          `gorm:"index" json:"parentId"`
	SortOrder   int            `gorm:"default:0" json:"sortOrder"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time      `json:"createdDate"`
	UpdatedAt   time.Time      `json:"lastModifiedDate"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Brand represents product brands
type Brand struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Logo        string         `gorm:"size:500" json:"logo"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time      `json:"createdDate"`
	UpdatedAt   time.Time      `json:"lastModifiedDate"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Attribute is a filterable product property such as colour or size
type Attribute struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"lastModifiedDate"`
}

// ProductImage is a gallery image
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	SortOrder int       `gorm:"default:0" json:"sortOrder"`
	CreatedAt time.Time `json:"createdDate"`
}

// ProductAttribute binds an attribute value to a product
type ProductAttribute struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProductID   uint       `gorm:"not null;uniqueIndex:idx_product_attribute" json:"productId"`
	AttributeID uint       `gorm:"not null;uniqueIndex:idx_product_attribute" json:"attributeId"`
	Value       string     `gorm:"not null;size:255" json:"value"`
	Attribute   *Attribute `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE;" json:"attribute,omitempty"`
}

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// Review is a customer rating of a product they received
type Review struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ProductID    uint         `gorm:"not null;uniqueIndex:idx_review_user_product" json:"productId"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_review_user_product" json:"userId"`
	Rating       int          `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment      string       `gorm:"type:text" json:"comment"`
	Status       ReviewStatus `gorm:"not null;size:20;index;default:'PENDING'" json:"status"`
	RejectReason string       `gorm:"size:500" json:"rejectReason,omitempty"`
	ModeratedBy  *uint        `json:"moderatedBy,omitempty"`
	ModeratedAt  *time.Time   `json:"moderatedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdDate"`
	UpdatedAt    time.Time    `json:"lastModifiedDate"`

	Author  *ReviewAuthor  `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Product *ReviewProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// ReviewAuthor is the read-only view of the user who wrote a review
type ReviewAuthor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// ReviewProduct is the read-only view of the reviewed product
type ReviewProduct struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TableName overrides
func (Product) TableName() string          { return "products" }
func (Category) TableName() string         { return "categories" }
func (Brand) TableName() string            { return "brands" }
func (Attribute) TableName() string        { return "attributes" }
func (ProductImage) TableName() string     { return "product_images" }
func (ProductAttribute) TableName() string { return "product_attributes" }
func (Review) TableName() string           { return "reviews" }
func (ReviewAuthor) TableName() string     { return "users" }
func (ReviewProduct) TableName() string    { return "products" }

// EffectivePrice is the sale price when it undercuts the list price
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// GetDiscountPercentage returns the rounded-down discount of the sale price
func (p *Product) GetDiscountPercentage() int {
	eff := p.EffectivePrice()
	if p.Price > 0 && eff < p.Price {
		return int(((p.Price - eff) * 100) / p.Price)
	}
	return 0
}

// IsInStock reports whether quantity units can be sold
func (p *Product) IsInStock(quantity int) bool {
	return p.IsActive && p.Quantity >= quantity
}

// CanTransition reports whether a review may move from s to next
func (s ReviewStatus) CanTransition(next ReviewStatus) bool {
	switch s {
	case ReviewPending:
		return next == ReviewApproved || next == ReviewRejected
	case ReviewApproved:
		return next == ReviewRejected
	case ReviewRejected:
		return next == ReviewApproved
	}
	return false
}
