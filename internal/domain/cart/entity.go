// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem is one product line in a user's cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"lastModifiedDate"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Line is a cart item priced with the live catalog
type Line struct {
	ProductID   uint   `json:"productId"`
	ProductName string `json:"productName"`
	ProductSlug string `json:"productSlug"`
	Thumbnail   string `json:"thumbnail"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"lineTotal"`
	// Available is false when the product was deactivated, deleted or sold out since it was added
	Available bool `json:"available"`
}

// Cart is the priced view of a user's cart
type Cart struct {
	Items         []Line `json:"items"`
	ItemCount     int    `json:"itemCount"`
	TotalQuantity int    `json:"totalQuantity"`
	TotalAmount   int64  `json:"totalAmount"`
}

// IsEmpty reports whether there is nothing to check out
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
