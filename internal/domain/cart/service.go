// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/product"
)

var (
	ErrItemNotFound = errors.New("product is not in the cart")
	ErrCartEmpty    = errors.New("cart is empty")
)

// ProductLookup loads live catalog data
type ProductLookup interface {
	GetProductsByIDs(ctx context.Context, ids []uint) (map[uint]product.Product, error)
}

// Service handles cart business logic
type Service struct {
	repo     Repository
	products ProductLookup
	log      logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(repo Repository, products ProductLookup, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, products: products, log: log}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=1000"`
}

// UpdateCartItemRequest represents update cart item request. Removal is a DELETE.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=1000"`
}

// GetCart returns the cart priced with current catalog prices
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Items: make([]Line, 0, len(items))}
	for _, it := range items {
		line := Line{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := products[it.ProductID]; ok {
			line.ProductName = p.Name
			line.ProductSlug = p.Slug
			line.Thumbnail = p.Thumbnail
			line.UnitPrice = p.EffectivePrice()
			line.LineTotal = line.UnitPrice * int64(it.Quantity)
			line.Available = p.IsInStock(it.Quantity)
		}
		cart.Items = append(cart.Items, line)
		cart.TotalQuantity += it.Quantity
		cart.TotalAmount += line.LineTotal
	}
	cart.ItemCount = len(cart.Items)
	return cart, nil
}

// AddToCart adds a product, incrementing the quantity when it is already present
func (s *Service) AddToCart(ctx context.Context, userID uint, req *AddToCartRequest) (*Cart, error) {
	current := 0
	existing, err := s.repo.Find(ctx, userID, req.ProductID)
	switch {
	case err == nil:
		current = existing.Quantity
	case !errors.Is(err, ErrItemNotFound):
		return nil, err
	}

	if err := s.checkStock(ctx, req.ProductID, current+req.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, userID, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "product_id": req.ProductID, "quantity": req.Quantity}).
		Debug("cart item added")
	return s.GetCart(ctx, userID)
}

// UpdateCartItem sets the quantity of a line
func (s *Service) UpdateCartItem(ctx context.Context, userID, productID uint, req *UpdateCartItemRequest) (*Cart, error) {
	if _, err := s.repo.Find(ctx, userID, productID); err != nil {
		return nil, err
	}
	if err := s.checkStock(ctx, productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveFromCart deletes a line
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID uint) (*Cart, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// ClearCart empties the cart
func (s *Service) ClearCart(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

func (s *Service) checkStock(ctx context.Context, productID uint, quantity int) error {
	products, err := s.products.GetProductsByIDs(ctx, []uint{productID})
	if err != nil {
		return err
	}
	p, ok := products[productID]
	if !ok {
		return product.ErrProductNotFound
	}
	if !p.IsActive {
		return product.ErrProductInactive
	}
	if p.Quantity < quantity {
		return product.ErrInsufficientStock
	}
	return nil
}
