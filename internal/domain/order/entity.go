// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-api/internal/domain/checkout"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

// PaymentStatus represents payment status. It moves independently of OrderStatus.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// validTransitions is the whitelist of status changes
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusDelivering, OrderStatusCancelled},
	OrderStatusDelivering: {OrderStatusDelivered, OrderStatusReturned},
	OrderStatusDelivered:  {OrderStatusReturned},
	OrderStatusCancelled:  {},
	OrderStatusReturned:   {},
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// AllowedTransitions lists the statuses reachable from s
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	return append([]OrderStatus(nil), validTransitions[s]...)
}

// CanTransition reports whether s may move to next
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return s.IsValid() && len(validTransitions[s]) == 0
}

// Order represents the order entity
type Order struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	OrderCode      string                  `gorm:"uniqueIndex;size:50" json:"orderCode"`
	UserID         uint                    `gorm:"not null;index" json:"userId"`
	Status         OrderStatus             `gorm:"not null;size:20;index;default:'PENDING'" json:"status"`
	PaymentMethod  checkout.PaymentMethod  `gorm:"not null;size:20" json:"paymentMethod"`
	PaymentStatus  PaymentStatus           `gorm:"not null;size:20;index;default:'PENDING'" json:"paymentStatus"`
	DeliveryMethod checkout.DeliveryMethod `gorm:"not null;size:20" json:"deliveryMethod"`

	// Recipient
	RecipientName   string `gorm:"not null;size:150" json:"recipientName"`
	RecipientGender string `gorm:"size:10" json:"recipientGender"`
	RecipientEmail  string `gorm:"not null;size:255" json:"recipientEmail"`
	RecipientPhone  string `gorm:"not null;size:20" json:"recipientPhone"`
	ShippingAddress string `gorm:"size:500" json:"shippingAddress"`
	Note            string `gorm:"type:text" json:"note"`
	CancelReason    string `gorm:"size:500" json:"cancelReason"`

	// VAT invoice
	RequestInvoice bool   `gorm:"default:false" json:"requestInvoice"`
	CompanyName    string `gorm:"size:255" json:"companyName,omitempty"`
	CompanyTaxCode string `gorm:"size:20" json:"companyTaxCode,omitempty"`
	CompanyAddress string `gorm:"size:500" json:"companyAddress,omitempty"`

	// Sum of quantity x priceAtTimeOfOrder, fixed at creation
	TotalAmount int64 `gorm:"not null" json:"totalAmount"`

	PaidAt      *time.Time `json:"paidAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdDate"`
	UpdatedAt   time.Time  `json:"lastModifiedDate"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"statusHistory,omitempty"`
}

// OrderItem is a snapshot of a cart line
type OrderItem struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	OrderID            uint   `gorm:"not null;index" json:"orderId"`
	ProductID          uint   `gorm:"not null;index" json:"productId"`
	ProductName        string `gorm:"not null;size:255" json:"productName"`
	ProductImage       string `gorm:"size:500" json:"productImage"`
	Quantity           int    `gorm:"not null;check:quantity >= 1" json:"quantity"`
	PriceAtTimeOfOrder int64  `gorm:"not null" json:"priceAtTimeOfOrder"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"orderId"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Note      string      `gorm:"type:text" json:"note"`
	ChangedBy uint        `gorm:"index" json:"changedBy"`
	CreatedAt time.Time   `json:"createdDate"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// LineTotal is quantity times the snapshot price
func (i OrderItem) LineTotal() int64 {
	return i.PriceAtTimeOfOrder * int64(i.Quantity)
}

// ComputeTotal sums the snapshot line totals
func ComputeTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// generateOrderCode formats ORD-YYYYMMDD-XXXXX
func generateOrderCode(id uint, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%05d", at.Format("20060102"), id)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransition(OrderStatusCancelled)
}

// IsEditable reports whether recipient and delivery details may still change
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusPending
}

// IsPaid checks if the gateway or a reconciliation confirmed payment
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}
