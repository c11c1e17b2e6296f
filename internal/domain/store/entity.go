// internal/domain/store/entity.go
package store

import "time"

// singletonID is the only row of store_info
const singletonID = 1

// StoreInfo is the shop's public contact card shown in the storefront header and footer
type StoreInfo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255" json:"name"`
	Address      string    `gorm:"size:500" json:"address"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Hotline      string    `gorm:"size:20" json:"hotline"`
	Email        string    `gorm:"size:255" json:"email"`
	Logo         string    `gorm:"size:500" json:"logo"`
	Facebook     string    `gorm:"size:500" json:"facebook"`
	Zalo         string    `gorm:"size:100" json:"zalo"`
	OpeningHours string    `gorm:"size:255" json:"openingHours"`
	UpdatedAt    time.Time `json:"lastModifiedDate"`
}

// TableName overrides the table name
func (StoreInfo) TableName() string {
	return "store_info"
}
