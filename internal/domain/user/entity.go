// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role names
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Gender of a user or order recipient
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Role is a named permission set
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;size:50" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// User represents the user entity
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string         `gorm:"not null;size:255" json:"-"`
	PhoneNumber  string         `gorm:"size:20" json:"phoneNumber"`
	FullName     string         `gorm:"size:150" json:"fullName"`
	Address      string         `gorm:"size:500" json:"address"`
	Gender       Gender         `gorm:"size:10" json:"gender"`
	IsLocked     bool           `gorm:"default:false" json:"isLocked"`
	LastLoginAt  *time.Time     `json:"lastLoginAt"`
	CreatedAt    time.Time      `json:"createdDate"`
	UpdatedAt    time.Time      `json:"lastModifiedDate"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Role
func (Role) TableName() string {
	return "roles"
}

// BeforeSave normalises identifiers
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	return nil
}

// RoleNames returns the names of the user's roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user has the named role
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Profile is the "current user" view returned by auth/current
type Profile struct {
	UserID      uint     `json:"userId"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber"`
	FullName    string   `json:"fullName"`
	Address     string   `json:"address"`
	Gender      Gender   `json:"gender"`
	Roles       []string `json:"roles"`
}

// ToProfile builds the public profile
func (u *User) ToProfile() *Profile {
	return &Profile{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		Address:     u.Address,
		Gender:      u.Gender,
		Roles:       u.RoleNames(),
	}
}
