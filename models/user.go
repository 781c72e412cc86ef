package models

import "time"

const (
	RoleUser      = "user"
	RoleWholesale = "wholesale"
	RoleAdmin     = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Picture      string    `json:"picture"`
	Provider     string    `json:"provider"` // credentials | google
	Role         string    `gorm:"default:user" json:"role"`
	Address      Address   `gorm:"embedded" json:"address"`
	Orders       []Order   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Address model embedded in User
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

// Wholesale reports whether the user sees wholesale pricing.
func (u *User) Wholesale() bool {
	return u.Role == RoleWholesale
}
