package models

import "time"

// Subrubro is a category node inside a rubro. Nodes form a tree through
// ParentID; top-level subrubros have a nil parent.
type Subrubro struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Rubro     string     `gorm:"index;not null" json:"rubro"`
	Name      string     `gorm:"not null" json:"name"`
	ParentID  *uint      `gorm:"index" json:"parent_id"`
	Children  []Subrubro `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"children,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
