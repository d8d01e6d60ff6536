package models

import "time"

// Product is a menu item owned by a partner. Price is in the smallest currency unit.
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title     string    `json:"title" gorm:"not null"`
	Price     int64     `json:"price" gorm:"not null"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
