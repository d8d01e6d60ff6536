package models

import (
	"time"
)

// UserRole is the closed set of account roles.
type UserRole string

const (
	RoleCustomer UserRole = "user"
	RolePartner  UserRole = "partner"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RolePartner
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"fullName" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Gender    string    `json:"gender"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	Image     string    `json:"image"`
	Role      UserRole  `json:"role" gorm:"not null;default:'user'"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsPartner() bool  { return u.Role == RolePartner }
func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }
