package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionStatus is a lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusWaitingApprove TransactionStatus = "waiting approve"
	StatusOnTheWay       TransactionStatus = "on the way"
	StatusSuccess        TransactionStatus = "success"
	StatusCancel         TransactionStatus = "cancel"
)

// Transaction is one customer checkout against one partner.
type Transaction struct {
	ID               uint              `gorm:"primaryKey"`
	CustomerID       uint              `gorm:"not null;index"`
	RestaurantID     uint              `gorm:"not null;index"`
	Status           TransactionStatus `gorm:"not null;default:'waiting approve'"`
	DeliveryLocation string
	Version          int                  `gorm:"not null;default:1"`
	Orders           []Order              `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	History          []TransactionHistory `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time            `gorm:"index"`
	UpdatedAt        time.Time
}

// Order is an immutable line item. Title, price and image are copied from the
// catalog when the transaction is created and never re-resolved.
type Order struct {
	ID            uint   `gorm:"primaryKey"`
	TransactionID uint   `gorm:"not null;index"`
	ProductID     uint   `gorm:"not null"`
	Title         string `gorm:"not null"`
	Price         int64  `gorm:"not null"`
	Image         string
	Qty           int `gorm:"not null"`
	CreatedAt     time.Time
}

// Subtotal is price times quantity.
func (o Order) Subtotal() int64 {
	return o.Price * int64(o.Qty)
}

// TransactionHistory records every change applied to a transaction.
type TransactionHistory struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	TransactionID uint              `json:"transactionId" gorm:"not null;index"`
	FromStatus    TransactionStatus `json:"fromStatus"`
	ToStatus      TransactionStatus `json:"toStatus" gorm:"not null"`
	ChangedBy     uint              `json:"changedBy"`
	Changes       datatypes.JSON    `json:"changes"`
	CreatedAt     time.Time         `json:"createdAt"`
}
