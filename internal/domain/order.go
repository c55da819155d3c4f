package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// transitions holds the legal moves of the order state machine.
// DELIVERED and CANCELLED are terminal.
var transitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true},
	StatusShipped:   {StatusDelivered: true},
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OrderNumber     string          `json:"orderNumber" gorm:"size:40;uniqueIndex"`
	BuyerID         uuid.UUID       `json:"buyerId" gorm:"type:char(36);not null;index"`
	SellerID        uuid.UUID       `json:"sellerId" gorm:"type:char(36);not null;index"`
	ListingID       uuid.UUID       `json:"listingId" gorm:"type:char(36);not null"`
	Quantity        int64           `json:"quantity" gorm:"not null"`
	Unit            string          `json:"unit" gorm:"size:20"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(14,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ShippingAddress string          `json:"shippingAddress,omitempty" gorm:"type:text"`
	Version         int64           `json:"-" gorm:"not null;default:0"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (o *Order) Terminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// CanTransition reports whether the order may move to target from its
// current status.
func (o *Order) CanTransition(target OrderStatus) bool {
	return transitions[o.Status][target]
}

// ActorMayDrive reports whether actor is allowed to request the move to
// target. Confirm/ship/deliver belong to the seller; cancellation is open
// to either party while the transition table allows it.
func (o *Order) ActorMayDrive(actor uuid.UUID, target OrderStatus) bool {
	if target == StatusCancelled {
		return actor == o.BuyerID || actor == o.SellerID
	}
	return actor == o.SellerID
}

// NewOrderNumber builds a human-readable order reference such as
// ORD-20260101120000-1234.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.UTC().Format("20060102150405"), rand.Intn(10000))
}
