package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	BuyerID     uuid.UUID       `json:"buyerId"`
	SellerID    uuid.UUID       `json:"sellerId"`
	ListingID   uuid.UUID       `json:"listingId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID   `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ActorID   uuid.UUID   `json:"actorId"`
	ChangedAt time.Time   `json:"changedAt"`
}

type AlertCreatedEvent struct {
	AlertID   uuid.UUID `json:"alertId"`
	DeviceID  uuid.UUID `json:"deviceId"`
	FarmerID  uuid.UUID `json:"farmerId"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeviceOfflineEvent struct {
	DeviceID uuid.UUID  `json:"deviceId"`
	FarmerID uuid.UUID  `json:"farmerId"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
	SweptAt  time.Time  `json:"sweptAt"`
}
