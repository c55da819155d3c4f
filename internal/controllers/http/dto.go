package http

import (
	"time"

	"agrilink-core/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	ListingID       uuid.UUID `json:"listingId" binding:"required"`
	Quantity        int64     `json:"quantity" binding:"required"`
	ShippingAddress string    `json:"shippingAddress"`
}

type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type RegisterDeviceRequest struct {
	Name         string            `json:"name" binding:"required"`
	Type         domain.DeviceType `json:"type" binding:"required"`
	FarmID       uuid.UUID         `json:"farmId" binding:"required"`
	SerialNumber *string           `json:"serialNumber"`
}

type UpdateDeviceRequest struct {
	Name         *string            `json:"name"`
	Type         *domain.DeviceType `json:"type"`
	SerialNumber *string            `json:"serialNumber"`
}

type TelemetryReadingRequest struct {
	Value     decimal.Decimal `json:"value" binding:"required"`
	Unit      string          `json:"unit"`
	Timestamp time.Time       `json:"timestamp"`
}

type IngestTelemetryRequest struct {
	DeviceID uuid.UUID `json:"deviceId" binding:"required"`
	TelemetryReadingRequest
}

type BatchTelemetryRequest struct {
	DeviceID uuid.UUID                 `json:"deviceId" binding:"required"`
	Readings []TelemetryReadingRequest `json:"readings" binding:"required,min=1"`
}

type CreateRuleRequest struct {
	Condition domain.RuleCondition `json:"condition" binding:"required"`
	Threshold decimal.Decimal      `json:"threshold" binding:"required"`
	Severity  domain.Severity      `json:"severity"`
	Title     string               `json:"title" binding:"required"`
}
