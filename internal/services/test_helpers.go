package services

import (
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func CreateMockOrder(id, buyerID, sellerID, listingID uuid.UUID, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:          id,
		OrderNumber: domain.NewOrderNumber(time.Now()),
		BuyerID:     buyerID,
		SellerID:    sellerID,
		ListingID:   listingID,
		Quantity:    3,
		Unit:        "KG",
		TotalAmount: decimal.RequireFromString("30.00"),
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func CreateMockListing(id, sellerID uuid.UUID, unitPrice string, available int64) *infra.ListingInfo {
	return &infra.ListingInfo{
		ID:                id,
		SellerID:          sellerID,
		Title:             "Organic Tomatoes",
		UnitPrice:         decimal.RequireFromString(unitPrice),
		Unit:              "KG",
		QuantityAvailable: available,
		Status:            "ACTIVE",
	}
}

func CreateMockDevice(id, farmID, farmerID uuid.UUID, serial *string) *domain.Device {
	return &domain.Device{
		ID:           id,
		FarmID:       farmID,
		FarmName:     "North Field",
		FarmerID:     farmerID,
		Name:         "Soil Sensor A",
		Type:         domain.DeviceMoisture,
		SerialNumber: serial,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func CreateMockAlert(id, deviceID, farmerID uuid.UUID, acknowledged bool) *domain.Alert {
	return &domain.Alert{
		ID:           id,
		DeviceID:     deviceID,
		FarmerID:     farmerID,
		Severity:     domain.SeverityWarning,
		Title:        "Moisture low",
		Message:      "reading 12.0 crossed threshold 20.0 on device Soil Sensor A",
		Acknowledged: acknowledged,
		CreatedAt:    time.Now(),
	}
}
