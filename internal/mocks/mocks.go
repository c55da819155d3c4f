package mocks

import (
	"context"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, page, size int) ([]domain.Order, int64, error) {
	args := m.Called(ctx, buyerID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, page, size int) ([]domain.Order, int64, error) {
	args := m.Called(ctx, sellerID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, version int64, target domain.OrderStatus, at time.Time) error {
	args := m.Called(ctx, id, version, target, at)
	return args.Error(0)
}

type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Save(ctx context.Context, device *domain.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindByFarm(ctx context.Context, farmID uuid.UUID, page, size int) ([]domain.Device, int64, error) {
	args := m.Called(ctx, farmID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Device), args.Get(1).(int64), args.Error(2)
}

func (m *MockDeviceRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID, page, size int) ([]domain.Device, int64, error) {
	args := m.Called(ctx, farmerID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Device), args.Get(1).(int64), args.Error(2)
}

func (m *MockDeviceRepository) Update(ctx context.Context, device *domain.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) SetLastReading(ctx context.Context, id uuid.UUID, version int64, value decimal.Decimal, unit string, at time.Time) error {
	args := m.Called(ctx, id, version, value, unit, at)
	return args.Error(0)
}

func (m *MockDeviceRepository) Tombstone(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockDeviceRepository) FindStale(ctx context.Context, cutoff time.Time) ([]domain.Device, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) MarkOfflineNotified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alert), args.Error(1)
}

func (m *MockAlertRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID, acknowledged *bool, page, size int) ([]domain.Alert, int64, error) {
	args := m.Called(ctx, farmerID, acknowledged, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Alert), args.Get(1).(int64), args.Error(2)
}

func (m *MockAlertRepository) Acknowledge(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, by, at)
	return args.Error(0)
}

func (m *MockAlertRepository) CountUnacknowledged(ctx context.Context, farmerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, farmerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertRepository) SaveRule(ctx context.Context, rule *domain.AlertRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockAlertRepository) FindRulesByDevice(ctx context.Context, deviceID uuid.UUID) ([]domain.AlertRule, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AlertRule), args.Error(1)
}

type MockListingClient struct {
	mock.Mock
}

func (m *MockListingClient) GetListingById(ctx context.Context, id uuid.UUID) (*infra.ListingInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.ListingInfo), args.Error(1)
}

type MockFarmClient struct {
	mock.Mock
}

func (m *MockFarmClient) GetFarmById(ctx context.Context, id uuid.UUID) (*infra.FarmInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.FarmInfo), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}
