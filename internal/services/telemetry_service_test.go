package services

import (
	"context"
	"testing"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/mocks"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTelemetryService_Ingest(t *testing.T) {
	farmerID := uuid.New()
	deviceID := uuid.New()

	t.Run("first reading flips device online", func(t *testing.T) {
		device := CreateMockDevice(deviceID, uuid.New(), farmerID, nil)

		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).Return(device, nil)
		mockDevices.On("SetLastReading", mock.Anything, deviceID, int64(0), mock.Anything, "percent", mock.Anything).
			Return(nil)
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("FindRulesByDevice", mock.Anything, deviceID).Return([]domain.AlertRule{}, nil)

		service := NewTelemetryService(mockDevices, mockAlerts, nil, nil)
		got, err := service.Ingest(context.Background(), deviceID, TelemetryReading{
			Value: decimal.RequireFromString("41.5"),
			Unit:  "percent",
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.DeviceOnline, got.Status)
		assert.NotNil(t, got.LastReading)
		assert.Equal(t, "41.5", got.LastReading.Value.String())
		mockDevices.AssertExpectations(t)
	})

	t.Run("out-of-order timestamp rejected, snapshot untouched", func(t *testing.T) {
		device := CreateMockDevice(deviceID, uuid.New(), farmerID, nil)
		current := time.Now()
		v := decimal.RequireFromString("40.0")
		u := "percent"
		device.LastValue = &v
		device.LastUnit = &u
		device.LastAt = &current

		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).Return(device, nil)

		service := NewTelemetryService(mockDevices, new(mocks.MockAlertRepository), nil, nil)
		_, err := service.Ingest(context.Background(), deviceID, TelemetryReading{
			Value:     decimal.RequireFromString("10.0"),
			Unit:      "percent",
			Timestamp: current.Add(-time.Minute),
		})

		assert.ErrorIs(t, err, domain.ErrOutOfOrderTelemetry)
		mockDevices.AssertNotCalled(t, "SetLastReading",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("tombstoned device rejects telemetry", func(t *testing.T) {
		device := CreateMockDevice(deviceID, uuid.New(), farmerID, nil)
		now := time.Now()
		device.DeletedAt = &now

		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).Return(device, nil)

		service := NewTelemetryService(mockDevices, new(mocks.MockAlertRepository), nil, nil)
		_, err := service.Ingest(context.Background(), deviceID, TelemetryReading{
			Value: decimal.RequireFromString("1"),
		})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("threshold breach creates alert and publishes", func(t *testing.T) {
		device := CreateMockDevice(deviceID, uuid.New(), farmerID, nil)
		rule := domain.AlertRule{
			ID:        uuid.New(),
			DeviceID:  deviceID,
			Condition: domain.ConditionGreaterThan,
			Threshold: decimal.RequireFromString("40"),
			Severity:  domain.SeverityCritical,
			Title:     "Temperature high",
			Enabled:   true,
		}

		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).Return(device, nil)
		mockDevices.On("SetLastReading", mock.Anything, deviceID, int64(0), mock.Anything, "celsius", mock.Anything).
			Return(nil)
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("FindRulesByDevice", mock.Anything, deviceID).Return([]domain.AlertRule{rule}, nil)
		mockAlerts.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.Alert) bool {
			return a.DeviceID == deviceID && a.Severity == domain.SeverityCritical && !a.Acknowledged
		})).Return(nil)
		mockPub := new(mocks.MockPublisher)
		mockPub.On("Publish", mock.Anything, "alert.created", mock.Anything).Return(nil)

		service := NewTelemetryService(mockDevices, mockAlerts, mockPub, nil)
		_, err := service.Ingest(context.Background(), deviceID, TelemetryReading{
			Value: decimal.RequireFromString("45.2"),
			Unit:  "celsius",
		})

		assert.NoError(t, err)
		mockAlerts.AssertExpectations(t)
		mockPub.AssertExpectations(t)
	})

	t.Run("reading below threshold creates no alert", func(t *testing.T) {
		device := CreateMockDevice(deviceID, uuid.New(), farmerID, nil)
		rule := domain.AlertRule{
			Condition: domain.ConditionGreaterThan,
			Threshold: decimal.RequireFromString("40"),
			Severity:  domain.SeverityWarning,
			Enabled:   true,
		}

		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).Return(device, nil)
		mockDevices.On("SetLastReading", mock.Anything, deviceID, int64(0), mock.Anything, "celsius", mock.Anything).
			Return(nil)
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("FindRulesByDevice", mock.Anything, deviceID).Return([]domain.AlertRule{rule}, nil)

		service := NewTelemetryService(mockDevices, mockAlerts, nil, nil)
		_, err := service.Ingest(context.Background(), deviceID, TelemetryReading{
			Value: decimal.RequireFromString("39.9"),
			Unit:  "celsius",
		})

		assert.NoError(t, err)
		mockAlerts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestTelemetryService_IngestBatch(t *testing.T) {
	farmerID := uuid.New()
	deviceID := uuid.New()
	base := time.Now()

	// Stateful double so each accepted reading advances the snapshot.
	device := CreateMockDevice(deviceID, uuid.New(), farmerID, nil)
	mockDevices := new(mocks.MockDeviceRepository)
	mockDevices.On("FindByID", mock.Anything, deviceID).Return(device, nil)
	mockDevices.On("SetLastReading", mock.Anything, deviceID, mock.Anything, mock.Anything, "percent", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			at := args.Get(5).(time.Time)
			v := args.Get(3).(decimal.Decimal)
			device.LastValue = &v
			device.LastAt = &at
			device.Version++
		})
	mockAlerts := new(mocks.MockAlertRepository)
	mockAlerts.On("FindRulesByDevice", mock.Anything, deviceID).Return([]domain.AlertRule{}, nil)

	service := NewTelemetryService(mockDevices, mockAlerts, nil, nil)
	accepted, err := service.IngestBatch(context.Background(), deviceID, []TelemetryReading{
		{Value: decimal.RequireFromString("10"), Unit: "percent", Timestamp: base},
		{Value: decimal.RequireFromString("11"), Unit: "percent", Timestamp: base.Add(time.Minute)},
		{Value: decimal.RequireFromString("9"), Unit: "percent", Timestamp: base.Add(-time.Minute)}, // stale
		{Value: decimal.RequireFromString("12"), Unit: "percent", Timestamp: base.Add(2 * time.Minute)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, accepted)
}
