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

func TestAlertService_AcknowledgeAlert(t *testing.T) {
	farmerID := uuid.New()
	deviceID := uuid.New()
	alertID := uuid.New()

	t.Run("owner acknowledges", func(t *testing.T) {
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("FindByID", mock.Anything, alertID).
			Return(CreateMockAlert(alertID, deviceID, farmerID, false), nil)
		mockAlerts.On("Acknowledge", mock.Anything, alertID, farmerID, mock.Anything).Return(nil)

		service := NewAlertService(mockAlerts, new(mocks.MockDeviceRepository), nil)
		alert, err := service.AcknowledgeAlert(context.Background(), farmerID, alertID)

		assert.NoError(t, err)
		assert.True(t, alert.Acknowledged)
		assert.NotNil(t, alert.AcknowledgedAt)
		assert.Equal(t, farmerID, *alert.AcknowledgedBy)
		mockAlerts.AssertExpectations(t)
	})

	t.Run("second acknowledge is a no-op success", func(t *testing.T) {
		mockAlerts := new(mocks.MockAlertRepository)
		acked := CreateMockAlert(alertID, deviceID, farmerID, true)
		now := time.Now()
		acked.AcknowledgedAt = &now
		acked.AcknowledgedBy = &farmerID
		mockAlerts.On("FindByID", mock.Anything, alertID).Return(acked, nil)

		service := NewAlertService(mockAlerts, new(mocks.MockDeviceRepository), nil)

		first, err := service.AcknowledgeAlert(context.Background(), farmerID, alertID)
		assert.NoError(t, err)
		second, err := service.AcknowledgeAlert(context.Background(), farmerID, alertID)
		assert.NoError(t, err)

		assert.True(t, first.Acknowledged)
		assert.Equal(t, first, second)
		mockAlerts.AssertNotCalled(t, "Acknowledge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign alert forbidden", func(t *testing.T) {
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("FindByID", mock.Anything, alertID).
			Return(CreateMockAlert(alertID, deviceID, uuid.New(), false), nil)

		service := NewAlertService(mockAlerts, new(mocks.MockDeviceRepository), nil)
		_, err := service.AcknowledgeAlert(context.Background(), farmerID, alertID)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown alert", func(t *testing.T) {
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("FindByID", mock.Anything, alertID).Return(nil, nil)

		service := NewAlertService(mockAlerts, new(mocks.MockDeviceRepository), nil)
		_, err := service.AcknowledgeAlert(context.Background(), farmerID, alertID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAlertService_ListAlerts(t *testing.T) {
	farmerID := uuid.New()

	mockAlerts := new(mocks.MockAlertRepository)
	unacked := false
	alerts := []domain.Alert{*CreateMockAlert(uuid.New(), uuid.New(), farmerID, false)}
	mockAlerts.On("FindByFarmer", mock.Anything, farmerID, &unacked, 0, 10).
		Return(alerts, int64(1), nil)

	service := NewAlertService(mockAlerts, new(mocks.MockDeviceRepository), nil)
	page, err := service.ListAlerts(context.Background(), farmerID, &unacked, 0, 10)

	assert.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.TotalElements)
	mockAlerts.AssertExpectations(t)
}

func TestAlertService_CreateRule(t *testing.T) {
	farmerID := uuid.New()
	deviceID := uuid.New()

	t.Run("owner attaches rule", func(t *testing.T) {
		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).
			Return(CreateMockDevice(deviceID, uuid.New(), farmerID, nil), nil)
		mockAlerts := new(mocks.MockAlertRepository)
		mockAlerts.On("SaveRule", mock.Anything, mock.MatchedBy(func(r *domain.AlertRule) bool {
			return r.DeviceID == deviceID && r.Enabled
		})).Return(nil)

		service := NewAlertService(mockAlerts, mockDevices, nil)
		rule, err := service.CreateRule(context.Background(), farmerID, deviceID,
			domain.ConditionLessThan, decimal.RequireFromString("20"), domain.SeverityWarning, "Moisture low")

		assert.NoError(t, err)
		assert.Equal(t, domain.ConditionLessThan, rule.Condition)
		mockAlerts.AssertExpectations(t)
	})

	t.Run("unknown condition rejected", func(t *testing.T) {
		service := NewAlertService(new(mocks.MockAlertRepository), new(mocks.MockDeviceRepository), nil)
		_, err := service.CreateRule(context.Background(), farmerID, deviceID,
			domain.RuleCondition("BETWEEN"), decimal.Zero, domain.SeverityWarning, "x")

		assert.ErrorIs(t, err, domain.ErrInvalidRuleCondition)
	})

	t.Run("foreign device forbidden", func(t *testing.T) {
		mockDevices := new(mocks.MockDeviceRepository)
		mockDevices.On("FindByID", mock.Anything, deviceID).
			Return(CreateMockDevice(deviceID, uuid.New(), uuid.New(), nil), nil)

		service := NewAlertService(new(mocks.MockAlertRepository), mockDevices, nil)
		_, err := service.CreateRule(context.Background(), farmerID, deviceID,
			domain.ConditionGreaterThan, decimal.Zero, domain.SeverityCritical, "x")

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
