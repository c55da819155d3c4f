package services

import (
	"context"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/pagination"
	"agrilink-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AlertService struct {
	alerts  repository.AlertRepository
	devices repository.DeviceRepository
	logger  *zap.Logger
}

func NewAlertService(alerts repository.AlertRepository, devices repository.DeviceRepository, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		alerts:  alerts,
		devices: devices,
		logger:  logger,
	}
}

func (s *AlertService) ListAlerts(ctx context.Context, callerID uuid.UUID, acknowledged *bool, page, size int) (pagination.Page[domain.Alert], error) {
	page, size = pagination.Clamp(page, size)
	alerts, total, err := s.alerts.FindByFarmer(ctx, callerID, acknowledged, page, size)
	if err != nil {
		return pagination.Page[domain.Alert]{}, err
	}
	return pagination.New(alerts, page, size, total), nil
}

func (s *AlertService) CountUnacknowledged(ctx context.Context, callerID uuid.UUID) (int64, error) {
	return s.alerts.CountUnacknowledged(ctx, callerID)
}

// AcknowledgeAlert is idempotent: re-acknowledging returns the alert as-is
// with success, since dashboards retry freely. The flag never reverts.
func (s *AlertService) AcknowledgeAlert(ctx context.Context, callerID, alertID uuid.UUID) (*domain.Alert, error) {
	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrNotFound
	}
	if alert.FarmerID != callerID {
		return nil, domain.ErrForbidden
	}
	if alert.Acknowledged {
		return alert, nil
	}

	now := time.Now()
	if err := s.alerts.Acknowledge(ctx, alert.ID, callerID, now); err != nil {
		return nil, err
	}

	alert.Acknowledged = true
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = &callerID
	return alert, nil
}

// CreateRule attaches a telemetry threshold to a device the caller owns.
func (s *AlertService) CreateRule(ctx context.Context, callerID, deviceID uuid.UUID, condition domain.RuleCondition, threshold decimal.Decimal, severity domain.Severity, title string) (*domain.AlertRule, error) {
	if !domain.ValidRuleCondition(condition) {
		return nil, domain.ErrInvalidRuleCondition
	}
	if domain.SeverityRank(severity) == 0 {
		severity = domain.SeverityWarning
	}

	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil || device.Tombstoned() {
		return nil, domain.ErrNotFound
	}
	if device.FarmerID != callerID {
		return nil, domain.ErrForbidden
	}

	rule := &domain.AlertRule{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Condition: condition,
		Threshold: threshold,
		Severity:  severity,
		Title:     title,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	if err := s.alerts.SaveRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}
