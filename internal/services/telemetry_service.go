package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrilink-core/internal/domain"
	rabbit "agrilink-core/internal/infra/rabbitmq"
	"agrilink-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TelemetryService is the only writer of a device's last reading. Every
// accepted reading flips the device to ONLINE (by recency) and is checked
// against the device's alert rules.
type TelemetryService struct {
	devices   repository.DeviceRepository
	alerts    repository.AlertRepository
	publisher rabbit.PublisherInterface
	logger    *zap.Logger
}

func NewTelemetryService(devices repository.DeviceRepository, alerts repository.AlertRepository, pub rabbit.PublisherInterface, logger *zap.Logger) *TelemetryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelemetryService{
		devices:   devices,
		alerts:    alerts,
		publisher: pub,
		logger:    logger,
	}
}

type TelemetryReading struct {
	Value     decimal.Decimal
	Unit      string
	Timestamp time.Time
}

// Ingest records one reading. Timestamps must advance: a reading not newer
// than the current snapshot is rejected as out-of-order and leaves the
// device untouched.
func (s *TelemetryService) Ingest(ctx context.Context, deviceID uuid.UUID, reading TelemetryReading) (*domain.Device, error) {
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}

	for attempt := 0; attempt < statusUpdateRetries; attempt++ {
		device, err := s.devices.FindByID(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		if device == nil || device.Tombstoned() {
			return nil, domain.ErrNotFound
		}
		if device.LastAt != nil && !reading.Timestamp.After(*device.LastAt) {
			return nil, domain.ErrOutOfOrderTelemetry
		}

		err = s.devices.SetLastReading(ctx, device.ID, device.Version, reading.Value, reading.Unit, reading.Timestamp)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		device.LastValue = &reading.Value
		device.LastUnit = &reading.Unit
		device.LastAt = &reading.Timestamp
		device.Version++

		s.evaluateRules(ctx, device, reading.Value)

		device.Status = domain.DeviceOnline
		device.LastReading = &domain.Reading{Value: reading.Value, Unit: reading.Unit, Timestamp: reading.Timestamp}
		return device, nil
	}
	return nil, domain.ErrConflict
}

// IngestBatch applies readings in order. Individually rejected readings
// (out-of-order) do not fail the batch; accepted reports how many landed.
func (s *TelemetryService) IngestBatch(ctx context.Context, deviceID uuid.UUID, readings []TelemetryReading) (accepted int, err error) {
	for _, r := range readings {
		_, err := s.Ingest(ctx, deviceID, r)
		if err == nil {
			accepted++
			continue
		}
		if errors.Is(err, domain.ErrOutOfOrderTelemetry) {
			continue
		}
		return accepted, err
	}
	return accepted, nil
}

func (s *TelemetryService) evaluateRules(ctx context.Context, device *domain.Device, value decimal.Decimal) {
	rules, err := s.alerts.FindRulesByDevice(ctx, device.ID)
	if err != nil {
		s.logger.Warn("failed to load alert rules",
			zap.String("deviceId", device.ID.String()),
			zap.Error(err))
		return
	}

	for _, rule := range rules {
		if !rule.Breached(value) {
			continue
		}

		alert := &domain.Alert{
			ID:       uuid.New(),
			DeviceID: device.ID,
			FarmerID: device.FarmerID,
			Severity: rule.Severity,
			Title:    rule.Title,
			Message: fmt.Sprintf("reading %s crossed threshold %s on device %s",
				value.String(), rule.Threshold.String(), device.Name),
			CreatedAt: time.Now(),
		}
		if err := s.alerts.Save(ctx, alert); err != nil {
			s.logger.Warn("failed to create alert",
				zap.String("deviceId", device.ID.String()),
				zap.Error(err))
			continue
		}

		if s.publisher != nil {
			evt := domain.AlertCreatedEvent{
				AlertID:   alert.ID,
				DeviceID:  alert.DeviceID,
				FarmerID:  alert.FarmerID,
				Severity:  alert.Severity,
				Title:     alert.Title,
				CreatedAt: alert.CreatedAt,
			}
			if err := s.publisher.Publish(ctx, "alert.created", evt); err != nil {
				s.logger.Warn("failed to publish alert.created", zap.Error(err))
			}
		}
	}
}
