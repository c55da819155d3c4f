package services

import (
	"context"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/infra"
	rabbit "agrilink-core/internal/infra/rabbitmq"
	"agrilink-core/internal/pagination"
	"agrilink-core/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeviceService owns device identity and lifecycle for the farms of a
// caller. ONLINE/OFFLINE is never stored; it is derived from the last
// reading against the freshness window on every read.
type DeviceService struct {
	repo       repository.DeviceRepository
	farmClient infra.FarmClientInterface
	publisher  rabbit.PublisherInterface
	window     time.Duration
	logger     *zap.Logger
}

func NewDeviceService(r repository.DeviceRepository, fc infra.FarmClientInterface, pub rabbit.PublisherInterface, window time.Duration, logger *zap.Logger) *DeviceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{
		repo:       r,
		farmClient: fc,
		publisher:  pub,
		window:     window,
		logger:     logger,
	}
}

type DevicePatch struct {
	Name         *string
	Type         *domain.DeviceType
	SerialNumber *string
}

// RegisterDevice creates a device bound to one farm for its lifetime. It
// starts OFFLINE until the first telemetry arrives.
func (s *DeviceService) RegisterDevice(ctx context.Context, callerID uuid.UUID, name string, dtype domain.DeviceType, farmID uuid.UUID, serialNumber *string) (*domain.Device, error) {
	if !domain.ValidDeviceType(dtype) {
		return nil, domain.ErrInvalidDeviceType
	}

	farm, err := s.farmClient.GetFarmById(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if farm == nil || farm.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}

	if serialNumber != nil && *serialNumber != "" {
		existing, err := s.repo.FindBySerial(ctx, *serialNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateSerialNumber
		}
	} else {
		serialNumber = nil
	}

	device := &domain.Device{
		ID:           uuid.New(),
		FarmID:       farmID,
		FarmName:     farm.Name,
		FarmerID:     callerID,
		Name:         name,
		Type:         dtype,
		SerialNumber: serialNumber,
	}

	// The unique index on serial_number closes the check-then-create race;
	// the repo maps the duplicate-key error.
	if err := s.repo.Save(ctx, device); err != nil {
		return nil, err
	}

	device.Hydrate(time.Now(), s.window)
	return device, nil
}

func (s *DeviceService) GetDevice(ctx context.Context, callerID, deviceID uuid.UUID) (*domain.Device, error) {
	device, err := s.ownedDevice(ctx, callerID, deviceID)
	if err != nil {
		return nil, err
	}
	device.Hydrate(time.Now(), s.window)
	return device, nil
}

func (s *DeviceService) UpdateDevice(ctx context.Context, callerID, deviceID uuid.UUID, patch DevicePatch) (*domain.Device, error) {
	device, err := s.ownedDevice(ctx, callerID, deviceID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		device.Name = *patch.Name
	}
	if patch.Type != nil {
		if !domain.ValidDeviceType(*patch.Type) {
			return nil, domain.ErrInvalidDeviceType
		}
		device.Type = *patch.Type
	}
	if patch.SerialNumber != nil {
		serial := *patch.SerialNumber
		if serial == "" {
			device.SerialNumber = nil
		} else {
			existing, err := s.repo.FindBySerial(ctx, serial)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != device.ID {
				return nil, domain.ErrDuplicateSerialNumber
			}
			device.SerialNumber = &serial
		}
	}

	if err := s.repo.Update(ctx, device); err != nil {
		return nil, err
	}

	device.Hydrate(time.Now(), s.window)
	return device, nil
}

// DeleteDevice tombstones rather than hard-deletes, so the device and its
// alerts stay queryable as history while dropping out of active lists and
// counts.
func (s *DeviceService) DeleteDevice(ctx context.Context, callerID, deviceID uuid.UUID) error {
	device, err := s.ownedDevice(ctx, callerID, deviceID)
	if err != nil {
		return err
	}
	return s.repo.Tombstone(ctx, device.ID, time.Now())
}

// ListDevices restricts to one farm when farmID is given, otherwise spans
// every farm the caller owns.
func (s *DeviceService) ListDevices(ctx context.Context, callerID uuid.UUID, farmID *uuid.UUID, page, size int) (pagination.Page[domain.Device], error) {
	page, size = pagination.Clamp(page, size)

	var (
		devices []domain.Device
		total   int64
		err     error
	)
	if farmID != nil {
		farm, ferr := s.farmClient.GetFarmById(ctx, *farmID)
		if ferr != nil {
			return pagination.Page[domain.Device]{}, ferr
		}
		if farm == nil || farm.OwnerID != callerID {
			return pagination.Page[domain.Device]{}, domain.ErrForbidden
		}
		devices, total, err = s.repo.FindByFarm(ctx, *farmID, page, size)
	} else {
		devices, total, err = s.repo.FindByFarmer(ctx, callerID, page, size)
	}
	if err != nil {
		return pagination.Page[domain.Device]{}, err
	}

	now := time.Now()
	for i := range devices {
		devices[i].Hydrate(now, s.window)
	}
	return pagination.New(devices, page, size, total), nil
}

// SweepStale announces devices that fell out of the freshness window.
// Status stays derived; the sweep only emits device.offline once per stale
// stretch, so it is idempotent and safe alongside ingestion.
func (s *DeviceService) SweepStale(ctx context.Context) error {
	cutoff := time.Now().Add(-s.window)
	stale, err := s.repo.FindStale(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, d := range stale {
		if err := s.repo.MarkOfflineNotified(ctx, d.ID); err != nil {
			s.logger.Warn("failed to mark device offline",
				zap.String("deviceId", d.ID.String()),
				zap.Error(err))
			continue
		}
		if s.publisher != nil {
			evt := domain.DeviceOfflineEvent{
				DeviceID: d.ID,
				FarmerID: d.FarmerID,
				LastSeen: d.LastAt,
				SweptAt:  time.Now(),
			}
			if err := s.publisher.Publish(ctx, "device.offline", evt); err != nil {
				s.logger.Warn("failed to publish device.offline",
					zap.String("deviceId", d.ID.String()),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (s *DeviceService) ownedDevice(ctx context.Context, callerID, deviceID uuid.UUID) (*domain.Device, error) {
	device, err := s.repo.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil || device.Tombstoned() {
		return nil, domain.ErrNotFound
	}
	if device.FarmerID != callerID {
		return nil, domain.ErrForbidden
	}
	return device, nil
}
