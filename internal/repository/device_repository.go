package repository

import (
	"context"
	"time"

	"agrilink-core/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeviceRepository interface {
	Save(ctx context.Context, device *domain.Device) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Device, error)
	FindBySerial(ctx context.Context, serial string) (*domain.Device, error)
	// FindByFarm and FindByFarmer exclude tombstoned devices.
	FindByFarm(ctx context.Context, farmID uuid.UUID, page, size int) ([]domain.Device, int64, error)
	FindByFarmer(ctx context.Context, farmerID uuid.UUID, page, size int) ([]domain.Device, int64, error)
	// Update rewrites mutable fields with a compare-and-swap on version.
	Update(ctx context.Context, device *domain.Device) error
	// SetLastReading advances the telemetry snapshot with a
	// compare-and-swap on version and clears OfflineNotified.
	SetLastReading(ctx context.Context, id uuid.UUID, version int64, value decimal.Decimal, unit string, at time.Time) error
	Tombstone(ctx context.Context, id uuid.UUID, at time.Time) error
	// FindStale returns non-tombstoned devices whose last reading is older
	// than cutoff (or absent) and that have not been announced offline yet.
	FindStale(ctx context.Context, cutoff time.Time) ([]domain.Device, error)
	MarkOfflineNotified(ctx context.Context, id uuid.UUID) error
}
