package mysql

import (
	"context"
	"errors"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type deviceRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewDeviceRepository(db *gorm.DB, timeout time.Duration) repository.DeviceRepository {
	return &deviceRepo{db: db, timeout: timeout}
}

func (r *deviceRepo) Save(ctx context.Context, device *domain.Device) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return mapStoreErr(r.db.WithContext(ctx).Create(device).Error)
}

func (r *deviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var d domain.Device
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &d, nil
}

func (r *deviceRepo) FindBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var d domain.Device
	if err := r.db.WithContext(ctx).First(&d, "serial_number = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &d, nil
}

func (r *deviceRepo) FindByFarm(ctx context.Context, farmID uuid.UUID, page, size int) ([]domain.Device, int64, error) {
	return r.findActive(ctx, "farm_id = ?", farmID, page, size)
}

func (r *deviceRepo) FindByFarmer(ctx context.Context, farmerID uuid.UUID, page, size int) ([]domain.Device, int64, error) {
	return r.findActive(ctx, "farmer_id = ?", farmerID, page, size)
}

func (r *deviceRepo) findActive(ctx context.Context, cond string, id uuid.UUID, page, size int) ([]domain.Device, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Device{}).
		Where(cond, id).Where("deleted_at IS NULL").
		Count(&total).Error; err != nil {
		return nil, 0, mapStoreErr(err)
	}

	var out []domain.Device
	err := r.db.WithContext(ctx).
		Where(cond, id).Where("deleted_at IS NULL").
		Order("created_at DESC, id DESC").
		Offset(page * size).Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, 0, mapStoreErr(err)
	}
	return out, total, nil
}

func (r *deviceRepo) Update(ctx context.Context, device *domain.Device) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&domain.Device{}).
		Where("id = ? AND version = ?", device.ID, device.Version).
		Updates(map[string]any{
			"name":          device.Name,
			"type":          device.Type,
			"serial_number": device.SerialNumber,
			"version":       device.Version + 1,
		})
	if res.Error != nil {
		return mapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	device.Version++
	return nil
}

func (r *deviceRepo) SetLastReading(ctx context.Context, id uuid.UUID, version int64, value decimal.Decimal, unit string, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&domain.Device{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"last_value":       value,
			"last_unit":        unit,
			"last_at":          at,
			"offline_notified": false,
			"version":          version + 1,
		})
	if res.Error != nil {
		return mapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *deviceRepo) Tombstone(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&domain.Device{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	return mapStoreErr(res.Error)
}

func (r *deviceRepo) FindStale(ctx context.Context, cutoff time.Time) ([]domain.Device, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var out []domain.Device
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL AND offline_notified = ?", false).
		Where("last_at IS NULL OR last_at < ?", cutoff).
		Find(&out).Error
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

func (r *deviceRepo) MarkOfflineNotified(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return mapStoreErr(r.db.WithContext(ctx).Model(&domain.Device{}).
		Where("id = ?", id).
		Update("offline_notified", true).Error)
}
