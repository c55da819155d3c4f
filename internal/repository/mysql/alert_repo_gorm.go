package mysql

import (
	"context"
	"errors"
	"time"

	"agrilink-core/internal/domain"
	"agrilink-core/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type alertRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewAlertRepository(db *gorm.DB, timeout time.Duration) repository.AlertRepository {
	return &alertRepo{db: db, timeout: timeout}
}

func (r *alertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return mapStoreErr(r.db.WithContext(ctx).Create(alert).Error)
}

func (r *alertRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var a domain.Alert
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &a, nil
}

func (r *alertRepo) FindByFarmer(ctx context.Context, farmerID uuid.UUID, acknowledged *bool, page, size int) ([]domain.Alert, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("farmer_id = ?", farmerID)
		if acknowledged != nil {
			q = q.Where("acknowledged = ?", *acknowledged)
		}
		return q
	}

	var total int64
	if err := filter(r.db.WithContext(ctx).Model(&domain.Alert{})).Count(&total).Error; err != nil {
		return nil, 0, mapStoreErr(err)
	}

	// Recency first, then severity, per the dashboard contract.
	var out []domain.Alert
	err := filter(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("FIELD(severity, 'CRITICAL', 'WARNING', 'INFORMATIONAL')").
		Offset(page * size).Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, 0, mapStoreErr(err)
	}
	return out, total, nil
}

// Acknowledge is conditional on the flag still being false, so the flip is
// one-way; zero rows affected simply means another caller got there first.
func (r *alertRepo) Acknowledge(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("id = ? AND acknowledged = ?", id, false).
		Updates(map[string]any{
			"acknowledged":    true,
			"acknowledged_at": at,
			"acknowledged_by": by,
		})
	return mapStoreErr(res.Error)
}

func (r *alertRepo) CountUnacknowledged(ctx context.Context, farmerID uuid.UUID) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Alert{}).
		Joins("JOIN devices ON devices.id = alerts.device_id").
		Where("alerts.farmer_id = ? AND alerts.acknowledged = ?", farmerID, false).
		Where("devices.deleted_at IS NULL").
		Count(&n).Error
	if err != nil {
		return 0, mapStoreErr(err)
	}
	return n, nil
}

func (r *alertRepo) SaveRule(ctx context.Context, rule *domain.AlertRule) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return mapStoreErr(r.db.WithContext(ctx).Create(rule).Error)
}

func (r *alertRepo) FindRulesByDevice(ctx context.Context, deviceID uuid.UUID) ([]domain.AlertRule, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var out []domain.AlertRule
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND enabled = ?", deviceID, true).
		Find(&out).Error
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}
