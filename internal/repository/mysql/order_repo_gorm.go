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

type orderRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewOrderRepository(db *gorm.DB, timeout time.Duration) repository.OrderRepository {
	return &orderRepo{db: db, timeout: timeout}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return mapStoreErr(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapStoreErr(err)
	}
	return &o, nil
}

func (r *orderRepo) FindByBuyer(ctx context.Context, buyerID uuid.UUID, page, size int) ([]domain.Order, int64, error) {
	return r.findByParty(ctx, "buyer_id = ?", buyerID, page, size)
}

func (r *orderRepo) FindBySeller(ctx context.Context, sellerID uuid.UUID, page, size int) ([]domain.Order, int64, error) {
	return r.findByParty(ctx, "seller_id = ?", sellerID, page, size)
}

func (r *orderRepo) findByParty(ctx context.Context, cond string, id uuid.UUID, page, size int) ([]domain.Order, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where(cond, id).Count(&total).Error; err != nil {
		return nil, 0, mapStoreErr(err)
	}

	var out []domain.Order
	err := r.db.WithContext(ctx).Where(cond, id).
		Order("created_at DESC, id DESC").
		Offset(page * size).Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, 0, mapStoreErr(err)
	}
	return out, total, nil
}

// UpdateStatus applies the transition only when the stored version still
// matches, so two racing writers can never both commit against the same
// stale state.
func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, version int64, target domain.OrderStatus, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"status":     target,
			"version":    version + 1,
			"updated_at": at,
		})
	if res.Error != nil {
		return mapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}
