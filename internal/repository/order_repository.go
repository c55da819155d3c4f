package repository

import (
	"context"
	"time"

	"agrilink-core/internal/domain"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, page, size int) ([]domain.Order, int64, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, page, size int) ([]domain.Order, int64, error)
	// UpdateStatus moves an order with a compare-and-swap on version; a
	// stale version yields domain.ErrConflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, version int64, target domain.OrderStatus, at time.Time) error
}
