package repository

import (
	"context"
	"time"

	"agrilink-core/internal/domain"

	"github.com/google/uuid"
)

type AlertRepository interface {
	Save(ctx context.Context, alert *domain.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	// FindByFarmer orders by createdAt descending, severity as the
	// secondary key; acknowledged filters when non-nil.
	FindByFarmer(ctx context.Context, farmerID uuid.UUID, acknowledged *bool, page, size int) ([]domain.Alert, int64, error)
	// Acknowledge flips the flag only if it is still false; acknowledging
	// an already-acknowledged alert affects no rows and returns nil.
	Acknowledge(ctx context.Context, id uuid.UUID, by uuid.UUID, at time.Time) error
	// CountUnacknowledged excludes alerts of tombstoned devices.
	CountUnacknowledged(ctx context.Context, farmerID uuid.UUID) (int64, error)

	SaveRule(ctx context.Context, rule *domain.AlertRule) error
	FindRulesByDevice(ctx context.Context, deviceID uuid.UUID) ([]domain.AlertRule, error)
}
