package mysql

import (
	"context"
	"errors"
	"time"

	"agrilink-core/internal/domain"

	"github.com/go-sql-driver/mysql"
)

const defaultStoreTimeout = 2 * time.Second

// withTimeout bounds every store access so a stuck backend surfaces as a
// retryable domain.ErrUnavailable instead of hanging the request.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrUnavailable
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return domain.ErrDuplicateSerialNumber
	}
	return err
}
