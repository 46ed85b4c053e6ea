package ports

import (
	"context"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
)

// OrderRepository is the Order Store. Implementations must write an order and
// its lines atomically.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (int64, error)
	// List returns every order with its lines, most recently created first.
	List(ctx context.Context) ([]domain.Order, error)
	GetByTrackingCode(ctx context.Context, trackingCode string) (*domain.Order, error)
	// UpdateStatus sets next on the order with trackingCode. When expected is
	// non-empty the write only applies if the stored status still equals it,
	// otherwise domain.ErrStatusConflict is returned.
	UpdateStatus(ctx context.Context, trackingCode string, next, expected domain.OrderStatus) (*domain.Order, error)
}
