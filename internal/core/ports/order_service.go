package ports

import (
	"context"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, idempotencyKey string, order *domain.Order) (int64, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, trackingCode string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, trackingCode string, status domain.OrderStatus) (*domain.Order, error)
}
