// Package admin is the staff-facing status board.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/broaster-orders/internal/coordinator"
	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
)

// Board keeps a local copy of every order and updates statuses
// optimistically: the new status is shown before the service answers and
// reverted if it refuses. It is not safe for concurrent use.
type Board struct {
	orders ports.OrderService
	rows   []domain.Order
}

func NewBoard(orders ports.OrderService) *Board {
	return &Board{orders: orders}
}

// Load replaces the local rows with the service's list, newest first.
func (b *Board) Load(ctx context.Context) error {
	rows, err := b.orders.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	b.rows = rows
	return nil
}

// Orders returns a copy of the rows as currently displayed.
func (b *Board) Orders() []domain.Order {
	out := make([]domain.Order, len(b.rows))
	copy(out, b.rows)
	return out
}

// SetStatus shows status on the row for trackingCode, then asks the service
// to persist it. On failure the row goes back to its previous status and the
// service's error is returned.
func (b *Board) SetStatus(ctx context.Context, trackingCode string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}
	idx := b.index(trackingCode)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", trackingCode, domain.ErrOrderNotFound)
	}

	var (
		previous domain.OrderStatus
		saved    *domain.Order
	)
	run := coordinator.NewOrchestrator(trackingCode,
		coordinator.NewStep("apply_locally",
			func(context.Context) error {
				previous = b.rows[idx].Status
				b.rows[idx].Status = status
				return nil
			},
			func(context.Context) error {
				b.rows[idx].Status = previous
				return nil
			},
		),
		coordinator.NewStep("persist_status",
			func(ctx context.Context) error {
				o, err := b.orders.UpdateStatus(ctx, trackingCode, status)
				if err != nil {
					return err
				}
				saved = o
				return nil
			},
			nil,
		),
	)

	if err := run.Start(ctx); err != nil {
		slog.WarnContext(ctx, "status update reverted",
			"tracking_code", trackingCode,
			"status", status,
			"restored", previous,
			"error", err,
		)
		return nil, err
	}

	b.rows[idx] = *saved
	return saved, nil
}

func (b *Board) index(trackingCode string) int {
	for i := range b.rows {
		if b.rows[i].TrackingCode == trackingCode {
			return i
		}
	}
	return -1
}
