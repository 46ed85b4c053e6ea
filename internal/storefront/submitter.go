package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/broaster-orders/internal/coordinator"
	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
)

// Receipt is what the confirmation screen shows.
type Receipt struct {
	OrderID      int64
	TrackingCode string
	Contact      domain.Contact
	Payment      domain.PaymentMethod
	Lines        []domain.CartLine
	Subtotal     decimal.Decimal
	DeliveryFee  decimal.Decimal
	Total        decimal.Decimal
}

// Submitter sends the checkout to the order service. At most one submission
// runs at a time.
type Submitter struct {
	orders      ports.OrderService
	deliveryFee decimal.Decimal
	inFlight    atomic.Bool
}

func NewSubmitter(orders ports.OrderService, deliveryFee decimal.Decimal) *Submitter {
	return &Submitter{orders: orders, deliveryFee: deliveryFee}
}

func (s *Submitter) DeliveryFee() decimal.Decimal { return s.deliveryFee }

// Submit checks the preconditions, mints (or reuses, when the order content is
// unchanged) the tracking code and posts the order. On acceptance the cart is
// cleared and the wizard moves to the completed section. On any failure the
// cart, the session and the wizard are left as they were, so the same attempt
// can be retried.
func (s *Submitter) Submit(ctx context.Context, cart *domain.CartLedger, session *domain.CheckoutSession, wizard *Wizard) (*Receipt, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, domain.ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	if wizard.Current() != SectionPayment {
		return nil, wizard.blocked(SectionCompleted, "submit from the payment section")
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	if errs := session.Validate(); len(errs) > 0 {
		return nil, errs
	}

	lines := cart.Lines()
	subtotal := cart.Subtotal()
	receipt := &Receipt{
		Contact:     session.Contact(),
		Payment:     session.Payment(),
		Lines:       lines,
		Subtotal:    subtotal,
		DeliveryFee: s.deliveryFee,
		Total:       subtotal.Add(s.deliveryFee),
	}
	order := newOrder(receipt)

	// A retry reuses the pending code and key only if the order is unchanged.
	code, err := session.ConfirmFor(order.ContentFingerprint())
	if err != nil {
		return nil, err
	}
	receipt.TrackingCode = code
	order.TrackingCode = code

	var snapshot []domain.CartLine
	run := coordinator.NewOrchestrator(code,
		coordinator.NewStep("post_order",
			func(ctx context.Context) error {
				id, err := s.orders.CreateOrder(ctx, session.AttemptKey(), order)
				if err != nil {
					return err
				}
				receipt.OrderID = id
				return nil
			},
			nil,
		),
		coordinator.NewStep("clear_cart",
			func(context.Context) error {
				snapshot = cart.Lines()
				cart.Clear()
				return nil
			},
			func(context.Context) error {
				cart.Restore(snapshot)
				return nil
			},
		),
		coordinator.NewStep("show_confirmation",
			func(context.Context) error { return wizard.complete() },
			func(context.Context) error {
				wizard.current = SectionPayment
				return nil
			},
		),
	)

	if err := run.Start(ctx); err != nil {
		slog.ErrorContext(ctx, "order submission failed", "tracking_code", code, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSubmissionRejected, code, err)
	}

	slog.InfoContext(ctx, "order submitted",
		"order_id", receipt.OrderID,
		"tracking_code", code,
		"total", receipt.Total.String(),
	)
	return receipt, nil
}

func newOrder(r *Receipt) *domain.Order {
	lines := make([]domain.OrderLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.OrderLine{
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return &domain.Order{
		TrackingCode:    r.TrackingCode,
		CustomerName:    r.Contact.Name,
		CustomerAddress: r.Contact.Address,
		CustomerPhone:   r.Contact.Phone,
		Total:           r.Total,
		PaymentMethod:   string(r.Payment),
		Lines:           lines,
	}
}
