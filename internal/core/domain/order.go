package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the durable record of a submitted checkout.
type Order struct {
	ID              int64
	TrackingCode    string
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	Total           decimal.Decimal
	PaymentMethod   string
	Status          OrderStatus
	CreatedAt       time.Time
	Lines           []OrderLine
}

// OrderLine is immutable once written.
type OrderLine struct {
	OrderID     int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate checks the fields the store relies on before a create.
func (o *Order) Validate() error {
	if o.TrackingCode == "" {
		return fmt.Errorf("%w: tracking code is required", ErrInvalidOrder)
	}
	if o.CustomerName == "" || o.CustomerAddress == "" || o.CustomerPhone == "" {
		return fmt.Errorf("%w: customer name, address and phone are required", ErrInvalidOrder)
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, ErrEmptyCart)
	}
	for _, l := range o.Lines {
		if l.ProductName == "" || l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: product name, quantity and price must be valid", ErrInvalidOrder)
		}
	}
	if o.Total.IsNegative() {
		return fmt.Errorf("%w: total must not be negative", ErrInvalidOrder)
	}
	return nil
}

// ContentFingerprint hashes what the customer ordered: contact, payment,
// lines and total. Tracking code, id, status and timestamps are left out.
func (o *Order) ContentFingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\x00",
		o.CustomerName, o.CustomerAddress, o.CustomerPhone, o.PaymentMethod, o.Total.String())
	for _, l := range o.Lines {
		fmt.Fprintf(h, "%s\x00%d\x00%s\x00", l.ProductName, l.Quantity, l.UnitPrice.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}

type OrderStatus string

const (
	StatusPreparing OrderStatus = "Preparing"
	StatusEnRoute   OrderStatus = "EnRoute"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// allowedTransitions maps a status to the statuses it may move to.
// Terminal statuses have no entry.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPreparing: {StatusEnRoute, StatusCancelled},
	StatusEnRoute:   {StatusDelivered, StatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPreparing, StatusEnRoute, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Re-writing the current status is accepted as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when next is not reachable from current.
func ValidateTransition(current, next OrderStatus) error {
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
	}
	return nil
}
