package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrPaymentUnset        = errors.New("payment method is not selected")
	ErrInvalidPayment      = errors.New("unknown payment method")
	ErrInvalidContact      = errors.New("contact details are not valid")
	ErrInvalidOrder        = errors.New("invalid order")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrStatusConflict      = errors.New("order status changed concurrently")
	ErrIdempotencyConflict = errors.New("idempotency key reused for a different order")
	ErrSubmissionInFlight  = errors.New("order submission already in flight")
	ErrSubmissionRejected  = errors.New("order submission rejected")
	ErrStepBlocked         = errors.New("step transition not allowed")
)

// ValidationErrors maps a contact field to the message describing its failure.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid contact: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidContact
}
