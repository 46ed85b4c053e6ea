package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentUnset    PaymentMethod = ""
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return m, nil
	}
	return PaymentUnset, fmt.Errorf("%w: %q", ErrInvalidPayment, s)
}

type Contact struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// ContactPatch carries the fields to overwrite; nil fields are left as they are.
type ContactPatch struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}

var (
	emailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex   = regexp.MustCompile(`^\d{10}$`)
	spaceStripRe = regexp.MustCompile(`\s`)
)

// Validate returns one message per failing field; an empty map means the
// contact may proceed to payment.
func (c Contact) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(c.Address) == "" {
		errs["address"] = "address is required"
	}

	if strings.TrimSpace(c.Phone) == "" {
		errs["phone"] = "phone is required"
	} else if !phoneRegex.MatchString(spaceStripRe.ReplaceAllString(c.Phone, "")) {
		errs["phone"] = "phone must have 10 digits"
	}

	if strings.TrimSpace(c.Email) == "" {
		errs["email"] = "email is required"
	} else if !emailRegex.MatchString(c.Email) {
		errs["email"] = "email is not valid"
	}

	return errs
}

// NewTrackingCode formats "PB" followed by the six least-significant decimal
// digits of t in milliseconds since the epoch.
func NewTrackingCode(t time.Time) string {
	return fmt.Sprintf("PB%06d", t.UnixMilli()%1_000_000)
}

// CheckoutSession is the transient per-session holder of contact data,
// payment selection and the pending order attempt. It is never persisted.
type CheckoutSession struct {
	contact      Contact
	payment      PaymentMethod
	trackingCode string
	attemptKey   string
	now          func() time.Time

	// content the pending attempt was minted for
	attemptFingerprint string
}

func NewCheckoutSession() *CheckoutSession {
	return &CheckoutSession{now: time.Now}
}

// WithClock swaps the time source used to mint tracking codes.
func (s *CheckoutSession) WithClock(now func() time.Time) *CheckoutSession {
	s.now = now
	return s
}

func (s *CheckoutSession) UpdateContact(p ContactPatch) {
	if p.Name != nil {
		s.contact.Name = *p.Name
	}
	if p.Address != nil {
		s.contact.Address = *p.Address
	}
	if p.Phone != nil {
		s.contact.Phone = *p.Phone
	}
	if p.Email != nil {
		s.contact.Email = *p.Email
	}
}

func (s *CheckoutSession) Contact() Contact { return s.contact }

func (s *CheckoutSession) Validate() ValidationErrors { return s.contact.Validate() }

func (s *CheckoutSession) SelectPayment(m PaymentMethod) error {
	if _, err := ParsePaymentMethod(string(m)); err != nil {
		return err
	}
	s.payment = m
	return nil
}

func (s *CheckoutSession) Payment() PaymentMethod { return s.payment }

func (s *CheckoutSession) TrackingCode() string { return s.trackingCode }

// AttemptKey identifies the pending order attempt across submission retries.
func (s *CheckoutSession) AttemptKey() string { return s.attemptKey }

// Confirm mints the tracking code for the current order attempt. While the
// attempt is pending, repeated calls return the same code.
func (s *CheckoutSession) Confirm() (string, error) {
	if s.payment == PaymentUnset {
		return "", ErrPaymentUnset
	}
	if s.trackingCode == "" {
		s.trackingCode = NewTrackingCode(s.now())
		s.attemptKey = uuid.NewString()
	}
	return s.trackingCode, nil
}

// ConfirmFor is Confirm for an order whose content hashes to fingerprint.
// If the pending attempt was minted for different content (the cart or the
// contact changed since), it is abandoned and a new code and key are minted,
// so one idempotency key never carries two different orders.
func (s *CheckoutSession) ConfirmFor(fingerprint string) (string, error) {
	if s.payment == PaymentUnset {
		return "", ErrPaymentUnset
	}
	if s.trackingCode != "" && s.attemptFingerprint != fingerprint {
		s.trackingCode = ""
		s.attemptKey = ""
	}
	code, err := s.Confirm()
	if err != nil {
		return "", err
	}
	s.attemptFingerprint = fingerprint
	return code, nil
}

// Reset forgets contact, payment and the order attempt.
func (s *CheckoutSession) Reset() {
	s.contact = Contact{}
	s.payment = PaymentUnset
	s.trackingCode = ""
	s.attemptKey = ""
	s.attemptFingerprint = ""
}
