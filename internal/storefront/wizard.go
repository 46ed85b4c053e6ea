package storefront

import (
	"fmt"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
)

// Section is one screen of the ordering flow.
type Section string

const (
	SectionHome      Section = "home"
	SectionMap       Section = "map"
	SectionProducts  Section = "products"
	SectionCart      Section = "cart"
	SectionPersonal  Section = "personal"
	SectionPayment   Section = "payment"
	SectionCompleted Section = "completed"
)

// rank orders the linear part of the flow. The map stub sits beside home.
var rank = map[Section]int{
	SectionHome:      0,
	SectionProducts:  1,
	SectionCart:      2,
	SectionPersonal:  3,
	SectionPayment:   4,
	SectionCompleted: 5,
}

func ParseSection(s string) (Section, error) {
	sec := Section(s)
	if sec == SectionMap {
		return sec, nil
	}
	if _, ok := rank[sec]; ok {
		return sec, nil
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// Wizard is the step controller. It reads the cart and the checkout session
// to guard forward moves but never mutates them, except for StartNewOrder.
type Wizard struct {
	current Section
	cart    *domain.CartLedger
	session *domain.CheckoutSession
}

func NewWizard(cart *domain.CartLedger, session *domain.CheckoutSession) *Wizard {
	return &Wizard{current: SectionHome, cart: cart, session: session}
}

func (w *Wizard) Current() Section { return w.current }

// GoTo moves to target. Backward moves are always allowed. Moving past the
// cart needs a non-empty cart, moving past personal details needs a contact
// that validates (the ValidationErrors are returned as the error), and the
// completed section is only reached through a successful submission.
func (w *Wizard) GoTo(target Section) error {
	if _, err := ParseSection(string(target)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStepBlocked, err)
	}
	if target == w.current {
		return nil
	}

	switch {
	case w.current == SectionCompleted:
		return w.blocked(target, "start a new order first")
	case target == SectionCompleted:
		return w.blocked(target, "only an accepted order completes checkout")
	case target == SectionHome:
	case target == SectionMap:
		if w.current != SectionHome {
			return w.blocked(target, "the map is opened from home")
		}
	case w.current == SectionMap:
		return w.blocked(target, "return home first")
	case rank[target] < rank[w.current]:
	case target == SectionProducts, target == SectionCart:
	case target == SectionPersonal:
		if w.current != SectionCart {
			return w.blocked(target, "review the cart first")
		}
		if w.cart.IsEmpty() {
			return fmt.Errorf("%w: %w", domain.ErrStepBlocked, domain.ErrEmptyCart)
		}
	case target == SectionPayment:
		if w.current != SectionPersonal {
			return w.blocked(target, "enter personal details first")
		}
		if errs := w.session.Validate(); len(errs) > 0 {
			return errs
		}
	}

	w.current = target
	return nil
}

// complete is called by the submitter once the order was accepted.
func (w *Wizard) complete() error {
	if w.current != SectionPayment {
		return w.blocked(SectionCompleted, "submit from the payment section")
	}
	w.current = SectionCompleted
	return nil
}

// StartNewOrder forgets contact, payment and the tracking code and returns
// home. The cart was already cleared by the accepted submission.
func (w *Wizard) StartNewOrder() {
	w.session.Reset()
	w.current = SectionHome
}

func (w *Wizard) blocked(target Section, reason string) error {
	return fmt.Errorf("%w: %s -> %s: %s", domain.ErrStepBlocked, w.current, target, reason)
}
