// Package storefront holds one customer's ordering session: the menu, the
// cart, the checkout details and the step they are on.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/core/ports"
)

var ErrUnknownItem = errors.New("no such menu item")

// Storefront is the explicit session state passed to every view handler.
// It is not safe for concurrent use.
type Storefront struct {
	Catalog *domain.Catalog
	Cart    *domain.CartLedger
	Session *domain.CheckoutSession
	Wizard  *Wizard

	submitter   *Submitter
	lastReceipt *Receipt
}

func New(catalog *domain.Catalog, orders ports.OrderService, deliveryFee decimal.Decimal) *Storefront {
	cart := domain.NewCartLedger()
	session := domain.NewCheckoutSession()
	return &Storefront{
		Catalog:   catalog,
		Cart:      cart,
		Session:   session,
		Wizard:    NewWizard(cart, session),
		submitter: NewSubmitter(orders, deliveryFee),
	}
}

func (s *Storefront) AddItem(itemID int) error {
	item, ok := s.Catalog.Get(itemID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}
	s.Cart.Add(item)
	return nil
}

func (s *Storefront) DeliveryFee() decimal.Decimal { return s.submitter.DeliveryFee() }

// Total is the amount the customer will be charged right now.
func (s *Storefront) Total() decimal.Decimal {
	return s.Cart.Subtotal().Add(s.submitter.DeliveryFee())
}

func (s *Storefront) Submit(ctx context.Context) (*Receipt, error) {
	r, err := s.submitter.Submit(ctx, s.Cart, s.Session, s.Wizard)
	if err != nil {
		return nil, err
	}
	s.lastReceipt = r
	return r, nil
}

// LastReceipt is the most recent accepted order, nil after StartNewOrder.
func (s *Storefront) LastReceipt() *Receipt { return s.lastReceipt }

func (s *Storefront) StartNewOrder() {
	s.lastReceipt = nil
	s.Wizard.StartNewOrder()
}
