package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
)

func ptr(s string) *string { return &s }

func validContact() domain.ContactPatch {
	return domain.ContactPatch{
		Name:    ptr("Ana"),
		Address: ptr("Calle 10 #4-20"),
		Phone:   ptr("300 123 4567"),
		Email:   ptr("ana@example.com"),
	}
}

func newTestWizard() (*Wizard, *domain.CartLedger, *domain.CheckoutSession) {
	cart := domain.NewCartLedger()
	session := domain.NewCheckoutSession()
	return NewWizard(cart, session), cart, session
}

func comboPersonal(t *testing.T) domain.CatalogItem {
	t.Helper()
	item, ok := domain.DefaultCatalog().Get(2)
	require.True(t, ok)
	return item
}

func TestWizard_StartsHome(t *testing.T) {
	w, _, _ := newTestWizard()
	assert.Equal(t, SectionHome, w.Current())
}

func TestWizard_CartToPersonalNeedsItems(t *testing.T) {
	w, cart, _ := newTestWizard()
	require.NoError(t, w.GoTo(SectionCart))

	err := w.GoTo(SectionPersonal)
	assert.ErrorIs(t, err, domain.ErrStepBlocked)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, SectionCart, w.Current())

	cart.Add(comboPersonal(t))
	require.NoError(t, w.GoTo(SectionPersonal))
	assert.Equal(t, SectionPersonal, w.Current())
}

func TestWizard_PersonalToPaymentNeedsValidContact(t *testing.T) {
	w, cart, session := newTestWizard()
	cart.Add(comboPersonal(t))
	require.NoError(t, w.GoTo(SectionCart))
	require.NoError(t, w.GoTo(SectionPersonal))

	session.UpdateContact(domain.ContactPatch{Name: ptr("Ana"), Phone: ptr("12345")})
	err := w.GoTo(SectionPayment)

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "phone must have 10 digits", verrs["phone"])
	assert.Contains(t, verrs, "address")
	assert.Contains(t, verrs, "email")
	assert.NotContains(t, verrs, "name")
	assert.Equal(t, SectionPersonal, w.Current())

	session.UpdateContact(validContact())
	require.NoError(t, w.GoTo(SectionPayment))
}

func TestWizard_SkippingAheadIsBlocked(t *testing.T) {
	w, cart, session := newTestWizard()
	cart.Add(comboPersonal(t))
	session.UpdateContact(validContact())

	assert.ErrorIs(t, w.GoTo(SectionPersonal), domain.ErrStepBlocked)
	assert.ErrorIs(t, w.GoTo(SectionPayment), domain.ErrStepBlocked)
	assert.ErrorIs(t, w.GoTo(SectionCompleted), domain.ErrStepBlocked)
	assert.Equal(t, SectionHome, w.Current())
}

func TestWizard_BackwardMovesAlwaysAllowed(t *testing.T) {
	w, cart, session := newTestWizard()
	cart.Add(comboPersonal(t))
	session.UpdateContact(validContact())
	require.NoError(t, w.GoTo(SectionCart))
	require.NoError(t, w.GoTo(SectionPersonal))
	require.NoError(t, w.GoTo(SectionPayment))

	require.NoError(t, w.GoTo(SectionPersonal))
	require.NoError(t, w.GoTo(SectionCart))
	require.NoError(t, w.GoTo(SectionProducts))
	require.NoError(t, w.GoTo(SectionHome))
}

func TestWizard_MapIsReachedFromHomeOnly(t *testing.T) {
	w, _, _ := newTestWizard()

	require.NoError(t, w.GoTo(SectionMap))
	assert.ErrorIs(t, w.GoTo(SectionCart), domain.ErrStepBlocked)
	require.NoError(t, w.GoTo(SectionHome))

	require.NoError(t, w.GoTo(SectionProducts))
	assert.ErrorIs(t, w.GoTo(SectionMap), domain.ErrStepBlocked)
}

func TestWizard_UnknownSection(t *testing.T) {
	w, _, _ := newTestWizard()
	assert.ErrorIs(t, w.GoTo("checkout"), domain.ErrStepBlocked)
}

func TestWizard_StartNewOrderResetsSession(t *testing.T) {
	w, cart, session := newTestWizard()
	cart.Add(comboPersonal(t))
	session.UpdateContact(validContact())
	require.NoError(t, session.SelectPayment(domain.PaymentCash))
	_, err := session.Confirm()
	require.NoError(t, err)
	w.current = SectionCompleted

	assert.ErrorIs(t, w.GoTo(SectionHome), domain.ErrStepBlocked)

	w.StartNewOrder()

	assert.Equal(t, SectionHome, w.Current())
	assert.Empty(t, session.TrackingCode())
	assert.Equal(t, domain.PaymentUnset, session.Payment())
	assert.Equal(t, domain.Contact{}, session.Contact())
}
