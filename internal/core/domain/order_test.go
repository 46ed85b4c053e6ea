package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPreparing, StatusEnRoute, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusEnRoute, StatusDelivered, true},
		{StatusEnRoute, StatusCancelled, true},
		{StatusPreparing, StatusPreparing, true},
		{StatusPreparing, StatusDelivered, false},
		{StatusEnRoute, StatusPreparing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPreparing, false},
		{StatusDelivered, StatusEnRoute, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("EnRoute")
	assert.NoError(t, err)
	assert.Equal(t, StatusEnRoute, st)

	_, err = ParseOrderStatus("Shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseOrderStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPreparing.IsTerminal())
	assert.False(t, StatusEnRoute.IsTerminal())
}

func TestOrderValidate(t *testing.T) {
	o := &Order{
		TrackingCode:    "PB123456",
		CustomerName:    "Ana",
		CustomerAddress: "Calle 1",
		CustomerPhone:   "3001234567",
		Total:           decimal.NewFromInt(39000),
		PaymentMethod:   "cash",
		Lines: []OrderLine{
			{ProductName: "Combo Personal", Quantity: 2, UnitPrice: decimal.NewFromInt(18000)},
		},
	}
	assert.NoError(t, o.Validate())

	o.Lines[0].Quantity = 0
	assert.ErrorIs(t, o.Validate(), ErrInvalidOrder)

	o.Lines = nil
	err := o.Validate()
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestContentFingerprint(t *testing.T) {
	base := func() *Order {
		return &Order{
			TrackingCode:    "PB123456",
			CustomerName:    "Ana",
			CustomerAddress: "Calle 1",
			CustomerPhone:   "3001234567",
			Total:           decimal.RequireFromString("39000.50"),
			PaymentMethod:   "cash",
			Lines: []OrderLine{
				{ProductName: "Combo Personal", Quantity: 2, UnitPrice: decimal.NewFromInt(18000)},
			},
		}
	}
	fp := base().ContentFingerprint()

	same := base()
	same.TrackingCode = "PB999999"
	same.ID = 7
	same.Status = StatusEnRoute
	same.Total = decimal.RequireFromString("39000.5")
	assert.Equal(t, fp, same.ContentFingerprint())

	moreItems := base()
	moreItems.Lines[0].Quantity = 3
	assert.NotEqual(t, fp, moreItems.ContentFingerprint())

	otherAddress := base()
	otherAddress.CustomerAddress = "Calle 2"
	assert.NotEqual(t, fp, otherAddress.ContentFingerprint())
}
