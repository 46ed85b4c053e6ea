package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartLedger_AddSameItemTwiceAggregates(t *testing.T) {
	cart := NewCartLedger()
	item, ok := DefaultCatalog().Get(2)
	require.True(t, ok)

	cart.Add(item)
	cart.Add(item)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(36000).Equal(cart.Subtotal()))
}

func TestCartLedger_SetQuantityZeroRemoves(t *testing.T) {
	catalog := DefaultCatalog()
	a, _ := catalog.Get(1)
	b, _ := catalog.Get(4)

	viaSet := NewCartLedger()
	viaSet.Add(a)
	viaSet.Add(b)
	viaSet.SetQuantity(a.ID, 0)

	viaRemove := NewCartLedger()
	viaRemove.Add(a)
	viaRemove.Add(b)
	viaRemove.Remove(a.ID)

	assert.Equal(t, viaRemove.Lines(), viaSet.Lines())
}

func TestCartLedger_SetQuantityNegativeRemoves(t *testing.T) {
	cart := NewCartLedger()
	item, _ := DefaultCatalog().Get(3)
	cart.Add(item)

	cart.SetQuantity(item.ID, -4)

	assert.True(t, cart.IsEmpty())
}

func TestCartLedger_SetQuantityOnAbsentItemIsNoop(t *testing.T) {
	cart := NewCartLedger()
	item, _ := DefaultCatalog().Get(3)
	cart.Add(item)

	cart.SetQuantity(99, 5)

	require.Len(t, cart.Lines(), 1)
	assert.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestCartLedger_RemoveAbsentIsNoop(t *testing.T) {
	cart := NewCartLedger()
	cart.Remove(7)
	assert.True(t, cart.IsEmpty())
}

func TestCartLedger_ClearEmpties(t *testing.T) {
	cart := NewCartLedger()
	for _, it := range DefaultCatalog().Items() {
		cart.Add(it)
	}
	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Subtotal().IsZero())
}

func TestCartLedger_RandomOperationsKeepInvariants(t *testing.T) {
	items := DefaultCatalog().Items()
	rng := rand.New(rand.NewSource(42))
	cart := NewCartLedger()

	for i := 0; i < 2000; i++ {
		it := items[rng.Intn(len(items))]
		switch rng.Intn(3) {
		case 0:
			cart.Add(it)
		case 1:
			cart.Remove(it.ID)
		case 2:
			cart.SetQuantity(it.ID, rng.Intn(6)-1)
		}

		seen := map[int]bool{}
		want := decimal.Zero
		for _, l := range cart.Lines() {
			require.False(t, seen[l.ItemID], "duplicate line for item %d", l.ItemID)
			seen[l.ItemID] = true
			require.GreaterOrEqual(t, l.Quantity, 1)
			want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		require.True(t, want.Equal(cart.Subtotal()), "subtotal %s != %s", cart.Subtotal(), want)
	}
}

func TestCartLedger_RestoreSnapshot(t *testing.T) {
	cart := NewCartLedger()
	item, _ := DefaultCatalog().Get(5)
	cart.Add(item)
	cart.Add(item)
	snapshot := cart.Lines()

	cart.Clear()
	cart.Restore(snapshot)

	assert.Equal(t, snapshot, cart.Lines())
	assert.Equal(t, 2, cart.ItemCount())
}
